package configwatcher

import (
	"context"
	"fmt"
	"habit_tracker_backend/internal/config"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configBody(expiryDays int) []byte {
	return []byte(fmt.Sprintf("server:\n  mode: debug\ndatabase:\n  driver: sqlite\nhabit:\n  default_skip_expiry_days: %d\n", expiryDays))
}

func writeConfig(t *testing.T, path string, expiryDays int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, configBody(expiryDays), 0o644))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, 5)

	var (
		mu       sync.Mutex
		reloaded *config.Config
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *config.Config) {
			mu.Lock()
			reloaded = cfg
			mu.Unlock()
		})
	}()

	loaded := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reloaded != nil
	}

	// the watcher registers asynchronously; a write it missed is repeated only
	// after a full debounce window, since every seen write restarts the wait
	writeConfig(t, path, 11)
	lastWrite := time.Now()
	require.Eventually(t, func() bool {
		if loaded() {
			return true
		}
		if time.Since(lastWrite) > 3*debounce {
			_ = os.WriteFile(path, configBody(11), 0o644)
			lastWrite = time.Now()
		}
		return false
	}, 15*time.Second, 100*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 11, reloaded.Habit.DefaultSkipExpiryDays)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
