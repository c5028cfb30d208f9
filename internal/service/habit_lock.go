package service

import (
	"context"
	"fmt"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HabitLocker serialises mutations of one habit. The returned unlock must be
// called exactly once.
type HabitLocker interface {
	Lock(ctx context.Context, habitID uint) (unlock func(), err error)
}

type habitLock struct {
	ch   chan struct{}
	refs int
}

// LocalHabitLocker is a keyed mutex for a single process. Entries are dropped
// once nobody holds or waits for them.
type LocalHabitLocker struct {
	mu    sync.Mutex
	locks map[uint]*habitLock
}

// NewLocalHabitLocker creates an in-process HabitLocker.
func NewLocalHabitLocker() *LocalHabitLocker {
	return &LocalHabitLocker{locks: make(map[uint]*habitLock)}
}

// Lock blocks until habitID is free or ctx is done.
func (l *LocalHabitLocker) Lock(ctx context.Context, habitID uint) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[habitID]
	if !ok {
		lock = &habitLock{ch: make(chan struct{}, 1)}
		l.locks[habitID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(habitID, lock)
		return nil, fmt.Errorf("habit %d: %w", habitID, util.ErrLockTimeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.ch
			l.release(habitID, lock)
		})
	}, nil
}

func (l *LocalHabitLocker) release(habitID uint, lock *habitLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, habitID)
	}
}

// held reports how many callers hold or wait for habitID.
func (l *LocalHabitLocker) held(habitID uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lock, ok := l.locks[habitID]; ok {
		return lock.refs
	}
	return 0
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisHabitLocker shares the per-habit lock between instances. The TTL
// bounds how long a crashed holder can block others.
type RedisHabitLocker struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
}

// NewRedisHabitLocker creates a HabitLocker shared by every instance using rdb.
func NewRedisHabitLocker(rdb *redis.Client, ttl time.Duration) *RedisHabitLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisHabitLocker{rdb: rdb, ttl: ttl, retryEvery: 25 * time.Millisecond}
}

func habitLockKey(habitID uint) string {
	return fmt.Sprintf("habit:lock:%d", habitID)
}

// Lock retries SETNX until it wins or ctx is done. The key expires after ttl.
func (l *RedisHabitLocker) Lock(ctx context.Context, habitID uint) (func(), error) {
	key := habitLockKey(habitID)
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("habit %d: %w", habitID, util.ErrLockTimeout)
			}
			return nil, fmt.Errorf("acquire habit lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retryEvery)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("habit %d: %w", habitID, util.ErrLockTimeout)
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled here
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := unlockScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil {
				logger.Log.Warn("failed to release habit lock",
					zap.Uint("habitID", habitID),
					zap.Error(err),
				)
			}
		})
	}, nil
}
