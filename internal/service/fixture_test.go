package service

import (
	"context"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/database"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testClock can be moved between calls.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(date string) *testClock {
	t, err := time.ParseInLocation(util.DateFormat, date, time.Local)
	if err != nil {
		panic(err)
	}
	return &testClock{t: t.Add(12 * time.Hour)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db          *gorm.DB
	clock       *testClock
	habits      *repository.HabitRepository
	completions *repository.CompletionRepository
	skipDays    *repository.SkipDayRepository
	settings    *repository.SettingRepository
	ledger      *SkipDayService
	habitSvc    *HabitService
	sweep       *SweepService
}

const today = "2024-03-20"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:          db,
		clock:       newTestClock(today),
		habits:      repository.NewHabitRepository(db),
		completions: repository.NewCompletionRepository(db),
		skipDays:    repository.NewSkipDayRepository(db),
		settings:    repository.NewSettingRepository(db),
	}
	f.ledger = NewSkipDayService(f.skipDays, f.settings, f.clock, 5)
	f.habitSvc = NewHabitService(db, f.habits, f.completions, f.ledger, NewLocalHabitLocker(), f.clock, 2*time.Second)
	f.sweep = NewSweepService(f.habits, f.completions, f.ledger, f.clock)
	return f
}

func (f *fixture) durationHabit(t *testing.T, userID uint) *model.Habit {
	t.Helper()
	h, err := f.habitSvc.Create(context.Background(), userID, CreateHabitRequest{
		Name:       "Meditate",
		TargetType: model.TargetDuration90,
		Category:   "health",
	})
	require.NoError(t, err)
	return h
}

func (f *fixture) numericHabit(t *testing.T, userID uint, target int64) *model.Habit {
	t.Helper()
	tv := decimal.NewFromInt(target)
	h, err := f.habitSvc.Create(context.Background(), userID, CreateHabitRequest{
		Name:        "Read pages",
		TargetType:  model.TargetNumeric,
		TargetValue: &tv,
		TargetUnit:  "pages",
		Category:    "learning",
	})
	require.NoError(t, err)
	return h
}

// seedDone writes done rows for the n days before the clock's today, without
// any recomputation.
func (f *fixture) seedDone(t *testing.T, habitID uint, n int) {
	t.Helper()
	now := util.Today(f.clock)
	for i := 1; i <= n; i++ {
		date, err := util.AddDays(now, -i)
		require.NoError(t, err)
		require.NoError(t, f.completions.Upsert(context.Background(), &model.HabitCompletion{
			HabitID:  habitID,
			Date:     date,
			Status:   model.StatusDone,
			SyncedAt: time.Now(),
		}))
	}
}

func (f *fixture) countSkipDays(t *testing.T, habitID uint) int {
	t.Helper()
	all, err := f.skipDays.ListByHabit(context.Background(), habitID)
	require.NoError(t, err)
	return len(all)
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
