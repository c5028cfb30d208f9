package repository

import (
	"context"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/pkg/database"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func createHabit(t *testing.T, repo *HabitRepository, userID uint, level int) *model.Habit {
	t.Helper()
	h := &model.Habit{
		UserID:       userID,
		Name:         "habit",
		TargetType:   model.TargetDuration90,
		Category:     "health",
		StartDate:    "2024-03-01",
		CurrentLevel: level,
	}
	require.NoError(t, repo.Create(context.Background(), h))
	return h
}

func TestHabitViewsPartition(t *testing.T) {
	db := newTestDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	active := createHabit(t, repo, 1, 0)
	graduated := createHabit(t, repo, 1, 9)
	deleted := createHabit(t, repo, 1, 3)
	gradThenDeleted := createHabit(t, repo, 1, 9)

	ok, err := repo.MarkGraduated(ctx, graduated.ID, "2024-03-10")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.MarkGraduated(ctx, graduated.ID, "2024-03-11")
	require.NoError(t, err)
	assert.False(t, ok, "graduation is written once")

	_, err = repo.MarkGraduated(ctx, gradThenDeleted.ID, "2024-03-10")
	require.NoError(t, err)
	for _, id := range []uint{deleted.ID, gradThenDeleted.ID} {
		ok, err = repo.SoftDelete(ctx, id, 1, "done with it")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ids := func(view model.HabitView) []uint {
		habits, err := repo.ListByUser(ctx, 1, view)
		require.NoError(t, err)
		out := make([]uint, len(habits))
		for i, h := range habits {
			out[i] = h.ID
		}
		return out
	}

	assert.Equal(t, []uint{active.ID}, ids(model.ViewActive))
	assert.Equal(t, []uint{graduated.ID}, ids(model.ViewGraduated))
	assert.ElementsMatch(t, []uint{deleted.ID, gradThenDeleted.ID}, ids(model.ViewDeleted))

	n, err := repo.CountNonDeletedByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := repo.FindByID(ctx, graduated.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", *stored.GraduatedDate)

	_, err = repo.FindByID(ctx, deleted.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListByUserOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewHabitRepository(db)

	first := createHabit(t, repo, 1, 2)
	second := createHabit(t, repo, 1, 5)
	third := createHabit(t, repo, 1, 2)
	createHabit(t, repo, 2, 9)

	habits, err := repo.ListByUser(context.Background(), 1, model.ViewActive)
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, second.ID, habits[0].ID)
	assert.Equal(t, first.ID, habits[1].ID)
	assert.Equal(t, third.ID, habits[2].ID)
}

func TestSoftDeleteChecksOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewHabitRepository(db)
	h := createHabit(t, repo, 1, 0)

	ok, err := repo.SoftDelete(context.Background(), h.ID, 2, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByIDAndUser(context.Background(), h.ID, 1)
	assert.NoError(t, err)
	_, err = repo.FindByIDAndUser(context.Background(), h.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCompletionUpsert(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewCompletionRepository(db)
	ctx := context.Background()
	h := createHabit(t, habits, 1, 0)

	require.NoError(t, repo.Upsert(ctx, &model.HabitCompletion{
		HabitID:  h.ID,
		Date:     "2024-03-20",
		Status:   model.StatusDone,
		Value:    decimal.NewNullDecimal(decimal.NewFromFloat(12.5)),
		SyncedAt: time.Now(),
	}))
	require.NoError(t, repo.Upsert(ctx, &model.HabitCompletion{
		HabitID:  h.ID,
		Date:     "2024-03-20",
		Status:   model.StatusSkip,
		SyncedAt: time.Now(),
	}))

	count, err := repo.CountByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	row, err := repo.FindByHabitAndDate(ctx, h.ID, "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkip, row.Status)
	assert.False(t, row.Value.Valid)
}

func TestInsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewCompletionRepository(db)
	ctx := context.Background()
	h := createHabit(t, habits, 1, 0)

	require.NoError(t, repo.Upsert(ctx, &model.HabitCompletion{HabitID: h.ID, Date: "2024-03-20", Status: model.StatusDone, SyncedAt: time.Now()}))

	ok, err := repo.InsertIfAbsent(ctx, &model.HabitCompletion{HabitID: h.ID, Date: "2024-03-20", Status: model.StatusNotDone, SyncedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.InsertIfAbsent(ctx, &model.HabitCompletion{HabitID: h.ID, Date: "2024-03-21", Status: model.StatusNotDone, SyncedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, ok)

	row, err := repo.FindByHabitAndDate(ctx, h.ID, "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, row.Status)

	ids, err := habits.IDsWithoutCompletion(ctx, "2024-03-22")
	require.NoError(t, err)
	assert.Equal(t, []uint{h.ID}, ids)
	ids, err = habits.IDsWithoutCompletion(ctx, "2024-03-21")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListDoneAndStatuses(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewCompletionRepository(db)
	ctx := context.Background()
	a := createHabit(t, habits, 1, 0)
	b := createHabit(t, habits, 1, 0)

	for _, c := range []model.HabitCompletion{
		{HabitID: a.ID, Date: "2024-03-18", Status: model.StatusDone},
		{HabitID: a.ID, Date: "2024-03-19", Status: model.StatusNotDone},
		{HabitID: a.ID, Date: "2024-03-20", Status: model.StatusDone},
		{HabitID: b.ID, Date: "2024-03-20", Status: model.StatusSkip},
	} {
		c := c
		c.SyncedAt = time.Now()
		require.NoError(t, repo.Upsert(ctx, &c))
	}

	done, err := repo.ListDone(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "2024-03-20", done[0].Date)
	assert.Equal(t, "2024-03-18", done[1].Date)

	statuses, err := repo.StatusesForDate(ctx, []uint{a.ID, b.ID}, "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, statuses[a.ID])
	assert.Equal(t, model.StatusSkip, statuses[b.ID])

	counts, err := repo.CountDoneByDate(ctx, 1, "2024-03-18", "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, []model.DailyCount{{Date: "2024-03-18", Count: 1}, {Date: "2024-03-20", Count: 1}}, counts)
}

func TestSkipDayRepository(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewSkipDayRepository(db)
	ctx := context.Background()
	a := createHabit(t, habits, 1, 0)
	b := createHabit(t, habits, 1, 0)

	mk := func(habitID uint, expiry string) *model.SkipDay {
		s := &model.SkipDay{HabitID: habitID, LevelEarnedAt: 1, EarnedDate: "2024-03-15", ExpiryDate: expiry, Status: model.SkipDayAvailable}
		require.NoError(t, repo.Create(ctx, s))
		return s
	}
	a1 := mk(a.ID, "2024-03-20")
	mk(a.ID, "2024-03-25")
	mk(b.ID, "2024-03-18")

	counts, err := repo.CountAvailableByHabit(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Equal(t, int64(1), counts[b.ID])

	ok, err := repo.Consume(ctx, b.ID, a1.ID, "2024-03-19")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Consume(ctx, a.ID, a1.ID, "2024-03-19")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.ExpireBefore(ctx, "2024-03-21")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := repo.CountAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	n, err = repo.DeleteByHabit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMaxLevelEarned(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewSkipDayRepository(db)
	ctx := context.Background()
	h := createHabit(t, habits, 1, 0)

	level, err := repo.MaxLevelEarned(ctx, h.ID)
	require.NoError(t, err)
	assert.Zero(t, level)

	for _, s := range []*model.SkipDay{
		{HabitID: h.ID, LevelEarnedAt: 2, EarnedDate: "2024-03-01", ExpiryDate: "2024-03-06", Status: model.SkipDayExpired},
		{HabitID: h.ID, LevelEarnedAt: 5, EarnedDate: "2024-03-10", ExpiryDate: "2024-03-15", Status: model.SkipDayUsed},
		{HabitID: h.ID, LevelEarnedAt: 3, EarnedDate: "2024-03-19", ExpiryDate: "2024-03-24", Status: model.SkipDayAvailable},
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	// spent and expired credits still count
	level, err = repo.MaxLevelEarned(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, level)
}

func TestSettingRepository(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepository(db)
	repo := NewSettingRepository(db)
	ctx := context.Background()
	h := createHabit(t, habits, 4, 0)

	days, err := repo.SkipExpiryDaysForHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Zero(t, days)

	require.NoError(t, repo.Upsert(ctx, &model.Setting{UserID: 4, SkipExpiryDays: 9}))
	require.NoError(t, repo.Upsert(ctx, &model.Setting{UserID: 4, SkipExpiryDays: 11}))

	days, err = repo.SkipExpiryDaysForHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, days)

	s, err := repo.FindByUserID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 11, s.SkipExpiryDays)
}
