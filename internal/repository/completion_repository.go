package repository

import (
	"context"
	"habit_tracker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	DB *gorm.DB
}

// NewCompletionRepository creates a CompletionRepository.
func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// WithTx returns a copy bound to tx.
func (r *CompletionRepository) WithTx(tx *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: tx}
}

var habitDateConflict = []clause.Column{{Name: "habit_id"}, {Name: "date"}}

// Upsert writes the (habit, date) row. On conflict status, value and
// synced_at are overwritten; marked_offline only ever flips to true.
func (r *CompletionRepository) Upsert(ctx context.Context, c *model.HabitCompletion) error {
	updates := map[string]interface{}{
		"status":    c.Status,
		"value":     c.Value,
		"synced_at": c.SyncedAt,
	}
	if c.MarkedOffline {
		updates["marked_offline"] = true
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   habitDateConflict,
		DoUpdates: clause.Assignments(updates),
	}).Create(c).Error
}

// InsertIfAbsent never touches an existing row; it reports whether a row was
// written.
func (r *CompletionRepository) InsertIfAbsent(ctx context.Context, c *model.HabitCompletion) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   habitDateConflict,
		DoNothing: true,
	}).Create(c)
	return res.RowsAffected > 0, res.Error
}

func (r *CompletionRepository) FindByHabitAndDate(ctx context.Context, habitID uint, date string) (*model.HabitCompletion, error) {
	var c model.HabitCompletion
	err := r.DB.WithContext(ctx).Where("habit_id = ? AND date = ?", habitID, date).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListDone returns the done rows newest first, the order the streak scan needs.
func (r *CompletionRepository) ListDone(ctx context.Context, habitID uint) ([]model.HabitCompletion, error) {
	var completions []model.HabitCompletion
	err := r.DB.WithContext(ctx).
		Where("habit_id = ? AND status = ?", habitID, model.StatusDone).
		Order("date DESC").
		Find(&completions).Error
	return completions, err
}

func (r *CompletionRepository) CountByHabit(ctx context.Context, habitID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.HabitCompletion{}).Where("habit_id = ?", habitID).Count(&count).Error
	return count, err
}

// ListByMonth takes month as YYYY-MM.
func (r *CompletionRepository) ListByMonth(ctx context.Context, habitID uint, month string) ([]model.HabitCompletion, error) {
	var completions []model.HabitCompletion
	err := r.DB.WithContext(ctx).
		Where("habit_id = ? AND date LIKE ?", habitID, month+"-%").
		Order("date ASC").
		Find(&completions).Error
	return completions, err
}

// StatusesForDate maps each habit in habitIDs to its status on date, if any.
func (r *CompletionRepository) StatusesForDate(ctx context.Context, habitIDs []uint, date string) (map[uint]model.CompletionStatus, error) {
	statuses := make(map[uint]model.CompletionStatus, len(habitIDs))
	if len(habitIDs) == 0 {
		return statuses, nil
	}
	var rows []model.HabitCompletion
	err := r.DB.WithContext(ctx).
		Select("habit_id", "status").
		Where("habit_id IN ? AND date = ?", habitIDs, date).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		statuses[row.HabitID] = row.Status
	}
	return statuses, nil
}

// CountDoneByDate groups a user's done completions in [from, to] by day.
// Deleted habits do not count.
func (r *CompletionRepository) CountDoneByDate(ctx context.Context, userID uint, from, to string) ([]model.DailyCount, error) {
	var counts []model.DailyCount
	err := r.DB.WithContext(ctx).
		Table("habit_completions hc").
		Select("hc.date AS date, COUNT(*) AS count").
		Joins("JOIN habits h ON h.id = hc.habit_id").
		Where("h.user_id = ? AND h.deleted_at IS NULL", userID).
		Where("hc.status = ? AND hc.date >= ? AND hc.date <= ?", model.StatusDone, from, to).
		Group("hc.date").
		Order("hc.date ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *CompletionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.HabitCompletion{}).Count(&count).Error
	return count, err
}
