package repository

import (
	"context"
	"habit_tracker_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// HabitRepository is the only place that knows how the active / graduated /
// deleted partition maps onto columns. Callers pick a view, never a filter.
type HabitRepository struct {
	DB *gorm.DB
}

// NewHabitRepository creates a HabitRepository.
func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{DB: db}
}

// WithTx returns a copy bound to tx.
func (r *HabitRepository) WithTx(tx *gorm.DB) *HabitRepository {
	return &HabitRepository{DB: tx}
}

// scope applies one side of the partition. The default gorm scope already
// hides soft deleted rows for the active and graduated views.
func (r *HabitRepository) scope(ctx context.Context, view model.HabitView) *gorm.DB {
	db := r.DB.WithContext(ctx).Model(&model.Habit{})
	switch view {
	case model.ViewGraduated:
		return db.Where("graduated_date IS NOT NULL")
	case model.ViewDeleted:
		return db.Unscoped().Where("deleted_at IS NOT NULL")
	default:
		return db.Where("graduated_date IS NULL")
	}
}

func (r *HabitRepository) Create(ctx context.Context, habit *model.Habit) error {
	return r.DB.WithContext(ctx).Create(habit).Error
}

// FindByID returns a non-deleted habit (active or graduated).
func (r *HabitRepository) FindByID(ctx context.Context, id uint) (*model.Habit, error) {
	var habit model.Habit
	if err := r.DB.WithContext(ctx).First(&habit, id).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

// FindByIDAndUser is FindByID restricted to the owner.
func (r *HabitRepository) FindByIDAndUser(ctx context.Context, id, userID uint) (*model.Habit, error) {
	var habit model.Habit
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&habit).Error
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListByUser orders by level so the most advanced habits come first.
func (r *HabitRepository) ListByUser(ctx context.Context, userID uint, view model.HabitView) ([]model.Habit, error) {
	var habits []model.Habit
	err := r.scope(ctx, view).
		Where("user_id = ?", userID).
		Order("current_level DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&habits).Error
	return habits, err
}

func (r *HabitRepository) CountByUser(ctx context.Context, userID uint, view model.HabitView) (int64, error) {
	var count int64
	err := r.scope(ctx, view).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountNonDeletedByUser counts active and graduated habits together.
func (r *HabitRepository) CountNonDeletedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Habit{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *HabitRepository) Count(ctx context.Context, view model.HabitView) (int64, error) {
	var count int64
	err := r.scope(ctx, view).Count(&count).Error
	return count, err
}

// UpdateFields applies an edit to a non-deleted habit owned by userID.
func (r *HabitRepository) UpdateFields(ctx context.Context, id, userID uint, fields map[string]interface{}) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Habit{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

// UpdateLevel persists the derived level and progress.
func (r *HabitRepository) UpdateLevel(ctx context.Context, habit *model.Habit) error {
	return r.DB.WithContext(ctx).Model(&model.Habit{}).
		Where("id = ?", habit.ID).
		Updates(map[string]interface{}{
			"current_level":    habit.CurrentLevel,
			"current_progress": habit.CurrentProgress,
			"updated_at":       time.Now(),
		}).Error
}

// MarkGraduated sets graduated_date once. Later calls change nothing.
func (r *HabitRepository) MarkGraduated(ctx context.Context, id uint, date string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Habit{}).
		Where("id = ? AND graduated_date IS NULL", id).
		Update("graduated_date", date)
	return res.RowsAffected > 0, res.Error
}

// SoftDelete stamps deleted_at and the reason in one statement.
func (r *HabitRepository) SoftDelete(ctx context.Context, id, userID uint, reason string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Habit{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"deletion_reason": reason,
			"deleted_at":      time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// IDsWithoutCompletion lists non-deleted habits that have no row for date.
func (r *HabitRepository) IDsWithoutCompletion(ctx context.Context, date string) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Habit{}).
		Where("NOT EXISTS (SELECT 1 FROM habit_completions hc WHERE hc.habit_id = habits.id AND hc.date = ?)", date).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
