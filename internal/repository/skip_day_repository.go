package repository

import (
	"context"
	"habit_tracker_backend/internal/model"

	"gorm.io/gorm"
)

type SkipDayRepository struct {
	DB *gorm.DB
}

// NewSkipDayRepository creates a SkipDayRepository.
func NewSkipDayRepository(db *gorm.DB) *SkipDayRepository {
	return &SkipDayRepository{DB: db}
}

// WithTx returns a copy bound to tx.
func (r *SkipDayRepository) WithTx(tx *gorm.DB) *SkipDayRepository {
	return &SkipDayRepository{DB: tx}
}

func (r *SkipDayRepository) Create(ctx context.Context, skipDay *model.SkipDay) error {
	return r.DB.WithContext(ctx).Create(skipDay).Error
}

func (r *SkipDayRepository) FindByID(ctx context.Context, id uint) (*model.SkipDay, error) {
	var skipDay model.SkipDay
	if err := r.DB.WithContext(ctx).First(&skipDay, id).Error; err != nil {
		return nil, err
	}
	return &skipDay, nil
}

// ListAvailable orders by soonest expiry so the first element is the one to spend.
func (r *SkipDayRepository) ListAvailable(ctx context.Context, habitID uint) ([]model.SkipDay, error) {
	var skipDays []model.SkipDay
	err := r.DB.WithContext(ctx).
		Where("habit_id = ? AND status = ?", habitID, model.SkipDayAvailable).
		Order("expiry_date ASC").
		Order("id ASC").
		Find(&skipDays).Error
	return skipDays, err
}

// MaxLevelEarned is the highest level any credit of the habit was minted at,
// whatever its status, or 0 when it has none.
func (r *SkipDayRepository) MaxLevelEarned(ctx context.Context, habitID uint) (int, error) {
	var level int
	err := r.DB.WithContext(ctx).Model(&model.SkipDay{}).
		Select("COALESCE(MAX(level_earned_at), 0)").
		Where("habit_id = ?", habitID).
		Scan(&level).Error
	return level, err
}

func (r *SkipDayRepository) ListByHabit(ctx context.Context, habitID uint) ([]model.SkipDay, error) {
	var skipDays []model.SkipDay
	err := r.DB.WithContext(ctx).Where("habit_id = ?", habitID).Order("id ASC").Find(&skipDays).Error
	return skipDays, err
}

// Consume is a conditional update: only an available credit of this habit
// moves to used, so two concurrent calls cannot both spend it.
func (r *SkipDayRepository) Consume(ctx context.Context, habitID, id uint, date string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.SkipDay{}).
		Where("id = ? AND habit_id = ? AND status = ?", id, habitID, model.SkipDayAvailable).
		Updates(map[string]interface{}{
			"status":    model.SkipDayUsed,
			"used_date": date,
		})
	return res.RowsAffected == 1, res.Error
}

// ExpireBefore moves every available credit with expiry_date < date to expired.
func (r *SkipDayRepository) ExpireBefore(ctx context.Context, date string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.SkipDay{}).
		Where("status = ? AND expiry_date < ?", model.SkipDayAvailable, date).
		Update("status", model.SkipDayExpired)
	return res.RowsAffected, res.Error
}

func (r *SkipDayRepository) DeleteByHabit(ctx context.Context, habitID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("habit_id = ?", habitID).Delete(&model.SkipDay{})
	return res.RowsAffected, res.Error
}

type habitCount struct {
	HabitID uint
	Count   int64
}

// CountAvailableByHabit counts available skip days per habit.
func (r *SkipDayRepository) CountAvailableByHabit(ctx context.Context, habitIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(habitIDs))
	if len(habitIDs) == 0 {
		return counts, nil
	}
	var rows []habitCount
	err := r.DB.WithContext(ctx).Model(&model.SkipDay{}).
		Select("habit_id, COUNT(*) AS count").
		Where("habit_id IN ? AND status = ?", habitIDs, model.SkipDayAvailable).
		Group("habit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.HabitID] = row.Count
	}
	return counts, nil
}

func (r *SkipDayRepository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.SkipDay{}).Where("status = ?", model.SkipDayAvailable).Count(&count).Error
	return count, err
}
