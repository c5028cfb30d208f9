package repository

import (
	"context"
	"habit_tracker_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	DB *gorm.DB
}

// NewSettingRepository creates a SettingRepository.
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) WithTx(tx *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: tx}
}

// FindByUserID returns gorm.ErrRecordNotFound when the user has no saved settings.
func (r *SettingRepository) FindByUserID(ctx context.Context, userID uint) (*model.Setting, error) {
	var setting model.Setting
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// SkipExpiryDaysForHabit reads the owner's setting through the habit. It
// returns 0 when the owner never saved one.
func (r *SettingRepository) SkipExpiryDaysForHabit(ctx context.Context, habitID uint) (int, error) {
	var days []int
	err := r.DB.WithContext(ctx).Model(&model.Setting{}).
		Where("user_id = (SELECT user_id FROM habits WHERE id = ?)", habitID).
		Limit(1).
		Pluck("skip_expiry_days", &days).Error
	if err != nil || len(days) == 0 {
		return 0, err
	}
	return days[0], nil
}

func (r *SettingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"skip_expiry_days", "updated_at"}),
	}).Create(setting).Error
}
