package service

import (
	"context"
	"errors"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"

	"gorm.io/gorm"
)

// SettingsService reads and writes per-user preferences.
type SettingsService struct {
	repo   *repository.SettingRepository
	ledger *SkipDayService
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(repo *repository.SettingRepository, ledger *SkipDayService) *SettingsService {
	return &SettingsService{repo: repo, ledger: ledger}
}

type UpdateSettingsRequest struct {
	SkipExpiryDays int `json:"skipExpiryDays" binding:"required,min=1,max=365"`
}

// SettingsView is what a user sees: the effective window, and whether it is
// the server default.
type SettingsView struct {
	SkipExpiryDays int  `json:"skipExpiryDays"`
	IsDefault      bool `json:"isDefault"`
}

// Get returns the saved settings, or the defaults when none exist.
func (s *SettingsService) Get(ctx context.Context, userID uint) (*SettingsView, error) {
	setting, err := s.repo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if setting == nil || setting.SkipExpiryDays <= 0 {
		return &SettingsView{SkipExpiryDays: s.ledger.DefaultExpiryDays(), IsDefault: true}, nil
	}
	return &SettingsView{SkipExpiryDays: setting.SkipExpiryDays}, nil
}

// Update only affects credits granted afterwards.
func (s *SettingsService) Update(ctx context.Context, userID uint, req UpdateSettingsRequest) (*SettingsView, error) {
	setting := &model.Setting{UserID: userID, SkipExpiryDays: req.SkipExpiryDays}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return &SettingsView{SkipExpiryDays: req.SkipExpiryDays}, nil
}
