package service

import (
	"context"
	"fmt"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/logger"
	"habit_tracker_backend/pkg/monitoring"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SkipDayService is the skip day ledger: it mints credits on level-up, spends
// them on skip completions and expires the ones nobody used.
type SkipDayService struct {
	repo          *repository.SkipDayRepository
	settings      *repository.SettingRepository
	clock         util.Clock
	defaultExpiry *atomic.Int64
}

// NewSkipDayService creates the skip-day ledger; defaultExpiryDays applies when a user has no setting.
func NewSkipDayService(repo *repository.SkipDayRepository, settings *repository.SettingRepository, clock util.Clock, defaultExpiryDays int) *SkipDayService {
	s := &SkipDayService{
		repo:          repo,
		settings:      settings,
		clock:         clock,
		defaultExpiry: &atomic.Int64{},
	}
	s.SetDefaultExpiryDays(defaultExpiryDays)
	return s
}

// WithTx returns a ledger bound to tx. The default expiry is shared with s.
func (s *SkipDayService) WithTx(tx *gorm.DB) *SkipDayService {
	return &SkipDayService{
		repo:          s.repo.WithTx(tx),
		settings:      s.settings.WithTx(tx),
		clock:         s.clock,
		defaultExpiry: s.defaultExpiry,
	}
}

// SetDefaultExpiryDays changes the window used for users without a setting.
// Non-positive values are ignored.
func (s *SkipDayService) SetDefaultExpiryDays(days int) {
	if days > 0 {
		s.defaultExpiry.Store(int64(days))
	}
}

func (s *SkipDayService) DefaultExpiryDays() int {
	return int(s.defaultExpiry.Load())
}

func (s *SkipDayService) expiryDaysFor(ctx context.Context, habitID uint) (int, error) {
	days, err := s.settings.SkipExpiryDaysForHabit(ctx, habitID)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return s.DefaultExpiryDays(), nil
	}
	return days, nil
}

// Grant mints one available credit earned today.
func (s *SkipDayService) Grant(ctx context.Context, habitID uint, level int) (*model.SkipDay, error) {
	expiryDays, err := s.expiryDaysFor(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("read skip expiry setting: %w", err)
	}

	today := util.Today(s.clock)
	expiry, err := util.AddDays(today, expiryDays)
	if err != nil {
		return nil, err
	}

	skipDay := &model.SkipDay{
		HabitID:       habitID,
		LevelEarnedAt: level,
		EarnedDate:    today,
		ExpiryDate:    expiry,
		Status:        model.SkipDayAvailable,
	}
	if err := s.repo.Create(ctx, skipDay); err != nil {
		return nil, fmt.Errorf("create skip day: %w", err)
	}

	monitoring.SkipDayTransitions.WithLabelValues("granted").Inc()
	logger.Log.Info("skip day granted",
		zap.Uint("habitID", habitID),
		zap.Int("level", level),
		zap.String("expiryDate", expiry),
	)
	return skipDay, nil
}

// HighestLevelEarned is the level of the habit's best credit so far, spent or
// expired ones included.
func (s *SkipDayService) HighestLevelEarned(ctx context.Context, habitID uint) (int, error) {
	level, err := s.repo.MaxLevelEarned(ctx, habitID)
	if err != nil {
		return 0, fmt.Errorf("read earned skip days: %w", err)
	}
	return level, nil
}

// ListAvailable returns the credits the habit can still spend, soonest expiry first.
func (s *SkipDayService) ListAvailable(ctx context.Context, habitID uint) ([]model.SkipDay, error) {
	return s.repo.ListAvailable(ctx, habitID)
}

// Consume spends creditID for date. It returns false, without error, when the
// credit is not an available credit of habitID.
func (s *SkipDayService) Consume(ctx context.Context, habitID, creditID uint, date string) (bool, error) {
	ok, err := s.repo.Consume(ctx, habitID, creditID, date)
	if err != nil {
		return false, fmt.Errorf("consume skip day: %w", err)
	}
	if ok {
		monitoring.SkipDayTransitions.WithLabelValues("used").Inc()
	} else {
		logger.Log.Debug("skip day not consumable",
			zap.Uint("habitID", habitID),
			zap.Uint("skipDayID", creditID),
		)
	}
	return ok, nil
}

// ExpireStale expires available credits whose expiry date is before asOf.
// A second call for the same date finds nothing to do.
func (s *SkipDayService) ExpireStale(ctx context.Context, asOf string) (int64, error) {
	n, err := s.repo.ExpireBefore(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("expire skip days: %w", err)
	}
	monitoring.SkipDayTransitions.WithLabelValues("expired").Add(float64(n))
	return n, nil
}

// RemoveForHabit hard deletes every credit of a deleted habit.
func (s *SkipDayService) RemoveForHabit(ctx context.Context, habitID uint) (int64, error) {
	return s.repo.DeleteByHabit(ctx, habitID)
}
