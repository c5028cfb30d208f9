package service

import (
	"context"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"time"
)

// SystemService reports row counts and storage health.
type SystemService struct {
	habits      *repository.HabitRepository
	completions *repository.CompletionRepository
	skipDays    *repository.SkipDayRepository
	sweep       *SweepService
	startedAt   time.Time
}

// NewSystemService creates a SystemService.
func NewSystemService(habits *repository.HabitRepository, completions *repository.CompletionRepository, skipDays *repository.SkipDayRepository, sweep *SweepService) *SystemService {
	return &SystemService{
		habits:      habits,
		completions: completions,
		skipDays:    skipDays,
		sweep:       sweep,
		startedAt:   time.Now(),
	}
}

// Status collects row counts and the last sweep result.
func (s *SystemService) Status(ctx context.Context) (*model.SystemStatus, error) {
	active, err := s.habits.Count(ctx, model.ViewActive)
	if err != nil {
		return nil, err
	}
	graduated, err := s.habits.Count(ctx, model.ViewGraduated)
	if err != nil {
		return nil, err
	}
	completions, err := s.completions.Count(ctx)
	if err != nil {
		return nil, err
	}
	available, err := s.skipDays.CountAvailable(ctx)
	if err != nil {
		return nil, err
	}

	return &model.SystemStatus{
		Timestamp:     time.Now().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		ActiveHabits:  active,
		Graduated:     graduated,
		Completions:   completions,
		AvailableSkip: available,
		LastSweep:     s.sweep.LastResult(),
	}, nil
}
