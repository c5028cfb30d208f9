package service

import (
	"context"
	"fmt"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/logger"
	"habit_tracker_backend/pkg/monitoring"
	"habit_tracker_backend/pkg/tracing"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SweepService is the end-of-day job: it fills the gaps of the day with
// not_done rows and expires skip days nobody spent.
type SweepService struct {
	habits      *repository.HabitRepository
	completions *repository.CompletionRepository
	ledger      *SkipDayService
	clock       util.Clock

	mu   sync.RWMutex
	last *model.SweepResult
}

// NewSweepService creates a SweepService.
func NewSweepService(habits *repository.HabitRepository, completions *repository.CompletionRepository, ledger *SkipDayService, clock util.Clock) *SweepService {
	return &SweepService{
		habits:      habits,
		completions: completions,
		ledger:      ledger,
		clock:       clock,
	}
}

// MarkHabitsAsNotDone inserts not_done for every non-deleted habit without a
// row for date. Existing rows are left alone and levels are not recomputed.
func (s *SweepService) MarkHabitsAsNotDone(ctx context.Context, date string) (int64, error) {
	ids, err := s.habits.IDsWithoutCompletion(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("find habits without completion: %w", err)
	}

	var inserted int64
	now := s.clock.Now()
	for _, id := range ids {
		ok, err := s.completions.InsertIfAbsent(ctx, &model.HabitCompletion{
			HabitID:       id,
			Date:          date,
			Status:        model.StatusNotDone,
			MarkedOffline: false,
			SyncedAt:      now,
		})
		if err != nil {
			return inserted, fmt.Errorf("backfill habit %d: %w", id, err)
		}
		// a user write may have landed between the query and the insert
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// ExpireSkipDays marks available skip days whose expiry is before date as expired.
func (s *SweepService) ExpireSkipDays(ctx context.Context, date string) (int64, error) {
	return s.ledger.ExpireStale(ctx, date)
}

// Run sweeps today. It is what the scheduler calls.
func (s *SweepService) Run(ctx context.Context) *model.SweepResult {
	return s.RunForDate(ctx, util.Today(s.clock))
}

// CatchUp sweeps yesterday, for a process that was down at the scheduled time.
func (s *SweepService) CatchUp(ctx context.Context) *model.SweepResult {
	yesterday, _ := util.AddDays(util.Today(s.clock), -1)
	return s.RunForDate(ctx, yesterday)
}

// RunForDate runs both steps for date. A failing step is logged and recorded
// in the result; it never stops the other one and is not retried.
func (s *SweepService) RunForDate(ctx context.Context, date string) *model.SweepResult {
	ctx, span := tracing.Tracer.Start(ctx, "SweepService.Run")
	defer span.End()

	result := &model.SweepResult{
		RunID:     uuid.New().String(),
		Date:      date,
		StartedAt: s.clock.Now().Format(time.RFC3339),
	}
	span.SetAttributes(attribute.String("sweep.run_id", result.RunID), attribute.String("sweep.date", date))
	log := logger.Log.With(zap.String("runID", result.RunID), zap.String("date", date))
	log.Info("daily sweep started")

	backfilled, err := s.MarkHabitsAsNotDone(ctx, date)
	result.Backfilled = backfilled
	monitoring.SweepRows.WithLabelValues("backfill").Add(float64(backfilled))
	if err != nil {
		result.BackfillError = err.Error()
		monitoring.SweepFailures.WithLabelValues("backfill").Inc()
		span.RecordError(err)
		log.Error("mark habits as not done failed", zap.Error(err))
	} else {
		log.Info("habits marked as not done", zap.Int64("count", backfilled))
	}

	expired, err := s.ExpireSkipDays(ctx, date)
	result.Expired = expired
	monitoring.SweepRows.WithLabelValues("expire").Add(float64(expired))
	if err != nil {
		result.ExpireError = err.Error()
		monitoring.SweepFailures.WithLabelValues("expire").Inc()
		span.RecordError(err)
		log.Error("expire skip days failed", zap.Error(err))
	} else {
		log.Info("skip days expired", zap.Int64("count", expired))
	}

	monitoring.SweepLastRun.SetToCurrentTime()

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()
	return result
}

// LastResult is the most recent run, or nil before the first one.
func (s *SweepService) LastResult() *model.SweepResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
