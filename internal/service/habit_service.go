package service

import (
	"context"
	"errors"
	"fmt"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/logger"
	"habit_tracker_backend/pkg/monitoring"
	"habit_tracker_backend/pkg/tracing"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HabitService owns habit CRUD, completions and level recomputation.
type HabitService struct {
	db          *gorm.DB
	habits      *repository.HabitRepository
	completions *repository.CompletionRepository
	ledger      *SkipDayService
	locker      HabitLocker
	clock       util.Clock
	lockTimeout time.Duration
}

// NewHabitService creates a HabitService.
func NewHabitService(
	db *gorm.DB,
	habits *repository.HabitRepository,
	completions *repository.CompletionRepository,
	ledger *SkipDayService,
	locker HabitLocker,
	clock util.Clock,
	lockTimeout time.Duration,
) *HabitService {
	return &HabitService{
		db:          db,
		habits:      habits,
		completions: completions,
		ledger:      ledger,
		locker:      locker,
		clock:       clock,
		lockTimeout: lockTimeout,
	}
}

// CreateHabitRequest is the body of POST /habits.
type CreateHabitRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Motivation  string           `json:"motivation"`
	TargetType  model.TargetType `json:"targetType" binding:"required"`
	TargetValue *decimal.Decimal `json:"targetValue" swaggertype:"number"`
	TargetUnit  string           `json:"targetUnit" binding:"max=50"`
	DailyTarget *decimal.Decimal `json:"dailyTarget" swaggertype:"number"`
	Trigger     string           `json:"trigger" binding:"max=255"`
	Category    string           `json:"category" binding:"required,max=50"`
	Priority    string           `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func (r *CreateHabitRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("habit name is required")
	}
	if !r.TargetType.Valid() {
		return util.ErrInvalidTargetType
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if r.TargetType == model.TargetNumeric && (r.TargetValue == nil || !r.TargetValue.IsPositive()) {
		return errors.New("valid target value is required for numeric habits")
	}
	return nil
}

// UpdateHabitRequest only carries the editable fields; nil means unchanged.
type UpdateHabitRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Motivation  *string          `json:"motivation"`
	TargetValue *decimal.Decimal `json:"targetValue" swaggertype:"number"`
	TargetUnit  *string          `json:"targetUnit" binding:"omitempty,max=50"`
	DailyTarget *decimal.Decimal `json:"dailyTarget" swaggertype:"number"`
	Trigger     *string          `json:"trigger" binding:"omitempty,max=255"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
	Priority    *string          `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// Validate applies the create rules to the fields that are present.
func (r *UpdateHabitRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("habit name must not be blank")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return errors.New("category must not be blank")
	}
	if r.TargetValue != nil && !r.TargetValue.IsPositive() {
		return errors.New("targetValue must be positive")
	}
	return nil
}

func (r *UpdateHabitRequest) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Name != nil {
		fields["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Motivation != nil {
		fields["motivation"] = *r.Motivation
	}
	if r.TargetValue != nil {
		fields["target_value"] = decimal.NewNullDecimal(*r.TargetValue)
	}
	if r.TargetUnit != nil {
		fields["target_unit"] = *r.TargetUnit
	}
	if r.DailyTarget != nil {
		fields["daily_target"] = decimal.NewNullDecimal(*r.DailyTarget)
	}
	if r.Trigger != nil {
		fields["habit_trigger"] = *r.Trigger
	}
	if r.Category != nil {
		fields["category"] = strings.TrimSpace(*r.Category)
	}
	if r.Priority != nil {
		fields["priority"] = *r.Priority
	}
	return fields
}

// CompletionRequest records one day. An empty Date means today.
type CompletionRequest struct {
	Date      string                 `json:"date"`
	Status    model.CompletionStatus `json:"status" binding:"required"`
	Value     *decimal.Decimal       `json:"value" swaggertype:"number"`
	SkipDayID *uint                  `json:"skipDayId"`
}

func (r *CompletionRequest) Validate() error {
	if !r.Status.Valid() {
		return util.ErrInvalidStatus
	}
	if r.Date != "" && !util.IsValidDate(r.Date) {
		return util.ErrInvalidDate
	}
	if r.Value != nil && r.Value.IsNegative() {
		return errors.New("value must not be negative")
	}
	return nil
}

// CompletionResult reports the stored row and any level change it caused.
type CompletionResult struct {
	Habit          *model.Habit           `json:"habit"`
	Completion     *model.HabitCompletion `json:"completion"`
	PreviousLevel  int                    `json:"previousLevel"`
	LevelUp        bool                   `json:"levelUp"`
	SkipDayGranted *model.SkipDay         `json:"skipDayGranted,omitempty"`
	SkipDayUsed    bool                   `json:"skipDayUsed"`
	Graduated      bool                   `json:"graduated"`
}

func (s *HabitService) today() string {
	return util.Today(s.clock)
}

// withHabitLock runs fn while holding the habit's lock. lockTimeout bounds only
// the wait, not fn.
func (s *HabitService) withHabitLock(ctx context.Context, habitID uint, fn func() error) error {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	unlock, err := s.locker.Lock(lockCtx, habitID)
	if err != nil {
		return err
	}
	defer unlock()

	return fn()
}

// Create validates req and stores a new level-1 habit for userID.
func (s *HabitService) Create(ctx context.Context, userID uint, req CreateHabitRequest) (*model.Habit, error) {
	habit := &model.Habit{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Motivation:  req.Motivation,
		TargetType:  req.TargetType,
		TargetUnit:  req.TargetUnit,
		Trigger:     req.Trigger,
		Category:    strings.TrimSpace(req.Category),
		Priority:    req.Priority,
		StartDate:   s.today(),
	}
	if habit.Priority == "" {
		habit.Priority = "medium"
	}
	if req.TargetValue != nil {
		habit.TargetValue = decimal.NewNullDecimal(*req.TargetValue)
	}
	if req.DailyTarget != nil {
		habit.DailyTarget = decimal.NewNullDecimal(*req.DailyTarget)
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return habit, nil
}

// Get returns nil, nil when the habit does not exist, is deleted or belongs to
// someone else.
func (s *HabitService) Get(ctx context.Context, habitID, userID uint) (*model.Habit, error) {
	habit, err := s.habits.FindByIDAndUser(ctx, habitID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return habit, nil
}

// List returns the habits of userID visible under view.
func (s *HabitService) List(ctx context.Context, userID uint, view model.HabitView) ([]model.HabitSummary, error) {
	habits, err := s.habits.ListByUser(ctx, userID, view)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(habits))
	for i := range habits {
		ids[i] = habits[i].ID
	}

	statuses, err := s.completions.StatusesForDate(ctx, ids, s.today())
	if err != nil {
		return nil, err
	}
	skipCounts, err := s.ledger.repo.CountAvailableByHabit(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.HabitSummary, len(habits))
	for i, h := range habits {
		summaries[i] = model.HabitSummary{Habit: h, SkipDaysCount: skipCounts[h.ID]}
		if status, ok := statuses[h.ID]; ok {
			st := status
			summaries[i].TodayStatus = &st
		}
	}
	return summaries, nil
}

// Update applies req and recomputes the level when the numeric target moved.
// It returns nil, nil when the habit is not found.
func (s *HabitService) Update(ctx context.Context, habitID, userID uint, req UpdateHabitRequest) (*model.Habit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fields := req.fields()
	if len(fields) == 0 {
		return nil, util.ErrNoFieldsToUpdate
	}

	var updated *model.Habit
	err := s.withHabitLock(ctx, habitID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			habits := s.habits.WithTx(tx)
			habit, err := habits.FindByIDAndUser(ctx, habitID, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			if _, err := habits.UpdateFields(ctx, habitID, userID, fields); err != nil {
				return err
			}
			habit, err = habits.FindByID(ctx, habitID)
			if err != nil {
				return err
			}

			if req.TargetValue != nil && habit.TargetType == model.TargetNumeric {
				if _, err := s.recompute(ctx, tx, habit); err != nil {
					return err
				}
			}
			updated = habit
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("update habit %d: %w", habitID, err)
	}
	return updated, nil
}

// Delete soft deletes the habit and hard deletes its skip days. Completions
// stay but are unreachable.
func (s *HabitService) Delete(ctx context.Context, habitID, userID uint, reason string) (bool, error) {
	var deleted bool
	err := s.withHabitLock(ctx, habitID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ok, err := s.habits.WithTx(tx).SoftDelete(ctx, habitID, userID, reason)
			if err != nil || !ok {
				return err
			}
			removed, err := s.ledger.WithTx(tx).RemoveForHabit(ctx, habitID)
			if err != nil {
				return err
			}
			deleted = true
			logger.Log.Info("habit deleted",
				zap.Uint("habitID", habitID),
				zap.Uint("userID", userID),
				zap.Int64("skipDaysRemoved", removed),
			)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("delete habit %d: %w", habitID, err)
	}
	return deleted, nil
}

// RecordCompletion is the online path.
func (s *HabitService) RecordCompletion(ctx context.Context, userID, habitID uint, req CompletionRequest) (*CompletionResult, error) {
	return s.recordCompletion(ctx, userID, habitID, req, false)
}

// SyncCompletion replays a completion queued by an offline client. Replays of
// the same day are plain upserts.
func (s *HabitService) SyncCompletion(ctx context.Context, userID, habitID uint, req CompletionRequest) (*CompletionResult, error) {
	req.SkipDayID = nil
	return s.recordCompletion(ctx, userID, habitID, req, true)
}

// recordCompletion writes the day row, recomputes the level, grants a skip day
// on level-up and graduates the habit, all in one transaction under the
// habit lock. A missing habit yields nil, nil.
func (s *HabitService) recordCompletion(ctx context.Context, userID, habitID uint, req CompletionRequest, markedOffline bool) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "HabitService.RecordCompletion")
	defer span.End()

	date := req.Date
	if date == "" {
		date = s.today()
	}
	// YYYY-MM-DD compares lexically
	if date > s.today() {
		return nil, util.ErrFutureDate
	}
	span.SetAttributes(
		attribute.Int64("habit.id", int64(habitID)),
		attribute.String("completion.status", string(req.Status)),
		attribute.String("completion.date", date),
		attribute.Bool("completion.offline", markedOffline),
	)

	var result *CompletionResult
	err := s.withHabitLock(ctx, habitID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			habit, err := s.habits.WithTx(tx).FindByIDAndUser(ctx, habitID, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			if habit.TargetType == model.TargetNumeric && req.Status == model.StatusDone && req.Value == nil {
				return util.ErrValueRequired
			}

			res := &CompletionResult{PreviousLevel: habit.CurrentLevel}

			if req.Status == model.StatusSkip && req.SkipDayID != nil {
				res.SkipDayUsed, err = s.ledger.WithTx(tx).Consume(ctx, habitID, *req.SkipDayID, date)
				if err != nil {
					return err
				}
			}

			completion := &model.HabitCompletion{
				HabitID:       habitID,
				Date:          date,
				Status:        req.Status,
				MarkedOffline: markedOffline,
				SyncedAt:      s.clock.Now(),
			}
			if habit.TargetType == model.TargetNumeric && req.Status == model.StatusDone {
				completion.Value = decimal.NewNullDecimal(*req.Value)
			}
			if err := s.completions.WithTx(tx).Upsert(ctx, completion); err != nil {
				return fmt.Errorf("upsert completion: %w", err)
			}

			outcome, err := s.recompute(ctx, tx, habit)
			if err != nil {
				return err
			}
			res.LevelUp = outcome.levelUp
			res.SkipDayGranted = outcome.granted
			res.Graduated = outcome.graduated

			res.Completion, err = s.completions.WithTx(tx).FindByHabitAndDate(ctx, habitID, date)
			if err != nil {
				return err
			}
			res.Habit, err = s.habits.WithTx(tx).FindByID(ctx, habitID)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, util.ErrValueRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("record completion for habit %d: %w", habitID, err)
	}

	if result != nil {
		monitoring.CompletionsRecorded.WithLabelValues(string(req.Status), strconv.FormatBool(markedOffline)).Inc()
	}
	return result, nil
}

type recomputeOutcome struct {
	levelUp   bool
	granted   *model.SkipDay
	graduated bool
}

// recompute must run inside the habit lock and tx. It stores the new level,
// grants one skip day when the level rose above every level the habit already
// earned a skip day at (however many levels it rose by) and graduates a duration habit the first time its streak reaches 90 days.
func (s *HabitService) recompute(ctx context.Context, tx *gorm.DB, habit *model.Habit) (recomputeOutcome, error) {
	var outcome recomputeOutcome
	habits := s.habits.WithTx(tx)

	done, err := s.completions.WithTx(tx).ListDone(ctx, habit.ID)
	if err != nil {
		return outcome, fmt.Errorf("load completions: %w", err)
	}

	today := s.today()
	result := ComputeLevel(habit, done, today)
	oldLevel := habit.CurrentLevel

	habit.CurrentLevel = result.Level
	habit.CurrentProgress = result.Progress
	if err := habits.UpdateLevel(ctx, habit); err != nil {
		return outcome, fmt.Errorf("update level: %w", err)
	}

	if result.Level > oldLevel {
		outcome.levelUp = true
		monitoring.LevelUps.WithLabelValues(string(habit.TargetType)).Inc()

		// a level pays out once; climbing back after a drop earns nothing new
		ledger := s.ledger.WithTx(tx)
		earned, err := ledger.HighestLevelEarned(ctx, habit.ID)
		if err != nil {
			return outcome, err
		}
		if result.Level > earned {
			outcome.granted, err = ledger.Grant(ctx, habit.ID, result.Level)
			if err != nil {
				return outcome, err
			}
		}
	}

	if habit.TargetType == model.TargetDuration90 && result.Graduated && !habit.IsGraduated() {
		ok, err := habits.MarkGraduated(ctx, habit.ID, today)
		if err != nil {
			return outcome, fmt.Errorf("graduate habit: %w", err)
		}
		if ok {
			habit.GraduatedDate = &today
			outcome.graduated = true
			monitoring.Graduations.Inc()
			logger.Log.Info("habit graduated",
				zap.Uint("habitID", habit.ID),
				zap.Int("consecutiveDays", result.ConsecutiveDays),
			)
		}
	}

	logger.Log.Debug("habit level recomputed",
		zap.Uint("habitID", habit.ID),
		zap.Int("oldLevel", oldLevel),
		zap.Int("newLevel", result.Level),
		zap.String("progress", result.Progress.String()),
	)
	return outcome, nil
}

// Calendar lists a habit's completions for month (YYYY-MM).
func (s *HabitService) Calendar(ctx context.Context, habitID, userID uint, month string) ([]model.HabitCompletion, error) {
	if _, err := util.ParseMonth(month); err != nil {
		return nil, err
	}
	habit, err := s.Get(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, util.ErrHabitNotFound
	}
	return s.completions.ListByMonth(ctx, habitID, month)
}

// AvailableSkipDays lists spendable credits, soonest expiry first.
func (s *HabitService) AvailableSkipDays(ctx context.Context, habitID, userID uint) ([]model.SkipDay, error) {
	habit, err := s.Get(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, util.ErrHabitNotFound
	}
	return s.ledger.ListAvailable(ctx, habitID)
}
