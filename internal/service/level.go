package service

import (
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/util"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	MaxLevel       = 9
	DaysPerLevel   = 10
	GraduationDays = 90
)

var ten = decimal.NewFromInt(10)

// LevelResult is what a recomputation derives from the completion history.
type LevelResult struct {
	Level           int
	Progress        decimal.Decimal
	ConsecutiveDays int
	// Graduated is true when the streak is long enough to graduate; whether
	// the habit was already graduated is the caller's business.
	Graduated bool
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// DurationLevel gives one level per ten days of streak.
func DurationLevel(consecutiveDays int) int {
	if consecutiveDays < 0 {
		return 0
	}
	return clampLevel(consecutiveDays / DaysPerLevel)
}

// NumericLevel gives one level per 10% of target reached. A non-positive
// target always yields level 0.
func NumericLevel(progress, target decimal.Decimal) int {
	if !target.IsPositive() {
		return 0
	}
	// floor((progress / target) * 100 / 10)
	steps := progress.Mul(ten).Div(target).Floor()
	if steps.GreaterThan(decimal.NewFromInt(MaxLevel)) {
		return MaxLevel
	}
	return clampLevel(int(steps.IntPart()))
}

// ConsecutiveDays counts done days in an unbroken run ending today. Day
// offsets are calendar differences, so the scan ends at the first missing
// day even when older done rows exist. Rows dated after today are ignored.
func ConsecutiveDays(completions []model.HabitCompletion, today string) int {
	dates := make([]string, 0, len(completions))
	for _, c := range completions {
		if c.Status == model.StatusDone {
			dates = append(dates, c.Date)
		}
	}
	// YYYY-MM-DD sorts lexically
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	consecutive := 0
	for _, date := range dates {
		diff, err := util.DaysBetween(date, today)
		if err == nil && diff < 0 {
			continue
		}
		if err != nil || diff != consecutive {
			break
		}
		consecutive++
	}
	return consecutive
}

// SumDone adds up the values of done completions. Rows without a value count
// as zero.
func SumDone(completions []model.HabitCompletion) decimal.Decimal {
	total := decimal.Zero
	for _, c := range completions {
		if c.Status == model.StatusDone && c.Value.Valid {
			total = total.Add(c.Value.Decimal)
		}
	}
	return total
}

// ComputeLevel derives the level for habit from its completion history.
func ComputeLevel(habit *model.Habit, completions []model.HabitCompletion, today string) LevelResult {
	switch habit.TargetType {
	case model.TargetDuration90:
		days := ConsecutiveDays(completions, today)
		return LevelResult{
			Level:           DurationLevel(days),
			Progress:        habit.CurrentProgress,
			ConsecutiveDays: days,
			Graduated:       days >= GraduationDays,
		}
	case model.TargetNumeric:
		progress := SumDone(completions)
		target := decimal.Zero
		if habit.TargetValue.Valid {
			target = habit.TargetValue.Decimal
		}
		return LevelResult{
			Level:    NumericLevel(progress, target),
			Progress: progress,
		}
	default:
		return LevelResult{Level: habit.CurrentLevel, Progress: habit.CurrentProgress}
	}
}
