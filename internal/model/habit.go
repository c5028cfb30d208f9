package model

import (
	"github.com/shopspring/decimal"
)

// TargetType says how a habit counts progress.
type TargetType string

const (
	TargetDuration90 TargetType = "duration_90"
	TargetNumeric    TargetType = "numeric"
)

func (t TargetType) Valid() bool {
	return t == TargetDuration90 || t == TargetNumeric
}

// HabitView is one side of the active/graduated/deleted partition.
type HabitView string

const (
	ViewActive    HabitView = "active"
	ViewGraduated HabitView = "graduated"
	ViewDeleted   HabitView = "deleted"
)

// ParseHabitView falls back to active for anything unknown.
func ParseHabitView(s string) HabitView {
	switch HabitView(s) {
	case ViewGraduated, "completed":
		return ViewGraduated
	case ViewDeleted:
		return ViewDeleted
	default:
		return ViewActive
	}
}

// Habit is a daily habit owned by one user. DeletedAt doubles as the soft
// delete flag, so default gorm queries only ever see non-deleted habits.
// swagger:model Habit
type Habit struct {
	BaseModel
	UserID          uint                `gorm:"index;not null" json:"userId"`
	Name            string              `gorm:"size:100;not null" json:"name"`
	Motivation      string              `gorm:"type:text" json:"motivation"`
	TargetType      TargetType          `gorm:"size:20;not null" json:"targetType"`
	TargetValue     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"targetValue" swaggertype:"number"`
	TargetUnit      string              `gorm:"size:50" json:"targetUnit"`
	DailyTarget     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"dailyTarget" swaggertype:"number"`
	Trigger         string              `gorm:"column:habit_trigger;size:255" json:"trigger"`
	Category        string              `gorm:"size:50;not null" json:"category"`
	Priority        string              `gorm:"size:20;default:'medium'" json:"priority"`
	StartDate       string              `gorm:"size:10;not null" json:"startDate"`
	CurrentLevel    int                 `gorm:"not null;default:0" json:"currentLevel"`
	CurrentProgress decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0" json:"currentProgress" swaggertype:"number"`
	GraduatedDate   *string             `gorm:"size:10;index" json:"graduatedDate"`
	DeletionReason  string              `gorm:"size:255" json:"deletionReason,omitempty"`
}

func (Habit) TableName() string {
	return "habits"
}

func (h *Habit) IsGraduated() bool {
	return h.GraduatedDate != nil
}

// HabitSummary is a list row: the habit plus today's status and the number of
// skip days it can still spend.
type HabitSummary struct {
	Habit
	TodayStatus   *CompletionStatus `json:"todayStatus"`
	SkipDaysCount int64             `json:"skipDaysCount"`
}
