package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompletionStatus is the outcome recorded for one habit on one day.
type CompletionStatus string

const (
	StatusDone    CompletionStatus = "done"
	StatusNotDone CompletionStatus = "not_done"
	StatusSkip    CompletionStatus = "skip"
)

func (s CompletionStatus) Valid() bool {
	switch s {
	case StatusDone, StatusNotDone, StatusSkip:
		return true
	}
	return false
}

// HabitCompletion is the outcome of one habit on one calendar day.
// swagger:model HabitCompletion
type HabitCompletion struct {
	ID            uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	HabitID       uint                `gorm:"not null;uniqueIndex:uidx_habit_date" json:"habitId"`
	Date          string              `gorm:"size:10;not null;uniqueIndex:uidx_habit_date;index" json:"date"`
	Status        CompletionStatus    `gorm:"size:10;not null" json:"status"`
	Value         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"value" swaggertype:"number"`
	MarkedOffline bool                `gorm:"not null;default:false" json:"markedOffline"`
	SyncedAt      time.Time           `json:"syncedAt"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func (HabitCompletion) TableName() string {
	return "habit_completions"
}
