package model

import "time"

// SkipDayStatus tracks a skip day through available, used and expired.
type SkipDayStatus string

const (
	SkipDayAvailable SkipDayStatus = "available"
	SkipDayUsed      SkipDayStatus = "used"
	SkipDayExpired   SkipDayStatus = "expired"
)

// SkipDay is a credit earned on level-up. available -> used or
// available -> expired, never both.
// swagger:model SkipDay
type SkipDay struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	HabitID       uint          `gorm:"not null;index:idx_skip_habit_status" json:"habitId"`
	LevelEarnedAt int           `gorm:"not null" json:"levelEarnedAt"`
	EarnedDate    string        `gorm:"size:10;not null" json:"earnedDate"`
	ExpiryDate    string        `gorm:"size:10;not null;index" json:"expiryDate"`
	Status        SkipDayStatus `gorm:"size:10;not null;default:'available';index:idx_skip_habit_status" json:"status"`
	UsedDate      *string       `gorm:"size:10" json:"usedDate"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (SkipDay) TableName() string {
	return "habit_skip_days"
}
