package model

import "time"

// Setting holds per-user preferences. A zero SkipExpiryDays means "use the
// server default".
// swagger:model Setting
type Setting struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"userId"`
	SkipExpiryDays int       `gorm:"not null;default:0" json:"skipExpiryDays"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Setting) TableName() string {
	return "settings"
}
