package util

import "errors"

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth      = errors.New("invalid month, expected YYYY-MM")
	ErrFutureDate        = errors.New("date must not be after today")
	ErrInvalidStatus     = errors.New("invalid completion status")
	ErrInvalidTargetType = errors.New("invalid target type")
	ErrValueRequired     = errors.New("value is required for numeric habits")
	ErrNoFieldsToUpdate  = errors.New("no valid fields to update")
	ErrLockTimeout       = errors.New("timed out waiting for habit lock")
)
