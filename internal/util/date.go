package util

import (
	"time"
)

// Clock is the time source for everything that needs "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the process local time.
var SystemClock Clock = systemClock{}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// LocationClock reads the system time in Loc, for servers whose day boundary
// is not the process timezone.
type LocationClock struct {
	Loc *time.Location
}

func (c LocationClock) Now() time.Time { return time.Now().In(c.Loc) }

// ClockIn returns the clock and location for an IANA timezone name. "" and
// "Local" mean the process's local time. On error the local clock is returned
// alongside it.
func ClockIn(timezone string) (Clock, *time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return SystemClock, time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return SystemClock, time.Local, err
	}
	return LocationClock{Loc: loc}, loc, nil
}

// FormatDate truncates t to its calendar date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// Today formats the current date of c as YYYY-MM-DD.
func Today(c Clock) string {
	return FormatDate(c.Now())
}

// ParseDate accepts only YYYY-MM-DD. The result is midnight UTC so that day
// arithmetic is not affected by DST transitions.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// IsValidDate reports whether s is a real YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from -> to.
func DaysBetween(from, to string) (int, error) {
	f, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// ParseMonth validates YYYY-MM and returns its first day.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}
