package timeutil

import (
	"time"
)

// Location is the business timezone. Ghana runs on GMT all year, so UTC is
// the default; SetLocation overrides it from configuration.
var Location = time.UTC

// SetLocation loads the named zone and makes it the business timezone.
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Location = loc
	return nil
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay returns 00:00:00 of t's day
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last microsecond of t's day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}

// StartOfMonth returns the first instant of t's month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last microsecond of t's month
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Microsecond)
}

// Common layouts
const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02 15:04:05"
	StatementLayout = "02-Jan-06"
	PeriodLayout    = "January 2006"
	DisplayLayout   = "2006-01-02 15:04"
)

// FormatDate formats t as 2006-01-02, or returns def for the zero time.
func FormatDate(t time.Time, def string) string {
	if t.IsZero() {
		return def
	}
	return t.Format(DateLayout)
}
