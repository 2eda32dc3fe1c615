package timeutil

import (
	"fmt"
	"time"
)

// calendarDiff splits the interval [from, to] into whole years, months and
// days the way a calendar reads it, so Jan 31 to Feb 28 is 28 days and
// Jan 15 to Mar 15 is exactly two months.
func calendarDiff(from, to time.Time) (years, months, days int) {
	from = from.In(to.Location())
	years = to.Year() - from.Year()
	months = int(to.Month()) - int(from.Month())
	days = to.Day() - from.Day()

	if clockOf(to) < clockOf(from) {
		days--
	}
	if days < 0 {
		months--
		// days in the month before to's month
		days += time.Date(to.Year(), to.Month(), 0, 0, 0, 0, 0, to.Location()).Day()
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months, days
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// DebtAge describes how long ago from was, in the largest whole unit.
// The zero time reads "Unknown".
func DebtAge(from, now time.Time) string {
	if from.IsZero() {
		return "Unknown"
	}
	if from.After(now) {
		return "0 day(s)"
	}
	y, m, d := calendarDiff(from, now)
	switch {
	case y > 0:
		return fmt.Sprintf("%d year(s)", y)
	case m > 0:
		return fmt.Sprintf("%d month(s)", m)
	case d >= 7:
		return fmt.Sprintf("%d week(s)", d/7)
	}
	return fmt.Sprintf("%d day(s)", d)
}
