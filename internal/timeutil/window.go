package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WindowArgs are the raw filter parameters every windowed view accepts.
type WindowArgs struct {
	From  string
	To    string
	Month string
	Year  string
	Range string
}

// Window is a resolved [Start, End] range. Both bounds are zero for an
// unbounded window. Month and Year echo the selection back to the caller
// and are zero when the window did not come from a month/year choice.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Month int       `json:"month,omitempty"`
	Year  int       `json:"year,omitempty"`
}

// Bounded reports whether the window has both bounds.
func (w Window) Bounded() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// Contains reports whether t falls inside the window. Every time is inside
// an unbounded window; the zero time is inside no bounded one.
func (w Window) Contains(t time.Time) bool {
	if !w.Bounded() {
		return true
	}
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// Label renders the window for report headers.
func (w Window) Label() string {
	if !w.Bounded() {
		return "All time"
	}
	if w.Start.Year() == w.End.Year() && w.Start.Month() == w.End.Month() {
		return w.Start.Format(PeriodLayout)
	}
	return fmt.Sprintf("%s to %s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// MonthWindow returns the calendar month containing t.
func MonthWindow(t time.Time) Window {
	start := StartOfMonth(t)
	return Window{
		Start: start,
		End:   EndOfMonth(start),
		Month: int(start.Month()),
		Year:  start.Year(),
	}
}

// ResolveWindow turns filter parameters into a window. Precedence:
//  1. from + to (both must parse; to is extended to the end of its day)
//  2. month and/or year (a lone month takes the current year, a lone
//     year takes the current month)
//  3. range = week | month | year
//  4. unbounded
func ResolveWindow(args WindowArgs, now time.Time) Window {
	if args.From != "" && args.To != "" {
		start, okStart := AsTime(args.From)
		end, okEnd := AsTime(args.To)
		if okStart && okEnd {
			return Window{Start: start, End: EndOfDay(end)}
		}
	}

	month := MonthToInt(args.Month)
	year := 0
	if y := strings.TrimSpace(args.Year); y != "" && isDigits(y) {
		year, _ = strconv.Atoi(y)
	}
	if month != 0 && year == 0 {
		year = now.Year()
	}
	if year != 0 && month == 0 {
		month = int(now.Month())
	}
	if month != 0 && year != 0 {
		return MonthWindow(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, Location))
	}

	switch strings.ToLower(strings.TrimSpace(args.Range)) {
	case "week":
		return Window{Start: now.AddDate(0, 0, -7), End: now}
	case "month":
		return MonthWindow(now)
	case "year":
		return Window{
			Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			End:   time.Date(now.Year(), time.December, 31, 23, 59, 59, 999999000, now.Location()),
			Year:  now.Year(),
		}
	}

	return Window{}
}

// MonthToInt accepts 1..12 or an English month name or abbreviation and
// returns the month number, or 0 when the value is not a month.
func MonthToInt(m string) int {
	m = strings.TrimSpace(m)
	if m == "" {
		return 0
	}
	if isDigits(m) {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			return 0
		}
		return v
	}
	m = strings.ToLower(m)
	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		if m == name || m == name[:3] {
			return int(i)
		}
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
