// Package schedule computes bookable time slots for a host's public booking
// page. All interval arithmetic happens on absolute UTC instants; wall-clock
// values are converted in exactly once (against the host's IANA zone) and only
// reprojected to wall-clock at the display step.
package schedule

import (
	"fmt"
	"time"
)

const civilDateLayout = "2006-01-02"

// Date is a civil calendar date with no time-of-day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(civilDateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(civilDateLayout)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Window is a half-open interval [From, To) of absolute UTC instants.
// The zero Window means "no availability" and generates no slots.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// parseHHMM parses the leading "HH:MM" of a wall-clock time string.
// Database drivers hand times back as "09:00" or "09:00:00.000000".
func parseHHMM(s string) (hour, minute int, err error) {
	if len(s) < 5 {
		return 0, 0, fmt.Errorf("invalid time string: %q", s)
	}
	t, err := time.Parse("15:04", s[:5])
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// DayWindow anchors a host's wall-clock availability window onto a calendar
// date. fromTime and toTime are interpreted on date in loc and converted to
// UTC. A toTime at or before fromTime means the window spans local midnight,
// and the end advances by exactly one day; windows longer than 24 hours are
// not expressible.
//
// Empty fromTime/toTime yields the zero Window rather than an error: a weekday
// with no configured availability is a normal state, not a failure.
func DayWindow(date Date, fromTime, toTime string, loc *time.Location) (Window, error) {
	if fromTime == "" || toTime == "" {
		return Window{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	fromH, fromM, err := parseHHMM(fromTime)
	if err != nil {
		return Window{}, err
	}
	toH, toM, err := parseHHMM(toTime)
	if err != nil {
		return Window{}, err
	}

	from := time.Date(date.Year, date.Month, date.Day, fromH, fromM, 0, 0, loc).UTC()
	to := time.Date(date.Year, date.Month, date.Day, toH, toM, 0, 0, loc).UTC()

	// overnight wraparound
	if !to.After(from) {
		to = to.AddDate(0, 0, 1)
	}

	return Window{From: from, To: to}, nil
}
