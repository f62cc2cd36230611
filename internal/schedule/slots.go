package schedule

import (
	"fmt"
	"time"
)

// Slot is one candidate meeting slot. EndUTC is always StartUTC plus the
// event duration.
type Slot struct {
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`
}

// PastSlotPolicy selects how "already past" is decided for a candidate slot.
// The booking page historically flip-flopped between the two comparisons, so
// the choice stays an explicit switch rather than a hardcoded rule.
type PastSlotPolicy int

const (
	// RejectByStart keeps only slots whose start is strictly after now.
	// This is the default.
	RejectByStart PastSlotPolicy = iota
	// RejectByEnd keeps slots whose end is strictly after now, so a slot
	// that is currently in progress is still offered.
	RejectByEnd
)

// FilterOptions tunes the availability filter.
type FilterOptions struct {
	Past PastSlotPolicy
}

// Grid walks a window in duration-minute steps, emitting a candidate slot at
// every boundary strictly before the window end. The last slot's end may
// spill past the window end: a 45-minute slot starting at 17:15 inside an
// 08:00-18:00 window is still generated.
func Grid(w Window, duration int) ([]Slot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", duration)
	}
	if w.IsZero() {
		return nil, nil
	}

	step := time.Duration(duration) * time.Minute
	var slots []Slot
	for s := w.From; s.Before(w.To); s = s.Add(step) {
		slots = append(slots, Slot{StartUTC: s, EndUTC: s.Add(step)})
	}
	return slots, nil
}

// overlaps reports whether a slot collides with a busy interval. Exact
// boundary coincidence counts as a collision: a slot ending the instant a
// busy period starts (or starting the instant one ends) is excluded. That is
// stricter than a pure half-open interval check and is deliberate.
func overlaps(s Slot, b BusyInterval) bool {
	return !s.EndUTC.Before(b.Start) && !s.StartUTC.After(b.End)
}

// Filter drops candidate slots that are already past or that collide with a
// busy interval, preserving chronological order. now must be supplied by the
// caller; the filter never reads the clock itself.
func Filter(slots []Slot, busy []BusyInterval, now time.Time, opts FilterOptions) []Slot {
	var free []Slot
	for _, s := range slots {
		switch opts.Past {
		case RejectByEnd:
			if !s.EndUTC.After(now) {
				continue
			}
		default:
			if !s.StartUTC.After(now) {
				continue
			}
		}

		blocked := false
		for _, b := range busy {
			if overlaps(s, b) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		free = append(free, s)
	}
	return free
}

// FreeSlots runs the whole per-date pipeline: anchor the wall-clock
// availability window on the date, generate the candidate grid, and filter
// by busy intervals and the past-slot rule. An empty fromTime/toTime pair
// (no availability that weekday) yields no slots and no error.
func FreeSlots(date Date, fromTime, toTime string, loc *time.Location, duration int, busy []BusyInterval, now time.Time, opts FilterOptions) ([]Slot, error) {
	w, err := DayWindow(date, fromTime, toTime, loc)
	if err != nil {
		return nil, err
	}
	grid, err := Grid(w, duration)
	if err != nil {
		return nil, err
	}
	return Filter(grid, busy, now, opts), nil
}
