package schedule

import (
	"fmt"
	"time"
)

const wallClockLayout = "15:04"

// FormatInZone renders slot starts as "HH:mm" wall-clock strings in the given
// display zone, preserving order. A nil loc formats in UTC.
func FormatInZone(slots []Slot, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartUTC.In(loc).Format(wallClockLayout))
	}
	return out
}

// ProjectTimes re-projects an already-decided list of host-zone "HH:mm"
// strings into the viewer's zone for display. It is a pure reinterpretation
// over the final slot list: no overlap or past filtering happens here, and
// the slot count never changes. The booking submission still round-trips the
// host-zone strings, so this projection is display-only.
func ProjectTimes(date Date, times []string, hostLoc, viewerLoc *time.Location) ([]string, error) {
	if hostLoc == nil {
		hostLoc = time.UTC
	}
	if viewerLoc == nil {
		viewerLoc = time.UTC
	}
	out := make([]string, 0, len(times))
	for _, t := range times {
		instant, err := ReconstructStart(date, t, hostLoc)
		if err != nil {
			return nil, err
		}
		out = append(out, instant.In(viewerLoc).Format(wallClockLayout))
	}
	return out, nil
}

// ReconstructStart rebuilds the absolute instant a displayed slot refers to
// from its civil date and host-zone "HH:mm" string. Booking submissions hand
// the slot back in the host's frame of reference, so this is also the write
// path's interpretation of the guest's selection.
func ReconstructStart(date Date, hhmm string, hostLoc *time.Location) (time.Time, error) {
	if hostLoc == nil {
		hostLoc = time.UTC
	}
	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q: %w", hhmm, err)
	}
	return time.Date(date.Year, date.Month, date.Day, h, m, 0, 0, hostLoc).UTC(), nil
}
