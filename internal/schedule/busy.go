package schedule

import "time"

// BusyInterval is one busy period reported by the host's external calendar,
// as a half-open [Start, End) of UTC instants. Derived fresh per request and
// never persisted.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// FreeBusySlot is one entry of a provider free/busy response, in epoch
// seconds. This matches the wire shape of the calendar provider's free/busy
// endpoint.
type FreeBusySlot struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
}

// BusyFromFreeBusy converts a provider free/busy payload into UTC busy
// intervals. A nil or empty payload is the normal "host fully free" case:
// it covers a calendar with no events as well as an absent or failed
// integration, which the caller has already logged and collapsed to empty.
func BusyFromFreeBusy(slots []FreeBusySlot) []BusyInterval {
	if len(slots) == 0 {
		return nil
	}
	busy := make([]BusyInterval, 0, len(slots))
	for _, s := range slots {
		busy = append(busy, BusyInterval{
			Start: time.Unix(s.StartTime, 0).UTC(),
			End:   time.Unix(s.EndTime, 0).UTC(),
		})
	}
	return busy
}
