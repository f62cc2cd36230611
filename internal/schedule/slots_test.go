package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(day, hour, min int) time.Time {
	return time.Date(2025, 3, day, hour, min, 0, 0, time.UTC)
}

func TestGridStepsThroughWindow(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 10, 0)}

	slots, err := Grid(w, 30)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, utc(10, 8, 0), slots[0].StartUTC)
	assert.Equal(t, utc(10, 8, 30), slots[0].EndUTC)
	assert.Equal(t, utc(10, 9, 30), slots[3].StartUTC)
}

func TestGridExcludesStartAtWindowEnd(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 9, 0)}

	slots, err := Grid(w, 30)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	// no slot starts at 09:00
	assert.Equal(t, utc(10, 8, 30), slots[len(slots)-1].StartUTC)
}

func TestGridLastSlotMaySpillPastWindowEnd(t *testing.T) {
	// 45-minute steps on 08:00-10:00: slots at 08:00, 08:45, 09:30;
	// the 09:30 slot ends 10:15, past the window end, and is still kept
	w := Window{From: utc(10, 8, 0), To: utc(10, 10, 0)}

	slots, err := Grid(w, 45)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, utc(10, 9, 30), slots[2].StartUTC)
	assert.Equal(t, utc(10, 10, 15), slots[2].EndUTC)
}

func TestGridZeroWindow(t *testing.T) {
	slots, err := Grid(Window{}, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGridRejectsNonPositiveDuration(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 9, 0)}
	_, err := Grid(w, 0)
	assert.Error(t, err)
	_, err = Grid(w, -15)
	assert.Error(t, err)
}

func TestFilterPastByStart(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 10, 0)}
	slots, err := Grid(w, 30)
	require.NoError(t, err)

	// now exactly at a slot start: that slot is excluded, later ones kept
	now := utc(10, 8, 30)
	free := Filter(slots, nil, now, FilterOptions{Past: RejectByStart})
	require.Len(t, free, 2)
	assert.Equal(t, utc(10, 9, 0), free[0].StartUTC)
}

func TestFilterPastByEnd(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 10, 0)}
	slots, err := Grid(w, 30)
	require.NoError(t, err)

	// the in-progress 08:30-09:00 slot survives under the end comparison
	now := utc(10, 8, 45)
	free := Filter(slots, nil, now, FilterOptions{Past: RejectByEnd})
	require.Len(t, free, 3)
	assert.Equal(t, utc(10, 8, 30), free[0].StartUTC)

	// but its own end boundary is strict
	now = utc(10, 9, 0)
	free = Filter(slots, nil, now, FilterOptions{Past: RejectByEnd})
	require.Len(t, free, 2)
	assert.Equal(t, utc(10, 9, 0), free[0].StartUTC)
}

func TestFilterPastPoliciesDivergeOnInProgressSlot(t *testing.T) {
	slots := []Slot{{StartUTC: utc(10, 8, 0), EndUTC: utc(10, 8, 30)}}
	now := utc(10, 8, 15)

	assert.Empty(t, Filter(slots, nil, now, FilterOptions{Past: RejectByStart}))
	assert.Len(t, Filter(slots, nil, now, FilterOptions{Past: RejectByEnd}), 1)
}

func TestFilterBusyOverlap(t *testing.T) {
	busy := []BusyInterval{{Start: utc(10, 9, 0), End: utc(10, 10, 0)}}
	now := utc(9, 0, 0) // day before, past check never fires

	cases := []struct {
		name string
		slot Slot
		free bool
	}{
		{"well before", Slot{utc(10, 8, 0), utc(10, 8, 30)}, true},
		{"end touches busy start", Slot{utc(10, 8, 30), utc(10, 9, 0)}, false},
		{"inside busy", Slot{utc(10, 9, 15), utc(10, 9, 45)}, false},
		{"identical to busy", Slot{utc(10, 9, 0), utc(10, 10, 0)}, false},
		{"start touches busy end", Slot{utc(10, 10, 0), utc(10, 10, 30)}, false},
		{"well after", Slot{utc(10, 10, 30), utc(10, 11, 0)}, true},
		{"slot contains busy", Slot{utc(10, 8, 30), utc(10, 10, 30)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			free := Filter([]Slot{tc.slot}, busy, now, FilterOptions{})
			if tc.free {
				assert.Len(t, free, 1)
			} else {
				assert.Empty(t, free)
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	w := Window{From: utc(10, 8, 0), To: utc(10, 12, 0)}
	slots, err := Grid(w, 30)
	require.NoError(t, err)

	busy := []BusyInterval{{Start: utc(10, 9, 0), End: utc(10, 9, 30)}}
	free := Filter(slots, busy, utc(9, 0, 0), FilterOptions{})
	for i := 1; i < len(free); i++ {
		assert.True(t, free[i].StartUTC.After(free[i-1].StartUTC))
	}
}

func TestFreeSlotsIdempotent(t *testing.T) {
	d := Date{2025, time.March, 10}
	busy := []BusyInterval{{Start: utc(10, 12, 0), End: utc(10, 13, 0)}}
	now := utc(10, 0, 0)

	first, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, busy, now, FilterOptions{})
	require.NoError(t, err)
	second, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, busy, now, FilterOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFreeSlotsInactiveWeekday(t *testing.T) {
	// no availability row for the weekday means empty from/to and zero slots
	d := Date{2025, time.March, 10}
	slots, err := FreeSlots(d, "", "", time.UTC, 30, nil, utc(9, 0, 0), FilterOptions{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeSlotsOvernightContinuesPastMidnight(t *testing.T) {
	d := Date{2025, time.March, 10}
	slots, err := FreeSlots(d, "23:00", "01:00", time.UTC, 30, nil, utc(10, 0, 0), FilterOptions{})
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, utc(11, 0, 30), slots[3].StartUTC)
}

// Full-day scenario: UTC host, Monday 08:00-18:00, 30-minute event,
// now midnight that Monday, no busy data. Twenty slots 08:00..17:30.
func TestScenarioFullNominalGrid(t *testing.T) {
	d := Date{2025, time.March, 10}
	now := utc(10, 0, 0)

	slots, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, nil, now, FilterOptions{})
	require.NoError(t, err)
	require.Len(t, slots, 20)

	times := FormatInZone(slots, time.UTC)
	assert.Equal(t, "08:00", times[0])
	assert.Equal(t, "08:30", times[1])
	assert.Equal(t, "17:30", times[19])
}

// Same grid with one busy interval 09:00-09:30. Under the conservative
// touching rule the 08:30 slot (end touches busy start) and the 09:30 slot
// (start touches busy end) go too, alongside the coincident 09:00 slot.
func TestScenarioBusyIntervalRemovesAdjacentSlots(t *testing.T) {
	d := Date{2025, time.March, 10}
	now := utc(10, 0, 0)
	busy := []BusyInterval{{Start: utc(10, 9, 0), End: utc(10, 9, 30)}}

	slots, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, busy, now, FilterOptions{})
	require.NoError(t, err)
	require.Len(t, slots, 17)

	times := FormatInZone(slots, time.UTC)
	assert.NotContains(t, times, "08:30")
	assert.NotContains(t, times, "09:00")
	assert.NotContains(t, times, "09:30")
	assert.Contains(t, times, "08:00")
	assert.Contains(t, times, "10:00")
}

// No calendar credential: the busy set is empty and the result equals the
// full nominal grid (fail-open).
func TestScenarioNoIntegrationEqualsNominalGrid(t *testing.T) {
	d := Date{2025, time.March, 10}
	now := utc(10, 0, 0)

	nominal, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, nil, now, FilterOptions{})
	require.NoError(t, err)

	noGrant, err := FreeSlots(d, "08:00", "18:00", time.UTC, 30, BusyFromFreeBusy(nil), now, FilterOptions{})
	require.NoError(t, err)
	assert.Equal(t, nominal, noGrant)
}

// 45-minute event on 08:00-18:00: last slot starts 17:15 and ends exactly
// 18:00; nothing starts at or after 18:00.
func TestScenarioFortyFiveMinuteGrid(t *testing.T) {
	d := Date{2025, time.March, 10}
	now := utc(10, 0, 0)

	slots, err := FreeSlots(d, "08:00", "18:00", time.UTC, 45, nil, now, FilterOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	last := slots[len(slots)-1]
	assert.Equal(t, utc(10, 17, 15), last.StartUTC)
	assert.Equal(t, utc(10, 18, 0), last.EndUTC)
	for _, s := range slots {
		assert.True(t, s.StartUTC.Before(utc(10, 18, 0)))
	}
}

func TestBusyFromFreeBusy(t *testing.T) {
	start := utc(10, 9, 0)
	end := utc(10, 9, 30)

	busy := BusyFromFreeBusy([]FreeBusySlot{{StartTime: start.Unix(), EndTime: end.Unix()}})
	require.Len(t, busy, 1)
	assert.True(t, busy[0].Start.Equal(start))
	assert.True(t, busy[0].End.Equal(end))
	assert.Equal(t, time.UTC, busy[0].Start.Location())

	assert.Nil(t, BusyFromFreeBusy(nil))
	assert.Nil(t, BusyFromFreeBusy([]FreeBusySlot{}))
}
