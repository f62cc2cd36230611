package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, d)
	assert.Equal(t, "2025-03-10", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
}

func TestDayWindowUTC(t *testing.T) {
	d := Date{2025, time.March, 10}

	w, err := DayWindow(d, "08:00", "18:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), w.To)
}

func TestDayWindowHostZone(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	d := Date{2025, time.March, 10} // EDT, UTC-4

	w, err := DayWindow(d, "09:00", "17:00", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC), w.To)
}

func TestDayWindowOvernightWraparound(t *testing.T) {
	d := Date{2025, time.March, 10}

	// end numerically before start spans into the next day
	w, err := DayWindow(d, "22:00", "02:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC), w.To)

	// equal wall-clock values also wrap, giving a full 24h window
	w, err = DayWindow(d, "08:00", "08:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, w.To.Sub(w.From))
}

func TestDayWindowAbsentTimes(t *testing.T) {
	d := Date{2025, time.March, 10}

	w, err := DayWindow(d, "", "", time.UTC)
	require.NoError(t, err)
	assert.True(t, w.IsZero())

	w, err = DayWindow(d, "08:00", "", time.UTC)
	require.NoError(t, err)
	assert.True(t, w.IsZero())
}

func TestDayWindowMalformedTime(t *testing.T) {
	d := Date{2025, time.March, 10}

	_, err := DayWindow(d, "8am", "18:00", time.UTC)
	assert.Error(t, err)

	_, err = DayWindow(d, "08:00", "25:99", time.UTC)
	assert.Error(t, err)
}

func TestDayWindowLongTimeStrings(t *testing.T) {
	// postgres time columns scan as "09:00:00.000000"
	d := Date{2025, time.March, 10}
	w, err := DayWindow(d, "09:00:00.000000", "17:30:00.000000", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC), w.To)
}

func TestTimezoneRoundTrip(t *testing.T) {
	// formatting an instant in zone Z and re-parsing it as wall-clock-in-Z
	// recovers the instant, for zones with no DST transition inside the slot
	for _, zone := range []string{"UTC", "America/New_York", "Asia/Kolkata", "Australia/Sydney"} {
		loc := mustLoc(t, zone)
		d := Date{2025, time.March, 10}
		instant := time.Date(2025, 3, 10, 14, 30, 0, 0, loc).UTC()

		formatted := FormatInZone([]Slot{{StartUTC: instant}}, loc)
		require.Len(t, formatted, 1)

		back, err := ReconstructStart(d, formatted[0], loc)
		require.NoError(t, err)
		assert.True(t, back.Equal(instant), "zone %s: got %v want %v", zone, back, instant)
	}
}
