package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInZone(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	slots := []Slot{
		{StartUTC: utc(10, 13, 0), EndUTC: utc(10, 13, 30)},
		{StartUTC: utc(10, 13, 30), EndUTC: utc(10, 14, 0)},
	}

	assert.Equal(t, []string{"13:00", "13:30"}, FormatInZone(slots, time.UTC))
	// March 10 2025 is EDT (UTC-4)
	assert.Equal(t, []string{"09:00", "09:30"}, FormatInZone(slots, ny))
	assert.Empty(t, FormatInZone(nil, time.UTC))
}

func TestProjectTimesIntoViewerZone(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	kolkata := mustLoc(t, "Asia/Kolkata")
	d := Date{2025, time.March, 10}

	// host shows 09:00 and 09:30 EDT; Kolkata is UTC+5:30, EDT is UTC-4
	projected, err := ProjectTimes(d, []string{"09:00", "09:30"}, ny, kolkata)
	require.NoError(t, err)
	assert.Equal(t, []string{"18:30", "19:00"}, projected)
}

func TestProjectTimesSameZoneIsIdentity(t *testing.T) {
	d := Date{2025, time.March, 10}
	times := []string{"08:00", "08:30", "17:30"}

	projected, err := ProjectTimes(d, times, time.UTC, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, times, projected)
}

func TestProjectTimesKeepsSlotCount(t *testing.T) {
	// projection is display-only: it must never add or drop slots,
	// even when the converted times cross into another civil day
	sydney := mustLoc(t, "Australia/Sydney")
	d := Date{2025, time.March, 10}
	times := []string{"16:00", "16:30", "17:00"}

	projected, err := ProjectTimes(d, times, time.UTC, sydney)
	require.NoError(t, err)
	assert.Len(t, projected, len(times))
}

func TestProjectTimesMalformed(t *testing.T) {
	d := Date{2025, time.March, 10}
	_, err := ProjectTimes(d, []string{"late"}, time.UTC, time.UTC)
	assert.Error(t, err)
}

func TestReconstructStartHostFrame(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	d := Date{2025, time.March, 10}

	// a guest picks "09:00" shown in the host's zone; the write path must
	// rebuild the instant in that zone, not the viewer's
	instant, err := ReconstructStart(d, "09:00", ny)
	require.NoError(t, err)
	assert.True(t, instant.Equal(utc(10, 13, 0)))

	instant, err = ReconstructStart(d, "09:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, instant.Equal(utc(10, 9, 0)))
}
