package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftDuration_DayShift(t *testing.T) {
	p := Policy{ShiftStart: "09:00", ShiftEnd: "17:00"}
	assert.Equal(t, 8*time.Hour, p.ShiftDuration())
	assert.False(t, p.IsOvernight())
}

func TestShiftDuration_NightShift(t *testing.T) {
	p := Policy{ShiftStart: "22:00", ShiftEnd: "06:00"}
	assert.Equal(t, 8*time.Hour, p.ShiftDuration())
	assert.True(t, p.IsOvernight())
}

func TestShiftEndOn_NightShiftFallsOnNextDay(t *testing.T) {
	p := Policy{ShiftStart: "22:00", ShiftEnd: "06:00", Timezone: "Asia/Jakarta"}
	loc := p.Location()
	require.Equal(t, "Asia/Jakarta", loc.String())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	end := p.ShiftEndOn(date, loc)

	assert.Equal(t, 11, end.Day())
	assert.Equal(t, 6, end.Hour())
}

func TestAutoPunchOutDeadlineOn(t *testing.T) {
	p := Policy{ShiftStart: "09:00", ShiftEnd: "17:00", AutoPunchOutBufferMin: 90}
	loc := time.UTC

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	deadline := p.AutoPunchOutDeadlineOn(date, loc)

	assert.Equal(t, time.Date(2025, 3, 10, 18, 30, 0, 0, loc), deadline)
}

func TestLocation_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	p := Policy{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, p.Location())
}
