package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	testCases := []struct {
		input   string
		minutes int
		ok      bool
	}{
		{"09:00", 540, true},
		{"17:30", 1050, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"9.30", 570, true},
		{" 08:15 ", 495, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		minutes, ok := ParseClock(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.minutes, minutes, "input %q", tc.input)
		}
	}
}

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	// Touching endpoints are not an overlap.
	assert.False(t, IntervalsOverlap(base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.True(t, IntervalsOverlap(base, base.Add(time.Hour), base.Add(59*time.Minute), base.Add(2*time.Hour)))
	assert.True(t, IntervalsOverlap(base, base.Add(time.Hour), base.Add(-time.Hour), base.Add(time.Minute)))
	assert.False(t, IntervalsOverlap(base, base.Add(time.Hour), base.Add(2*time.Hour), base.Add(3*time.Hour)))
}

func TestStartOfDay(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Jakarta")
	moment := time.Date(2026, 8, 31, 15, 45, 12, 0, loc)
	midnight := StartOfDay(moment)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, loc), midnight)
	assert.Equal(t, loc, midnight.Location())
}
