package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToClock(t *testing.T) {
	cases := []struct {
		elapsed float64
		day     int
		clock   string
	}{
		{0, 1, "08:00"},
		{59.9, 1, "08:59"},
		{239, 1, "11:59"},
		{240, 1, "13:00"},
		{479, 1, "16:59"},
		{480, 2, "08:00"},
		{720, 2, "13:00"},
		{1000, 3, "08:40"},
		{-15, 1, "08:00"},
		{math.NaN(), 1, "08:00"},
	}
	for _, c := range cases {
		got := ToClock(c.elapsed)
		assert.Equal(t, c.day, got.Day, "elapsed %v", c.elapsed)
		assert.Equal(t, c.clock, got.Clock, "elapsed %v", c.elapsed)
	}
	assert.Equal(t, "D2 08:00", ToClock(480).Label)
}

func TestToClock_NeverInLunchOrAfterShift(t *testing.T) {
	for m := 0; m < 3*WorkdayMinutes; m++ {
		clock := ToClock(float64(m)).Clock
		assert.False(t, clock >= "12:00" && clock < "13:00", "minute %d landed in lunch at %s", m, clock)
		assert.True(t, clock >= "08:00" && clock < "17:00", "minute %d outside shift at %s", m, clock)
	}

	for _, elapsed := range []float64{math.Inf(1), 1e300, math.MaxInt64, MaxClockMinutes + 0.5} {
		c := ToClock(elapsed)
		assert.Equal(t, math.MaxInt32+1, c.Day, "elapsed %v", elapsed)
		assert.Equal(t, "08:00", c.Clock, "elapsed %v", elapsed)
	}
	for _, elapsed := range []float64{math.NaN(), math.Inf(-1), -1e300} {
		assert.Equal(t, ClockTime{Day: 1, Clock: "08:00", Label: "D1 08:00"}, ToClock(elapsed), "elapsed %v", elapsed)
	}
	last := ToClock(MaxClockMinutes - 1)
	assert.Equal(t, math.MaxInt32, last.Day)
	assert.Equal(t, "16:59", last.Clock)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock(480))
	assert.Equal(t, "00:05", FormatClock(24*60+5))
	assert.Equal(t, "23:59", FormatClock(-1))
}

func TestWorkingMinutes(t *testing.T) {
	assert.Equal(t, 480, WorkdayMinutes)
	assert.Equal(t, 4800, WorkingMinutes(10))
	assert.Equal(t, 0, WorkingMinutes(-2))
}
