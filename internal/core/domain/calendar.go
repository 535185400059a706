package domain

import (
	"fmt"
	"math"
)

// Fixed single-shift calendar, all values in minutes since midnight
const (
	ShiftStartMinute = 8 * 60
	LunchStartMinute = 12 * 60
	LunchEndMinute   = 13 * 60
	ShiftEndMinute   = 17 * 60

	MorningMinutes   = LunchStartMinute - ShiftStartMinute
	AfternoonMinutes = ShiftEndMinute - LunchEndMinute

	// WorkdayMinutes excludes the unpaid lunch break
	WorkdayMinutes = MorningMinutes + AfternoonMinutes

	// MaxClockMinutes caps offsets so the day number cannot overflow int
	MaxClockMinutes = math.MaxInt32 * WorkdayMinutes
)

// ClockTime is a working-minute offset placed on the shift calendar
type ClockTime struct {
	Day   int    `json:"day"`
	Clock string `json:"clock"`
	Label string `json:"label"`
}

// ToClock maps elapsed working minutes onto a 1-based shift day and clock time.
// Negative and fractional offsets are floored to a non-negative integer first,
// huge ones saturate at MaxClockMinutes.
func ToClock(elapsed float64) ClockTime {
	offset := 0
	switch {
	case math.IsNaN(elapsed) || elapsed <= 0:
	case elapsed >= MaxClockMinutes:
		offset = MaxClockMinutes
	default:
		offset = int(math.Floor(elapsed))
	}

	day := offset/WorkdayMinutes + 1
	minuteInDay := offset % WorkdayMinutes

	clockMinute := ShiftStartMinute + minuteInDay
	if minuteInDay >= MorningMinutes {
		clockMinute = LunchEndMinute + (minuteInDay - MorningMinutes)
	}

	clock := FormatClock(clockMinute)
	return ClockTime{
		Day:   day,
		Clock: clock,
		Label: fmt.Sprintf("D%d %s", day, clock),
	}
}

// FormatClock renders minutes since midnight as HH:MM, wrapping at 24h
func FormatClock(minutes int) string {
	const day = 24 * 60
	m := ((minutes % day) + day) % day
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// WorkingMinutes is the number of working minutes in the given number of shift days
func WorkingMinutes(days int) int {
	if days < 0 {
		return 0
	}
	return days * WorkdayMinutes
}
