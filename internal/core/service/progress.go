package service

import (
	"math"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// NormalizeProgress collapses an order's status, date range and raw progress into one
// completion percentage in [0,100] as of the reference date; a zero ref means today.
func NormalizeProgress(order domain.Order, ref time.Time) float64 {
	if order.Status.IsCompleted() {
		return 100
	}
	ref = domain.ReferenceOrToday(ref)

	p, ok := dateProgress(order, ref)
	if !ok {
		p = rawProgress(order.RawProgress)
	}
	if p >= 100 {
		return 100
	}
	return p
}

// dateProgress is false when either date is unusable
func dateProgress(order domain.Order, ref time.Time) (float64, bool) {
	start, ok := order.Start()
	if !ok {
		return 0, false
	}
	end, ok := order.Deadline()
	if !ok {
		return 0, false
	}

	total := domain.DaysBetween(start, end)
	elapsed := domain.DaysBetween(start, ref)

	switch {
	case elapsed <= 0:
		return 0, true
	case elapsed >= total:
		// also covers completion not after start, which is treated as already due
		return 100, true
	}
	return 100 * float64(elapsed) / float64(total), true
}

func rawProgress(raw *float64) float64 {
	if raw == nil || math.IsNaN(*raw) || math.IsInf(*raw, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, *raw))
}

// IsEffectivelyComplete is true once the normalized progress saturates
func IsEffectivelyComplete(order domain.Order, ref time.Time) bool {
	return NormalizeProgress(order, ref) >= 100
}

// EffectivePriority is the display tier; complete orders drop to LOW
func EffectivePriority(order domain.Order, ref time.Time) domain.Priority {
	if IsEffectivelyComplete(order, ref) {
		return domain.PriorityLow
	}
	return domain.ParsePriority(order.Priority)
}
