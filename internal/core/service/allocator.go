package service

import (
	"math"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// AllocateMinutes splits total working minutes across stages by ratio.
// Every stage but the last is rounded; the last absorbs the remainder so the sum is exact.
func AllocateMinutes(ranges []domain.StageRange, total int) []int {
	if total < 0 {
		total = 0
	}
	out := make([]int, len(ranges))
	allocated := 0
	for i, r := range ranges {
		if i == len(ranges)-1 {
			out[i] = max(0, total-allocated)
			break
		}
		minutes := int(math.Round(float64(total) * r.Stage.Ratio / 100))
		// rounding up on many small stages must not overrun the total
		minutes = min(minutes, total-allocated)
		out[i] = minutes
		allocated += minutes
	}
	return out
}

// Span is a stage's horizontal placement on a Gantt bar, in percent of the order span
type Span struct {
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// AllocatePercent places each stage on a 0–100 bar; the last stage fills the rest
func AllocatePercent(ranges []domain.StageRange) []Span {
	out := make([]Span, len(ranges))
	cumulative := 0.0
	for i, r := range ranges {
		offset := math.Min(100, cumulative)
		width := r.Stage.Ratio
		if i == len(ranges)-1 {
			width = math.Max(0, 100-cumulative)
		}
		width = math.Max(0, math.Min(100-offset, width))
		cumulative += width
		out[i] = Span{Offset: offset, Width: width}
	}
	return out
}

// TimelineDays is the number of shift days an order's timeline spans, at least one
func TimelineDays(order domain.Order) int {
	start, ok := order.Start()
	if !ok {
		return 1
	}
	end, ok := order.Deadline()
	if !ok {
		return 1
	}
	return max(1, domain.DaysBetween(start, end))
}
