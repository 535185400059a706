package service

import (
	"math"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// LocalCompletion is how far progress p has moved through a single stage, 0–100
func LocalCompletion(r domain.StageRange, p float64) float64 {
	switch {
	case p <= r.Start:
		return 0
	case p >= r.End:
		return 100
	case r.Span() <= 0:
		return 0
	}
	return (p - r.Start) / r.Span() * 100
}

// StageUtilization is the quantity-weighted mean local completion of every stage.
// Pass a single order for the focused view.
func StageUtilization(table *domain.StageTable, orders []domain.Order, ref time.Time) []domain.StageUtilization {
	ref = domain.ReferenceOrToday(ref)
	ranges := table.Ranges()
	progress := make([]float64, len(orders))
	totalWeight := 0.0
	for i, o := range orders {
		progress[i] = NormalizeProgress(o, ref)
		totalWeight += o.Weight()
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	out := make([]domain.StageUtilization, len(ranges))
	for s, r := range ranges {
		weighted := 0.0
		for i, o := range orders {
			weighted += LocalCompletion(r, progress[i]) * o.Weight()
		}
		u := int(math.Round(weighted / totalWeight))
		out[s] = domain.StageUtilization{
			Stage:       r.Stage.Name,
			Utilization: max(0, min(100, u)),
		}
	}
	return out
}

// RemainingWork is the percentage of an order's work still ahead in stage r
func RemainingWork(r domain.StageRange, p float64) float64 {
	switch {
	case p <= r.Start:
		return r.Stage.Ratio
	case p >= r.End:
		return 0
	}
	return r.End - p
}

// StageRemainingLoad ranks stages by the quantity-weighted work still queued for them
func StageRemainingLoad(table *domain.StageTable, orders []domain.Order, ref time.Time) []domain.StageLoad {
	ref = domain.ReferenceOrToday(ref)
	ranges := table.Ranges()
	out := make([]domain.StageLoad, len(ranges))
	for s, r := range ranges {
		out[s].Stage = r.Stage.Name
	}

	for _, o := range orders {
		p := NormalizeProgress(o, ref)
		for s, r := range ranges {
			out[s].Load += RemainingWork(r, p) * o.Weight()
		}
	}

	total := 0.0
	for _, l := range out {
		total += l.Load
	}
	if total == 0 {
		total = 1
	}
	for s := range out {
		out[s].Share = int(math.Round(out[s].Load / total * 100))
	}
	return out
}
