package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// DefaultDueSoonDays is the look-ahead window for the due-soon counter
const DefaultDueSoonDays = 7

// Summarize computes the fleet headline numbers as of ref
func Summarize(orders []domain.Order, ref time.Time, dueSoonDays int) domain.Summary {
	ref = domain.ReferenceOrToday(ref)
	s := domain.Summary{TotalOrders: len(orders)}
	counts := map[domain.Priority]int{}

	for _, o := range orders {
		s.TotalUnits += max(0, o.Quantity)
		if IsEffectivelyComplete(o, ref) {
			s.CompletedOrders++
			continue
		}

		s.ActiveOrders++
		s.WIPUnits += max(0, o.Quantity)
		counts[EffectivePriority(o, ref)]++

		if d, ok := o.Deadline(); ok {
			left := domain.DaysBetween(ref, d)
			if left >= 0 && left <= dueSoonDays {
				s.DueSoon++
			}
		}
	}

	denominator := float64(s.ActiveOrders)
	if denominator == 0 {
		denominator = 1
	}
	for _, p := range []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
		s.Priorities = append(s.Priorities, domain.PriorityCount{
			Priority: p,
			Count:    counts[p],
			Percent:  int(math.Round(float64(counts[p]) / denominator * 100)),
		})
	}
	s.CabinetTypes = cabinetTypes(orders)
	return s
}

// cabinetTypes counts every order by cabinet type, most common first
func cabinetTypes(orders []domain.Order) []domain.TypeCount {
	counts := map[string]int{}
	for _, o := range orders {
		t := strings.TrimSpace(o.CabinetType)
		if t == "" {
			t = domain.UnspecifiedCabinetType
		}
		counts[t]++
	}

	total := float64(max(1, len(orders)))
	out := make([]domain.TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, domain.TypeCount{
			CabinetType: t,
			Count:       n,
			Percent:     int(math.Round(float64(n) / total * 100)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CabinetType < out[j].CabinetType
	})
	return out
}

// UpcomingDeadlines lists active orders with a usable due date, earliest first
func UpcomingDeadlines(orders []domain.Order, ref time.Time) []domain.Order {
	type due struct {
		order    domain.Order
		deadline time.Time
	}
	ref = domain.ReferenceOrToday(ref)

	var pending []due
	for _, o := range orders {
		if IsEffectivelyComplete(o, ref) {
			continue
		}
		if d, ok := o.Deadline(); ok {
			pending = append(pending, due{order: o, deadline: d})
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].deadline.Equal(pending[j].deadline) {
			return pending[i].deadline.Before(pending[j].deadline)
		}
		return pending[i].order.ID < pending[j].order.ID
	})

	out := make([]domain.Order, len(pending))
	for i, d := range pending {
		out[i] = d.order
	}
	return out
}

// PageInfo describes the slice returned by Page
type PageInfo struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Page slices items into fixed-size pages, clamping page into range.
// An empty list reports page 0 of 0.
func Page[T any](items []T, page, size int) ([]T, PageInfo) {
	if len(items) == 0 || size <= 0 {
		return nil, PageInfo{TotalItems: len(items)}
	}

	totalPages := (len(items) + size - 1) / size
	page = max(1, min(page, totalPages))
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end], PageInfo{Page: page, TotalPages: totalPages, TotalItems: len(items)}
}
