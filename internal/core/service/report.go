// Package service provides the scheduling computations & the planner loop that drives them.
package service

import (
	"sort"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// BuildReport derives every scheduling fact from one snapshot.
// It is pure: the snapshot is read, never mutated.
func BuildReport(table *domain.StageTable, snap *domain.Snapshot, dueSoonDays int) *domain.Report {
	snap = withReference(snap)
	ref := snap.ReferenceDate
	progress := progressIndex(snap)
	assignments := IndexAssignments(snap.Assignments)

	report := &domain.Report{
		ReferenceDate: ref.Format(domain.DateLayout),
		Orders:        make([]domain.OrderSchedule, 0, len(snap.Orders)),
		Utilization:   StageUtilization(table, snap.Orders, ref),
		Load:          StageRemainingLoad(table, snap.Orders, ref),
		Summary:       Summarize(snap.Orders, ref, dueSoonDays),
		Upcoming:      make([]string, 0),
	}
	for _, o := range UpcomingDeadlines(snap.Orders, ref) {
		report.Upcoming = append(report.Upcoming, o.ID)
	}

	for _, o := range sortByDeadline(snap.Orders) {
		p := progress[o.ID]
		report.Orders = append(report.Orders, domain.OrderSchedule{
			ID:             o.ID,
			CustomerName:   o.CustomerName,
			CabinetType:    o.CabinetType,
			Quantity:       o.Quantity,
			StartDate:      o.StartDate,
			CompletionDate: o.CompletionDate,
			Status:         o.Status,
			Progress:       p,
			Priority:       EffectivePriority(o, ref),
			Completed:      p >= 100,
			Timeline:       buildTimeline(table, snap, o, progress, assignments),
		})
	}
	return report
}

// BuildTimeline lays one order out on the shift calendar against the snapshot
func BuildTimeline(table *domain.StageTable, snap *domain.Snapshot, order domain.Order) domain.Timeline {
	snap = withReference(snap)
	return buildTimeline(table, snap, order, progressIndex(snap), IndexAssignments(snap.Assignments))
}

// withReference pins an unset reference date once so a whole computation sees the same day
func withReference(snap *domain.Snapshot) *domain.Snapshot {
	if !snap.ReferenceDate.IsZero() {
		return snap
	}
	pinned := *snap
	pinned.ReferenceDate = snap.Reference()
	return &pinned
}

func buildTimeline(
	table *domain.StageTable,
	snap *domain.Snapshot,
	order domain.Order,
	progress map[string]float64,
	assignments map[string]domain.Assignment,
) domain.Timeline {
	ranges := table.Ranges()
	days := TimelineDays(order)
	total := domain.WorkingMinutes(days)
	durations := AllocateMinutes(ranges, total)
	spans := AllocatePercent(ranges)

	tl := domain.Timeline{
		TotalDays:    days,
		TotalMinutes: total,
		Stages:       make([]domain.StageSlot, len(ranges)),
	}

	cursor := 0
	for i, r := range ranges {
		a := ResolveAssignment(assignments, order.ID, r.Stage)
		end := cursor + durations[i]
		tl.Stages[i] = domain.StageSlot{
			Stage:           r.Stage.Name,
			Machine:         a.Machine,
			Worker:          a.Worker,
			Status:          resolveRange(r, snap, order, progress),
			StartMinute:     cursor,
			EndMinute:       end,
			DurationMinutes: durations[i],
			Start:           domain.ToClock(float64(cursor)),
			End:             domain.ToClock(float64(end)),
			OffsetPercent:   spans[i].Offset,
			WidthPercent:    spans[i].Width,
		}
		cursor = end
	}
	return tl
}

// sortByDeadline orders by completion date; unusable dates go last, ties by id
func sortByDeadline(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		di, oki := out[i].Deadline()
		dj, okj := out[j].Deadline()
		switch {
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		case oki && okj && !di.Equal(dj):
			return di.Before(dj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
