package service

import (
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// ResolveStageStatus classifies one stage of one order against the whole snapshot.
// When several orders sit inside the same machine-bound stage, the earliest deadline
// runs and the rest wait; equal deadlines do not block each other.
func ResolveStageStatus(table *domain.StageTable, snap *domain.Snapshot, order domain.Order, stageName string) domain.StageStatus {
	r, ok := table.Lookup(stageName)
	if !ok {
		return domain.StageStatusUnknown
	}
	snap = withReference(snap)
	return resolveRange(r, snap, order, progressIndex(snap))
}

// progressIndex normalizes every order once per snapshot
func progressIndex(snap *domain.Snapshot) map[string]float64 {
	idx := make(map[string]float64, len(snap.Orders))
	for _, o := range snap.Orders {
		idx[o.ID] = NormalizeProgress(o, snap.Reference())
	}
	return idx
}

func resolveRange(r domain.StageRange, snap *domain.Snapshot, order domain.Order, progress map[string]float64) domain.StageStatus {
	p, ok := progress[order.ID]
	if !ok {
		p = NormalizeProgress(order, snap.Reference())
	}

	switch {
	case p >= r.End:
		return domain.StageStatusCompleted
	case p < r.Start:
		return domain.StageStatusPending
	case r.Stage.IsManual():
		return domain.StageStatusOngoing
	}

	deadline, ok := order.Deadline()
	if !ok {
		return domain.StageStatusOngoing
	}
	for _, other := range snap.Orders {
		if other.ID == order.ID {
			continue
		}
		if !r.Contains(progress[other.ID]) {
			continue
		}
		if blocks(other, deadline) {
			return domain.StageStatusPending
		}
	}
	return domain.StageStatusOngoing
}

// blocks reports whether other has a strictly earlier deadline
func blocks(other domain.Order, deadline time.Time) bool {
	d, ok := other.Deadline()
	return ok && d.Before(deadline)
}

// ResolveAssignment returns the recorded assignment for a stage or synthesizes the default
func ResolveAssignment(assignments map[string]domain.Assignment, orderID string, stage domain.Stage) domain.Assignment {
	if a, ok := assignments[assignmentKey(orderID, stage.Name)]; ok {
		if a.Machine == "" {
			a.Machine = stage.MachineLabel()
		}
		return a
	}

	worker := domain.WorkerUnassigned
	if stage.IsManual() {
		worker = domain.WorkerManualTeam
	}
	return domain.Assignment{
		OrderID:   orderID,
		StageName: stage.Name,
		Worker:    worker,
		Machine:   stage.MachineLabel(),
	}
}

// IndexAssignments keys assignments by (order, stage); the first record wins
func IndexAssignments(assignments []domain.Assignment) map[string]domain.Assignment {
	idx := make(map[string]domain.Assignment, len(assignments))
	for _, a := range assignments {
		key := assignmentKey(a.OrderID, a.StageName)
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = a
	}
	return idx
}

func assignmentKey(orderID, stage string) string {
	return orderID + "\x00" + stage
}
