package service

import (
	"testing"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

// at pins an order's progress through the raw fallback while keeping a usable deadline
func at(id string, progress float64, deadline string) domain.Order {
	return domain.Order{ID: id, CompletionDate: deadline, RawProgress: ptr(progress), Quantity: 1}
}

func snapshotOf(orders ...domain.Order) *domain.Snapshot {
	return &domain.Snapshot{Orders: orders, ReferenceDate: date("2024-01-01")}
}

func TestResolveStageStatus_ProgressWindows(t *testing.T) {
	x := at("X", 50, "2024-02-01")
	snap := snapshotOf(x)

	want := map[string]domain.StageStatus{
		"CNC Cutting":       domain.StageStatusCompleted,
		"CNC Edging":        domain.StageStatusCompleted,
		"CNC Routing":       domain.StageStatusCompleted,
		"Assembly":          domain.StageStatusOngoing,
		"Quality Assurance": domain.StageStatusPending,
		"Packing":           domain.StageStatusPending,
	}
	for stage, status := range want {
		assert.Equal(t, status, ResolveStageStatus(defaultTable, snap, x, stage), stage)
	}
}

func TestResolveStageStatus_MachineBoundAssemblyContention(t *testing.T) {
	stages := domain.DefaultStages()
	stages[3].Machine = "M04"
	table := domain.MustStageTable(stages)

	x := at("X", 50, "2024-02-01")
	y := at("Y", 60, "2024-01-20")
	snap := snapshotOf(x, y)

	assert.Equal(t, domain.StageStatusPending, ResolveStageStatus(table, snap, x, "Assembly"))
	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(table, snap, y, "Assembly"))

	// a manual Assembly is never contended
	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, x, "Assembly"))
}

func TestResolveStageStatus_EarliestDeadlineFirst(t *testing.T) {
	a := at("A", 20, "2024-01-10")
	b := at("B", 20, "2024-01-05")
	snap := snapshotOf(a, b)

	assert.Equal(t, domain.StageStatusPending, ResolveStageStatus(defaultTable, snap, a, "CNC Edging"))
	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, b, "CNC Edging"))
}

func TestResolveStageStatus_TiesDoNotBlock(t *testing.T) {
	a := at("A", 20, "2024-01-10")
	b := at("B", 25, "2024-01-10")
	snap := snapshotOf(a, b)

	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, a, "CNC Edging"))
	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, b, "CNC Edging"))
}

func TestResolveStageStatus_OtherStageDoesNotBlock(t *testing.T) {
	a := at("A", 20, "2024-01-10")
	b := at("B", 35, "2024-01-05")
	snap := snapshotOf(a, b)

	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, a, "CNC Edging"))
}

func TestResolveStageStatus_UnparsableDeadline(t *testing.T) {
	a := at("A", 20, "someday")
	b := at("B", 20, "2024-01-05")
	snap := snapshotOf(a, b)

	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, a, "CNC Edging"))
	assert.Equal(t, domain.StageStatusOngoing, ResolveStageStatus(defaultTable, snap, b, "CNC Edging"))
}

func TestResolveStageStatus_AntiSymmetric(t *testing.T) {
	deadlines := []string{"2024-01-03", "2024-01-05", "2024-01-05", "2024-01-09", "bad"}
	for i, di := range deadlines {
		for j, dj := range deadlines {
			if i == j {
				continue
			}
			a := at("A", 18, di)
			b := at("B", 22, dj)
			snap := snapshotOf(a, b)
			sa := ResolveStageStatus(defaultTable, snap, a, "CNC Edging")
			sb := ResolveStageStatus(defaultTable, snap, b, "CNC Edging")
			assert.False(t, sa == domain.StageStatusPending && sb == domain.StageStatusPending,
				"%s vs %s both blocked", di, dj)
		}
	}
}

func TestResolveStageStatus_UnknownStage(t *testing.T) {
	x := at("X", 50, "2024-02-01")
	assert.Equal(t, domain.StageStatusUnknown, ResolveStageStatus(defaultTable, snapshotOf(x), x, "Painting"))
}

func TestResolveAssignment(t *testing.T) {
	cutting, _ := defaultTable.Lookup("CNC Cutting")
	assembly, _ := defaultTable.Lookup("Assembly")

	idx := IndexAssignments([]domain.Assignment{
		{OrderID: "A", StageName: "CNC Cutting", Worker: "W07"},
		{OrderID: "A", StageName: "CNC Cutting", Worker: "W99", Machine: "M09"},
	})

	got := ResolveAssignment(idx, "A", cutting.Stage)
	assert.Equal(t, "W07", got.Worker)
	assert.Equal(t, "M01", got.Machine)

	got = ResolveAssignment(idx, "B", cutting.Stage)
	assert.Equal(t, domain.WorkerUnassigned, got.Worker)
	assert.Equal(t, "M01", got.Machine)

	got = ResolveAssignment(idx, "B", assembly.Stage)
	assert.Equal(t, domain.WorkerManualTeam, got.Worker)
	assert.Equal(t, domain.ManualMachine, got.Machine)
}
