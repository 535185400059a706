package service

import (
	"testing"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCompletion(t *testing.T) {
	r, _ := defaultTable.Lookup("Assembly")
	assert.Equal(t, 0.0, LocalCompletion(r, 10))
	assert.Equal(t, 0.0, LocalCompletion(r, 45))
	assert.InDelta(t, 50, LocalCompletion(r, 65), 1e-9)
	assert.Equal(t, 100.0, LocalCompletion(r, 85))
}

func TestStageUtilization_EmptySet(t *testing.T) {
	got := StageUtilization(defaultTable, nil, date("2024-01-01"))
	require.Len(t, got, 6)
	for _, u := range got {
		assert.Equal(t, 0, u.Utilization, u.Stage)
	}
}

func TestStageUtilization_QuantityWeighted(t *testing.T) {
	big := at("big", 100, "2024-02-01")
	big.Quantity = 3
	small := at("small", 0, "2024-02-01")
	small.Quantity = 1

	got := StageUtilization(defaultTable, []domain.Order{big, small}, date("2024-01-01"))
	for _, u := range got {
		assert.Equal(t, 75, u.Utilization, u.Stage)
	}
}

func TestStageUtilization_FocusedView(t *testing.T) {
	x := at("X", 65, "2024-02-01")
	got := StageUtilization(defaultTable, []domain.Order{x}, date("2024-01-01"))

	want := []int{100, 100, 100, 50, 0, 0}
	for i, u := range got {
		assert.Equal(t, want[i], u.Utilization, u.Stage)
	}
}

func TestStageUtilization_MissingQuantityCountsOnce(t *testing.T) {
	a := at("a", 100, "2024-02-01")
	a.Quantity = 0
	b := at("b", 0, "2024-02-01")
	b.Quantity = -4

	got := StageUtilization(defaultTable, []domain.Order{a, b}, date("2024-01-01"))
	assert.Equal(t, 50, got[0].Utilization)
}

func TestRemainingWork(t *testing.T) {
	r, _ := defaultTable.Lookup("Assembly")
	assert.Equal(t, 40.0, RemainingWork(r, 0))
	assert.Equal(t, 40.0, RemainingWork(r, 45))
	assert.InDelta(t, 25, RemainingWork(r, 60), 1e-9)
	assert.Equal(t, 0.0, RemainingWork(r, 85))
}

func TestStageRemainingLoad(t *testing.T) {
	fresh := at("fresh", 0, "2024-02-01")
	fresh.Quantity = 2
	done := at("done", 100, "2024-02-01")

	got := StageRemainingLoad(defaultTable, []domain.Order{fresh, done}, date("2024-01-01"))
	require.Len(t, got, 6)

	assert.Equal(t, "CNC Cutting", got[0].Stage)
	assert.InDelta(t, 30, got[0].Load, 1e-9)
	assert.Equal(t, 15, got[0].Share)
	assert.InDelta(t, 80, got[3].Load, 1e-9)
	assert.Equal(t, 40, got[3].Share)

	empty := StageRemainingLoad(defaultTable, nil, date("2024-01-01"))
	for _, l := range empty {
		assert.Equal(t, 0, l.Share)
		assert.Equal(t, 0.0, l.Load)
	}
}
