package service

import (
	"testing"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultTable = domain.MustStageTable(domain.DefaultStages())

func TestAllocateMinutes_TenDays(t *testing.T) {
	got := AllocateMinutes(defaultTable.Ranges(), 4800)
	assert.Equal(t, []int{720, 720, 720, 1920, 240, 480}, got)
}

func TestAllocateMinutes_SumsExactly(t *testing.T) {
	odd := domain.MustStageTable([]domain.Stage{
		{Name: "a", Ratio: 33.3, Machine: "M1"},
		{Name: "b", Ratio: 33.3, Machine: "M2"},
		{Name: "c", Ratio: 33.4},
	})
	for _, table := range []*domain.StageTable{defaultTable, odd} {
		for total := 0; total <= 2000; total += 7 {
			got := AllocateMinutes(table.Ranges(), total)
			require.Len(t, got, table.Len())
			sum := 0
			for _, m := range got {
				assert.GreaterOrEqual(t, m, 0)
				sum += m
			}
			assert.Equal(t, total, sum, "total %d", total)
		}
	}
}

func TestAllocateMinutes_NegativeTotal(t *testing.T) {
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, AllocateMinutes(defaultTable.Ranges(), -10))
}

func TestAllocatePercent(t *testing.T) {
	spans := AllocatePercent(defaultTable.Ranges())
	require.Len(t, spans, 6)

	assert.Equal(t, Span{Offset: 0, Width: 15}, spans[0])
	assert.Equal(t, Span{Offset: 45, Width: 40}, spans[3])
	last := spans[len(spans)-1]
	assert.InDelta(t, 100, last.Offset+last.Width, 1e-9)
}

func TestTimelineDays(t *testing.T) {
	assert.Equal(t, 10, TimelineDays(domain.Order{StartDate: "2024-01-01", CompletionDate: "2024-01-11"}))
	assert.Equal(t, 1, TimelineDays(domain.Order{StartDate: "2024-01-01", CompletionDate: "2024-01-01"}))
	assert.Equal(t, 1, TimelineDays(domain.Order{StartDate: "2024-01-05", CompletionDate: "2024-01-01"}))
	assert.Equal(t, 1, TimelineDays(domain.Order{StartDate: "", CompletionDate: "2024-01-01"}))
}
