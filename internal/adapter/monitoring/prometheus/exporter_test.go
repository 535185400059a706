package prometheus

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slots(statuses ...domain.StageStatus) domain.Timeline {
	names := []string{"CNC Cutting", "CNC Edging", "CNC Routing", "Assembly", "Quality Assurance", "Packing"}
	tl := domain.Timeline{}
	for i, s := range statuses {
		tl.Stages = append(tl.Stages, domain.StageSlot{Stage: names[i], Status: s})
	}
	return tl
}

func TestRecordReport(t *testing.T) {
	e := NewExporter("test")
	c, o, p := domain.StageStatusCompleted, domain.StageStatusOngoing, domain.StageStatusPending

	e.RecordReport(&domain.Report{
		Orders: []domain.OrderSchedule{
			{ID: "a", Timeline: slots(c, o, p, p, p, p)},
			{ID: "b", Timeline: slots(c, p, p, p, p, p)},
			{ID: "done", Timeline: slots(c, c, c, c, c, c)},
		},
		Utilization: []domain.StageUtilization{{Stage: "CNC Cutting", Utilization: 100}, {Stage: "Assembly", Utilization: 12}},
		Load:        []domain.StageLoad{{Stage: "Assembly", Load: 80, Share: 40}},
		Summary:     domain.Summary{TotalOrders: 3, ActiveOrders: 2, CompletedOrders: 1, DueSoon: 1, TotalUnits: 9, WIPUnits: 6},
	})

	assert.Equal(t, 100.0, testutil.ToFloat64(e.StageUtilization.WithLabelValues("CNC Cutting")))
	assert.Equal(t, 12.0, testutil.ToFloat64(e.StageUtilization.WithLabelValues("Assembly")))
	assert.Equal(t, 40.0, testutil.ToFloat64(e.StageLoadShare.WithLabelValues("Assembly")))
	assert.Equal(t, 80.0, testutil.ToFloat64(e.StageLoad.WithLabelValues("Assembly")))

	assert.Equal(t, 1.0, testutil.ToFloat64(e.StageContention.WithLabelValues("CNC Edging", "Ongoing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.StageContention.WithLabelValues("CNC Edging", "Pending")))
	assert.Equal(t, 2, testutil.CollectAndCount(e.StageContention))

	assert.Equal(t, 2.0, testutil.ToFloat64(e.Orders.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Orders.WithLabelValues("due_soon")))
	assert.Equal(t, 6.0, testutil.ToFloat64(e.Units.WithLabelValues("wip")))
}

func TestRecordReport_ResetsContention(t *testing.T) {
	e := NewExporter("test")
	e.RecordReport(&domain.Report{Orders: []domain.OrderSchedule{
		{ID: "a", Timeline: slots(domain.StageStatusOngoing)},
	}})
	require.Equal(t, 1, testutil.CollectAndCount(e.StageContention))

	e.RecordReport(&domain.Report{})
	assert.Equal(t, 0, testutil.CollectAndCount(e.StageContention))
}

func TestRecordCycle(t *testing.T) {
	e := NewExporter("test")
	e.RecordCycle(20*time.Millisecond, nil)
	e.RecordCycle(5*time.Millisecond, errors.New("db down"))
	e.RecordCycle(5*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(e.CyclesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.CyclesTotal.WithLabelValues("failure")))
	assert.Greater(t, testutil.ToFloat64(e.LastSuccess), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(e.CycleDuration))
}

func TestHandler(t *testing.T) {
	e := NewExporter("scheduler")
	e.RecordCycle(time.Millisecond, nil)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `scheduler_cycles_total{result="success"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
