package prometheus

import (
	"net/http"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter holds the planner metrics on a private registry
type Exporter struct {
	registry *prometheus.Registry

	StageUtilization *prometheus.GaugeVec
	StageLoadShare   *prometheus.GaugeVec
	StageLoad        *prometheus.GaugeVec
	StageContention  *prometheus.GaugeVec
	Orders           *prometheus.GaugeVec
	Units            *prometheus.GaugeVec
	CycleDuration    prometheus.Histogram
	CyclesTotal      *prometheus.CounterVec
	LastSuccess      prometheus.Gauge
}

// NewExporter registers every planner metric under namespace
func NewExporter(namespace string) *Exporter {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := &Exporter{registry: registry}

	e.StageUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_utilization_percent",
			Help:      "Quantity-weighted completion of each stage",
		},
		[]string{"stage"},
	)

	e.StageLoadShare = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_remaining_load_share_percent",
			Help:      "Share of the remaining fleet work queued for each stage",
		},
		[]string{"stage"},
	)

	e.StageLoad = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_remaining_load",
			Help:      "Quantity-weighted remaining percentage points per stage",
		},
		[]string{"stage"},
	)

	e.StageContention = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_orders",
			Help:      "Orders currently inside each stage by status",
		},
		[]string{"stage", "status"},
	)

	e.Orders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders",
			Help:      "Orders in the last snapshot by state",
		},
		[]string{"state"},
	)

	e.Units = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units",
			Help:      "Units in the last snapshot by state",
		},
		[]string{"state"},
	)

	e.CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Planning cycle duration including the snapshot fetch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	e.CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Planning cycles by result",
		},
		[]string{"result"},
	)

	e.LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_cycle_timestamp_seconds",
			Help:      "Unix time of the last successful planning cycle",
		},
	)

	registry.MustRegister(
		e.StageUtilization,
		e.StageLoadShare,
		e.StageLoad,
		e.StageContention,
		e.Orders,
		e.Units,
		e.CycleDuration,
		e.CyclesTotal,
		e.LastSuccess,
	)
	return e
}

// RecordReport replaces the gauges with the figures of one report
func (e *Exporter) RecordReport(report *domain.Report) {
	for _, u := range report.Utilization {
		e.StageUtilization.WithLabelValues(u.Stage).Set(float64(u.Utilization))
	}
	for _, l := range report.Load {
		e.StageLoadShare.WithLabelValues(l.Stage).Set(float64(l.Share))
		e.StageLoad.WithLabelValues(l.Stage).Set(l.Load)
	}

	// stages nobody occupies must drop back to zero
	e.StageContention.Reset()
	for _, o := range report.Orders {
		if current, ok := currentSlot(o); ok {
			e.StageContention.WithLabelValues(current.Stage, string(current.Status)).Inc()
		}
	}

	s := report.Summary
	e.Orders.WithLabelValues("total").Set(float64(s.TotalOrders))
	e.Orders.WithLabelValues("active").Set(float64(s.ActiveOrders))
	e.Orders.WithLabelValues("completed").Set(float64(s.CompletedOrders))
	e.Orders.WithLabelValues("due_soon").Set(float64(s.DueSoon))
	e.Units.WithLabelValues("total").Set(float64(s.TotalUnits))
	e.Units.WithLabelValues("wip").Set(float64(s.WIPUnits))
}

// currentSlot is the first stage the order has not completed, i.e. the one it occupies.
// Ongoing there means it holds the stage, Pending means it waits for the machine.
func currentSlot(o domain.OrderSchedule) (domain.StageSlot, bool) {
	for _, slot := range o.Timeline.Stages {
		if slot.Status != domain.StageStatusCompleted {
			return slot, true
		}
	}
	return domain.StageSlot{}, false
}

// RecordCycle observes one planning cycle
func (e *Exporter) RecordCycle(duration time.Duration, err error) {
	e.CycleDuration.Observe(duration.Seconds())
	if err != nil {
		e.CyclesTotal.WithLabelValues("failure").Inc()
		return
	}
	e.CyclesTotal.WithLabelValues("success").Inc()
	e.LastSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus text format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, for tests
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
