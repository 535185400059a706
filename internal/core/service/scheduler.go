package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type plannerService struct {
	table       *domain.StageTable
	orders      port.OrderRepository
	cache       port.ReportCache
	queue       port.QueueService
	metrics     port.MetricsRecorder
	log         *zap.Logger
	now         func() time.Time
	refOverride *time.Time
	dueSoonDays int
}

// PlannerOption tweaks a planner at construction
type PlannerOption func(*plannerService)

// WithReferenceDate pins "today" to a simulated date for forecasting
func WithReferenceDate(ref time.Time) PlannerOption {
	return func(s *plannerService) {
		d := domain.Today(ref)
		s.refOverride = &d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) PlannerOption {
	return func(s *plannerService) {
		s.now = now
	}
}

// WithDueSoonDays sets the due-soon window of the summary
func WithDueSoonDays(days int) PlannerOption {
	return func(s *plannerService) {
		s.dueSoonDays = days
	}
}

func NewPlannerService(
	table *domain.StageTable,
	orders port.OrderRepository,
	cache port.ReportCache,
	queue port.QueueService,
	metrics port.MetricsRecorder,
	log *zap.Logger,
	opts ...PlannerOption,
) *plannerService {
	s := &plannerService{
		table:       table,
		orders:      orders,
		cache:       cache,
		queue:       queue,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
		dueSoonDays: DefaultDueSoonDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartScheduler starts the polling loop
func (s *plannerService) StartScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runAndLog(ctx)

	count := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopping planner loop")
			return
		case <-ticker.C:
			count++
			if count%12 == 0 {
				s.log.Info("Planner heartbeat",
					zap.Int("cycles", count),
					zap.Duration("interval", interval))
			}
			s.runAndLog(ctx)
		}
	}
}

func (s *plannerService) runAndLog(ctx context.Context) {
	if _, err := s.RunCycle(ctx); err != nil {
		// previous report stays published until a cycle succeeds
		s.log.Error("Planning cycle failed", zap.Error(err))
	}
}

// RunCycle fetches a fresh snapshot, derives the report & publishes it
func (s *plannerService) RunCycle(ctx context.Context) (*domain.Report, error) {
	started := s.now()

	report, err := s.plan(ctx, started)
	s.metrics.RecordCycle(s.now().Sub(started), err)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordReport(report)

	if err := s.cache.Store(ctx, report); err != nil {
		s.log.Error("Failed to cache report", zap.String("cycle_id", report.CycleID), zap.Error(err))
	}
	if err := s.queue.PublishReport(ctx, report); err != nil {
		s.log.Error("Failed to publish report", zap.String("cycle_id", report.CycleID), zap.Error(err))
	}

	s.logContention(report)
	s.log.Info("Planning cycle complete",
		zap.String("cycle_id", report.CycleID),
		zap.String("reference_date", report.ReferenceDate),
		zap.Int("orders", len(report.Orders)),
		zap.Int("active", report.Summary.ActiveOrders))
	return report, nil
}

func (s *plannerService) plan(ctx context.Context, now time.Time) (*domain.Report, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	assignments, err := s.orders.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	for _, a := range assignments {
		if _, ok := s.table.Lookup(a.StageName); !ok {
			s.log.Warn("Assignment references unknown stage",
				zap.String("order_id", a.OrderID),
				zap.String("stage", a.StageName))
		}
	}

	snap := &domain.Snapshot{
		Orders:        orders,
		Assignments:   assignments,
		ReferenceDate: s.referenceDate(now),
	}
	report := BuildReport(s.table, snap, s.dueSoonDays)
	report.CycleID = uuid.NewString()
	report.GeneratedAt = now.UTC()
	return report, nil
}

func (s *plannerService) referenceDate(now time.Time) time.Time {
	if s.refOverride != nil {
		return *s.refOverride
	}
	return domain.Today(now)
}

// logContention reports every order waiting on a machine held by an earlier deadline
func (s *plannerService) logContention(report *domain.Report) {
	for _, o := range report.Orders {
		for _, slot := range o.Timeline.Stages {
			if slot.Status != domain.StageStatusPending || slot.Machine == domain.ManualMachine {
				continue
			}
			r, ok := s.table.Lookup(slot.Stage)
			if !ok || !r.Contains(o.Progress) {
				continue
			}
			s.log.Debug("Order waiting for machine",
				zap.String("order_id", o.ID),
				zap.String("stage", slot.Stage),
				zap.String("machine", slot.Machine),
				zap.String("deadline", o.CompletionDate))
		}
	}
}
