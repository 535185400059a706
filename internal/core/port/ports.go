// Package port provides behavior interfaces that connects service & storage & handler.
package port

import (
	"context"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// OrderRepository is the read side of the external order store
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListAssignments(ctx context.Context) ([]domain.Assignment, error)
}

// OrderWriter seeds the order store; the simulation & verification tools use it
type OrderWriter interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
	SaveAssignment(ctx context.Context, assignment *domain.Assignment) error
}

// ReportCache keeps the latest report for the read API (Redis)
type ReportCache interface {
	Store(ctx context.Context, report *domain.Report) error
	Latest(ctx context.Context) (*domain.Report, error)
	Cycle(ctx context.Context, cycleID string) (*domain.Report, error)
}

// QueueService defines how reports are published and consumed
type QueueService interface {
	PublishReport(ctx context.Context, report *domain.Report) error
	ConsumeReports(ctx context.Context, handler func(report *domain.Report) error) error
}

// MetricsRecorder exports per-cycle figures (Prometheus)
type MetricsRecorder interface {
	RecordReport(report *domain.Report)
	RecordCycle(duration time.Duration, err error)
}
