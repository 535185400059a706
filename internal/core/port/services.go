package port

import (
	"context"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
)

// PlannerService is an interface for running scheduling cycles
type PlannerService interface {
	RunCycle(ctx context.Context) (*domain.Report, error)
	StartScheduler(ctx context.Context, interval time.Duration)
}

// BoardService is an interface for serving the latest published report
type BoardService interface {
	StartBoard(ctx context.Context) error
	Latest(ctx context.Context) (*domain.Report, error)
	Cycle(ctx context.Context, cycleID string) (*domain.Report, error)
	Order(ctx context.Context, id string) (*domain.OrderSchedule, error)
	Stages() []domain.StageRange
}
