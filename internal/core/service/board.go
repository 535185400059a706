package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port"
	"go.uber.org/zap"
)

type boardService struct {
	table     *domain.StageTable
	cache     port.ReportCache
	queue     port.QueueService
	log       *zap.Logger
	staleness time.Duration
	now       func() time.Time
}

func NewBoardService(
	table *domain.StageTable,
	cache port.ReportCache,
	queue port.QueueService,
	staleness time.Duration,
	log *zap.Logger,
) *boardService {
	return &boardService{
		table:     table,
		cache:     cache,
		queue:     queue,
		log:       log,
		staleness: staleness,
		now:       time.Now,
	}
}

// StartBoard starts the staleness watch and the report consumer
func (b *boardService) StartBoard(ctx context.Context) error {
	b.log.Info("Starting board")

	if b.staleness > 0 {
		go b.stalenessLoop(ctx)
	}

	if err := b.queue.ConsumeReports(ctx, b.processReport); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	return nil
}

func (b *boardService) stalenessLoop(ctx context.Context) {
	ticker := time.NewTicker(b.staleness)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.checkStaleness(ctx)
		}
	}
}

func (b *boardService) checkStaleness(ctx context.Context) {
	report, err := b.cache.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			b.log.Warn("No report published yet")
		} else {
			b.log.Error("Staleness check failed", zap.Error(err))
		}
		return
	}
	if age := b.now().Sub(report.GeneratedAt); age > b.staleness {
		b.log.Warn("Serving stale report",
			zap.String("cycle_id", report.CycleID),
			zap.Duration("age", age))
	}
}

func (b *boardService) processReport(report *domain.Report) error {
	ctx := context.Background()

	// an out-of-order delivery must not replace a newer report
	if current, err := b.cache.Latest(ctx); err == nil && current.GeneratedAt.After(report.GeneratedAt) {
		b.log.Debug("Dropping older report",
			zap.String("cycle_id", report.CycleID),
			zap.String("current_cycle_id", current.CycleID))
		return nil
	}

	if err := b.cache.Store(ctx, report); err != nil {
		b.log.Error("Failed to cache report", zap.String("cycle_id", report.CycleID), zap.Error(err))
		return err
	}

	b.log.Info("Report received",
		zap.String("cycle_id", report.CycleID),
		zap.Int("orders", len(report.Orders)))
	return nil
}

// Latest returns the newest cached report
func (b *boardService) Latest(ctx context.Context) (*domain.Report, error) {
	return b.cache.Latest(ctx)
}

// Cycle returns the report of a specific cycle while the cache retains it
func (b *boardService) Cycle(ctx context.Context, cycleID string) (*domain.Report, error) {
	return b.cache.Cycle(ctx, cycleID)
}

// Order returns one order from the newest cached report
func (b *boardService) Order(ctx context.Context, id string) (*domain.OrderSchedule, error) {
	report, err := b.cache.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return report.FindOrder(id)
}

// Stages returns the configured stage table
func (b *boardService) Stages() []domain.StageRange {
	return b.table.Ranges()
}
