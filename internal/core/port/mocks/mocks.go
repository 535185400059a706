// Package mocks provides testify mocks of the port interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type OrderRepository struct{ mock.Mock }

func (m *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *OrderRepository) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	args := m.Called(ctx)
	assignments, _ := args.Get(0).([]domain.Assignment)
	return assignments, args.Error(1)
}

type OrderWriter struct{ mock.Mock }

func (m *OrderWriter) SaveOrder(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderWriter) SaveAssignment(ctx context.Context, assignment *domain.Assignment) error {
	return m.Called(ctx, assignment).Error(0)
}

type ReportCache struct{ mock.Mock }

func (m *ReportCache) Store(ctx context.Context, report *domain.Report) error {
	return m.Called(ctx, report).Error(0)
}

func (m *ReportCache) Latest(ctx context.Context) (*domain.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *ReportCache) Cycle(ctx context.Context, cycleID string) (*domain.Report, error) {
	args := m.Called(ctx, cycleID)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

type QueueService struct{ mock.Mock }

func (m *QueueService) PublishReport(ctx context.Context, report *domain.Report) error {
	return m.Called(ctx, report).Error(0)
}

func (m *QueueService) ConsumeReports(ctx context.Context, handler func(report *domain.Report) error) error {
	return m.Called(ctx, handler).Error(0)
}

type MetricsRecorder struct{ mock.Mock }

func (m *MetricsRecorder) RecordReport(report *domain.Report) {
	m.Called(report)
}

func (m *MetricsRecorder) RecordCycle(duration time.Duration, err error) {
	m.Called(duration, err)
}

type BoardService struct{ mock.Mock }

func (m *BoardService) StartBoard(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *BoardService) Latest(ctx context.Context) (*domain.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *BoardService) Cycle(ctx context.Context, cycleID string) (*domain.Report, error) {
	args := m.Called(ctx, cycleID)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *BoardService) Order(ctx context.Context, id string) (*domain.OrderSchedule, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*domain.OrderSchedule)
	return order, args.Error(1)
}

func (m *BoardService) Stages() []domain.StageRange {
	ranges, _ := m.Called().Get(0).([]domain.StageRange)
	return ranges
}
