package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/crabzie/production-scheduler/config/logger"
	postgresConfig "github.com/crabzie/production-scheduler/config/storage/postgresql"
	redisConfig "github.com/crabzie/production-scheduler/config/storage/redis"
	config "github.com/crabzie/production-scheduler/config/utils"
	"github.com/crabzie/production-scheduler/internal/adapter/monitoring/prometheus"
	"github.com/crabzie/production-scheduler/internal/adapter/queue/rabbitmq"
	"github.com/crabzie/production-scheduler/internal/adapter/storage/postgres"
	redisAdapter "github.com/crabzie/production-scheduler/internal/adapter/storage/redis"
	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	// 1. Setup Logger & Config
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)
	ctx := context.Background()

	log.Info("Starting Verification...")

	table, err := appConfig.Scheduler.StageTable()
	if err != nil {
		log.Fatal("Invalid stage table", zap.Error(err))
	}

	// 2. Test Postgres
	log.Info("--- Testing Postgres ---")
	dbService, err := postgresConfig.New(ctx, appConfig.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to DB", zap.Error(err))
	}
	defer dbService.Close()
	if err := dbService.Migrate(); err != nil {
		log.Fatal("Failed to migrate DB", zap.Error(err))
	}
	repo := postgres.NewOrderRepository(dbService.Pool, log)

	today := domain.Today(time.Now())
	order := &domain.Order{
		ID:             fmt.Sprintf("verify-%d", time.Now().Unix()),
		CustomerName:   "Verification Order",
		CabinetType:    "Shelves",
		Quantity:       3,
		StartDate:      today.AddDate(0, 0, -2).Format(domain.DateLayout),
		CompletionDate: today.AddDate(0, 0, 8).Format(domain.DateLayout),
		Status:         domain.OrderStatusInProgress,
		Priority:       string(domain.PriorityMedium),
	}

	if err := repo.SaveOrder(ctx, order); err != nil {
		log.Error("X Postgres: Save Order Failed", zap.Error(err))
	} else {
		log.Info("✓ Postgres: Save Order Success")
	}

	first := table.Ranges()[0].Stage
	if err := repo.SaveAssignment(ctx, &domain.Assignment{
		OrderID: order.ID, StageName: first.Name, Worker: "W01", Machine: first.MachineLabel(),
	}); err != nil {
		log.Error("X Postgres: Save Assignment Failed", zap.Error(err))
	} else {
		log.Info("✓ Postgres: Save Assignment Success")
	}

	orders, err := repo.ListOrders(ctx)
	if err != nil {
		log.Fatal("X Postgres: List Orders Failed", zap.Error(err))
	}
	assignments, err := repo.ListAssignments(ctx)
	if err != nil {
		log.Fatal("X Postgres: List Assignments Failed", zap.Error(err))
	}
	log.Info("✓ Postgres: Snapshot Success", zap.Int("orders", len(orders)), zap.Int("assignments", len(assignments)))

	// 3. Build a report from the snapshot
	report := service.BuildReport(table, &domain.Snapshot{
		Orders:        orders,
		Assignments:   assignments,
		ReferenceDate: today,
	}, appConfig.Scheduler.DueSoonDays)
	report.CycleID = fmt.Sprintf("verify-%d", time.Now().UnixNano())
	report.GeneratedAt = time.Now().UTC()

	// 4. Test Redis
	log.Info("--- Testing Redis ---")
	cacheService, err := redisConfig.New(ctx, appConfig.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer cacheService.Close()

	cache := redisAdapter.NewReportCache(cacheService.Storage, time.Minute, log)
	if err := cache.Store(ctx, report); err != nil {
		log.Error("X Redis: Store Report Failed", zap.Error(err))
	} else {
		log.Info("✓ Redis: Store Report Success")
	}
	if latest, err := cache.Latest(ctx); err != nil {
		log.Error("X Redis: Latest Report Failed", zap.Error(err))
	} else {
		log.Info("✓ Redis: Latest Report Success", zap.String("cycle_id", latest.CycleID))
	}

	// 5. Test RabbitMQ
	log.Info("--- Testing RabbitMQ ---")
	queue, err := rabbitmq.NewQueueService(appConfig.AMQP.URL, rabbitmq.Topology{
		Exchange:   appConfig.AMQP.Exchange,
		Queue:      appConfig.AMQP.Queue,
		RoutingKey: appConfig.AMQP.RoutingKey,
	}, log)
	if err != nil {
		log.Error("X RabbitMQ: Connection Failed", zap.Error(err))
	} else {
		defer queue.Close()
		if err := queue.PublishReport(ctx, report); err != nil {
			log.Error("X RabbitMQ: Publish Failed", zap.Error(err))
		} else {
			log.Info("✓ RabbitMQ: Publish Success")
		}
	}

	// 6. Test Prometheus exporter
	log.Info("--- Testing Prometheus ---")
	metrics := prometheus.NewExporter("scheduler")
	metrics.RecordReport(report)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "scheduler_stage_utilization_percent") {
		log.Warn("! Prometheus: utilization gauges missing from exposition")
	} else {
		log.Info("✓ Prometheus: Exposition Success")
	}

	log.Info("Verification Complete.")
}
