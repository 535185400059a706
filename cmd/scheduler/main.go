package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crabzie/production-scheduler/config/logger"
	postgresConfig "github.com/crabzie/production-scheduler/config/storage/postgresql"
	redisConfig "github.com/crabzie/production-scheduler/config/storage/redis"
	config "github.com/crabzie/production-scheduler/config/utils"
	"github.com/crabzie/production-scheduler/internal/adapter/monitoring/prometheus"
	"github.com/crabzie/production-scheduler/internal/adapter/queue/rabbitmq"
	"github.com/crabzie/production-scheduler/internal/adapter/resilience"
	"github.com/crabzie/production-scheduler/internal/adapter/storage/postgres"
	redisAdapter "github.com/crabzie/production-scheduler/internal/adapter/storage/redis"
	"github.com/crabzie/production-scheduler/internal/core/service"
	"go.uber.org/zap"
)

// _readinessDrainDelay is time to sleep while context shutdown message propagate
const _readinessDrainDelay = 1 * time.Second

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// Init config
	appConfig := config.New()
	baseLogger := logger.Build(appConfig.Logger)
	zap.L().Debug("Logger Builded successfully")

	zap.L().Info("Starting the planner", zap.String("app", appConfig.App.Name), zap.String("env", appConfig.App.Env), zap.String("owner", appConfig.App.Owner))

	// Stage table errors are systemic, never per-record
	table, err := appConfig.Scheduler.StageTable()
	if err != nil {
		zap.L().Fatal("Invalid stage table", zap.Error(err))
	}

	// Init database service
	dbLogger := baseLogger.Named("DB")
	dbService, err := postgresConfig.New(rootCtx, appConfig.DB, dbLogger)
	if err != nil {
		zap.L().Error("Error initializing database connection", zap.Error(err))
		os.Exit(1)
	}
	defer dbService.Close()
	zap.L().Info("Successfully connected to the database", zap.String("db", appConfig.DB.Connection))

	// Migrate database
	if err := dbService.Migrate(); err != nil {
		zap.L().Error("Error migrating database", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Successfully migrated the database")

	// Init cache service
	cacheService, err := redisConfig.New(rootCtx, appConfig.Redis)
	if err != nil {
		zap.L().Error("Error initializing cache connection", zap.Error(err))
		os.Exit(1)
	}
	defer cacheService.Close()
	zap.L().Info("Successfully connected to the cache server", zap.String("address", appConfig.Redis.Addr))

	// Init broker
	queueService, err := rabbitmq.NewQueueService(appConfig.AMQP.URL, rabbitmq.Topology{
		Exchange:   appConfig.AMQP.Exchange,
		Queue:      appConfig.AMQP.Queue,
		RoutingKey: appConfig.AMQP.RoutingKey,
	}, baseLogger.Named("AMQP"))
	if err != nil {
		zap.L().Error("Error initializing broker connection", zap.Error(err))
		os.Exit(1)
	}
	defer queueService.Close()

	plannerLogger := baseLogger.Named("Planner")
	repo := resilience.NewGuardedRepository(
		postgres.NewOrderRepository(dbService.Pool, dbLogger),
		resilience.DefaultBreakerConfig("order-store"),
		plannerLogger,
	)
	cache := redisAdapter.NewReportCache(cacheService.Storage, appConfig.Scheduler.ReportTTL, plannerLogger)
	metrics := prometheus.NewExporter("scheduler")

	opts := []service.PlannerOption{service.WithDueSoonDays(appConfig.Scheduler.DueSoonDays)}
	if ref, _ := appConfig.Scheduler.ReferenceTime(); !ref.IsZero() {
		zap.L().Info("Using simulated reference date", zap.String("date", appConfig.Scheduler.ReferenceDate))
		opts = append(opts, service.WithReferenceDate(ref))
	}
	planner := service.NewPlannerService(table, repo, cache, queueService, metrics, plannerLogger, opts...)

	// Metrics endpoint
	go serveMetrics(rootCtx, appConfig.HTTP.MetricsAddr, metrics, dbService.Health, baseLogger.Named("HTTP"))

	planner.StartScheduler(rootCtx, appConfig.Scheduler.Interval)

	// Wait for signal propagation
	time.Sleep(_readinessDrainDelay)
	zap.L().Info("Graceful shutdown complete.")
}
