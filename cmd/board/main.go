package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crabzie/production-scheduler/config/logger"
	redisConfig "github.com/crabzie/production-scheduler/config/storage/redis"
	config "github.com/crabzie/production-scheduler/config/utils"
	httpHandler "github.com/crabzie/production-scheduler/internal/adapter/handler/http"
	"github.com/crabzie/production-scheduler/internal/adapter/queue/rabbitmq"
	redisAdapter "github.com/crabzie/production-scheduler/internal/adapter/storage/redis"
	"github.com/crabzie/production-scheduler/internal/core/service"
	"go.uber.org/zap"
)

const _shutdownPeriod = 10 * time.Second

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// 1. Init Config & Logger
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)

	hostname, _ := os.Hostname()
	log = log.With(zap.String("service", "board"), zap.String("host", hostname))
	log.Info("Starting schedule board")

	table, err := appConfig.Scheduler.StageTable()
	if err != nil {
		log.Fatal("Invalid stage table", zap.Error(err))
	}

	// 2. Init Adapters

	// Redis with Retry
	var cacheService *redisConfig.Redis
	maxRedisRetries := 10
	for i := 1; i <= maxRedisRetries; i++ {
		cacheService, err = redisConfig.New(rootCtx, appConfig.Redis)
		if err == nil {
			break
		}
		log.Warn("Failed to connect to Redis, retrying...", zap.Int("attempt", i), zap.Error(err))
		if i == maxRedisRetries {
			log.Fatal("Failed to init Redis after max retries", zap.Error(err))
		}
		time.Sleep(time.Duration(i*2) * time.Second)
	}
	cache := redisAdapter.NewReportCache(cacheService.Storage, appConfig.Scheduler.ReportTTL, log)

	// RabbitMQ
	queueService, err := rabbitmq.NewQueueService(appConfig.AMQP.URL, rabbitmq.Topology{
		Exchange:   appConfig.AMQP.Exchange,
		Queue:      appConfig.AMQP.Queue,
		RoutingKey: appConfig.AMQP.RoutingKey,
	}, log.Named("AMQP"))
	if err != nil {
		log.Fatal("Failed to init RabbitMQ", zap.Error(err))
	}

	// 3. Init Board Service
	board := service.NewBoardService(table, cache, queueService, appConfig.Scheduler.StaleAfter, log)

	// 4. Start Board
	if err := board.StartBoard(rootCtx); err != nil {
		log.Fatal("Failed to start board", zap.Error(err))
	}

	app := httpHandler.NewRouter(board, nil, appConfig.Scheduler.DeadlinePageSize, log.Named("HTTP"))
	go func() {
		log.Info("Serving read API", zap.String("addr", appConfig.HTTP.Addr))
		if err := app.Listen(appConfig.HTTP.Addr); err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
			rootCtxCancel()
		}
	}()

	// 5. Wait for Shutdown
	<-rootCtx.Done()
	log.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(_shutdownPeriod); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}

	// Cleanup
	queueService.Close()
	cacheService.Close()
	log.Info("Shutdown complete")
}
