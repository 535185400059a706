package main

import (
	"context"

	"github.com/crabzie/production-scheduler/internal/adapter/monitoring/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

// serveMetrics exposes the planner registry until ctx is cancelled; /health reports the order store
func serveMetrics(ctx context.Context, addr string, metrics *prometheus.Exporter, health func(context.Context) error, log *zap.Logger) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := health(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Serving metrics", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Error("Metrics server stopped", zap.Error(err))
	}
}
