// Package http provides the read-only Fiber API over the latest schedule report.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port"
	"github.com/crabzie/production-scheduler/internal/core/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type handler struct {
	board    port.BoardService
	pageSize int
	log      *zap.Logger
}

// NewRouter wires the API routes; metrics may be nil to skip /metrics
func NewRouter(board port.BoardService, metrics http.Handler, deadlinePageSize int, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "production-scheduler",
		DisableStartupMessage: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestLogger(log))

	h := &handler{board: board, pageSize: max(1, deadlinePageSize), log: log}

	app.Get("/health", h.health)
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	v1 := app.Group("/api/v1")
	v1.Get("/stages", h.stages)
	v1.Get("/report", h.report)
	v1.Get("/reports/:cycleID", h.cycle)
	v1.Get("/orders/:id", h.order)
	v1.Get("/deadlines", h.deadlines)
	return app
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handler) stages(c *fiber.Ctx) error {
	return c.JSON(h.board.Stages())
}

func (h *handler) report(c *fiber.Ctx) error {
	report, err := h.board.Latest(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *handler) cycle(c *fiber.Ctx) error {
	report, err := h.board.Cycle(c.UserContext(), c.Params("cycleID"))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (h *handler) order(c *fiber.Ctx) error {
	order, err := h.board.Order(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

type deadlinesResponse struct {
	service.PageInfo
	Orders []domain.OrderSchedule `json:"orders"`
}

// deadlines pages through active orders, earliest due date first
func (h *handler) deadlines(c *fiber.Ctx) error {
	report, err := h.board.Latest(c.UserContext())
	if err != nil {
		return err
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "page must be an integer")
	}

	active := make([]domain.OrderSchedule, 0, len(report.Upcoming))
	for _, id := range report.Upcoming {
		if o, err := report.FindOrder(id); err == nil {
			active = append(active, *o)
		}
	}

	items, info := service.Page(active, page, h.pageSize)
	if items == nil {
		items = []domain.OrderSchedule{}
	}
	return c.JSON(deadlinesResponse{PageInfo: info, Orders: items})
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
		case errors.Is(err, domain.ErrReportNotFound), errors.Is(err, domain.ErrOrderNotFound):
			code = fiber.StatusNotFound
		default:
			log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug("Request served",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)))
		return err
	}
}
