// Package resilience guards the snapshot source with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the order store is considered down
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds configuration for the order store breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed in half-open state
	Interval         time.Duration // window after which failure counts reset (0 = never)
	Timeout          time.Duration // open → half-open delay
	FailureThreshold uint32        // consecutive failures that trip the breaker
}

// DefaultBreakerConfig trips after three consecutive failed fetches
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          15 * time.Second,
		FailureThreshold: 3,
	}
}

type guardedRepository struct {
	next port.OrderRepository
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

// NewGuardedRepository wraps next so a failing store is not hammered every poll
func NewGuardedRepository(next port.OrderRepository, config BreakerConfig, log *zap.Logger) *guardedRepository {
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up is not a store failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &guardedRepository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
		log:  log,
	}
}

func (g *guardedRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.ListOrders(ctx)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.([]domain.Order), nil
}

func (g *guardedRepository) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.ListAssignments(ctx)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.([]domain.Assignment), nil
}

// State reports the breaker state, for logs and tests
func (g *guardedRepository) State() gobreaker.State {
	return g.cb.State()
}

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}
