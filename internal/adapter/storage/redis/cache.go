package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"go.uber.org/zap"
)

const (
	latestKey      = "schedule:report:latest"
	cyclePrefixKey = "schedule:report:cycle:"
)

// Storage is the subset of the fiber storage interface the cache needs
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

type reportCache struct {
	storage Storage
	ttl     time.Duration
	log     *zap.Logger
}

// NewReportCache creates a new Redis adapter holding the latest schedule report
func NewReportCache(storage Storage, ttl time.Duration, log *zap.Logger) *reportCache {
	return &reportCache{
		storage: storage,
		ttl:     ttl,
		log:     log,
	}
}

// Store saves the report as latest and under its cycle id, both expiring after ttl
func (c *reportCache) Store(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if err := c.storage.Set(cyclePrefixKey+report.CycleID, data, c.ttl); err != nil {
		return fmt.Errorf("store cycle %s: %w", report.CycleID, err)
	}
	if err := c.storage.Set(latestKey, data, c.ttl); err != nil {
		return fmt.Errorf("store latest: %w", err)
	}
	return nil
}

// Latest returns the newest report, ErrReportNotFound once it expired or before the first cycle
func (c *reportCache) Latest(ctx context.Context) (*domain.Report, error) {
	return c.load(ctx, latestKey)
}

// Cycle returns the report of one cycle while it is still retained
func (c *reportCache) Cycle(ctx context.Context, cycleID string) (*domain.Report, error) {
	return c.load(ctx, cyclePrefixKey+cycleID)
}

func (c *reportCache) load(ctx context.Context, key string) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := c.storage.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrReportNotFound
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		c.log.Warn("Discarding unreadable cached report", zap.String("key", key), zap.Error(err))
		return nil, domain.ErrReportNotFound
	}
	return &report, nil
}
