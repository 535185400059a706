package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStorage mimics fiber storage: a missing key reads back as nil, nil
type memoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memoryStorage) Set(key string, val []byte, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = val
	m.ttls[key] = exp
	return nil
}

func TestReportCache_StoreAndLoad(t *testing.T) {
	storage := newMemoryStorage()
	cache := NewReportCache(storage, time.Hour, zap.NewNop())
	ctx := context.Background()

	report := &domain.Report{
		CycleID:       "c1",
		GeneratedAt:   time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC),
		ReferenceDate: "2024-01-06",
		Orders:        []domain.OrderSchedule{{ID: "a", Progress: 50}},
	}
	require.NoError(t, cache.Store(ctx, report))
	assert.Equal(t, time.Hour, storage.ttls[latestKey])
	assert.Equal(t, time.Hour, storage.ttls[cyclePrefixKey+"c1"])

	latest, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, report, latest)

	byCycle, err := cache.Cycle(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", byCycle.CycleID)
}

func TestReportCache_LatestFollowsNewestStore(t *testing.T) {
	cache := NewReportCache(newMemoryStorage(), time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, &domain.Report{CycleID: "c1"}))
	require.NoError(t, cache.Store(ctx, &domain.Report{CycleID: "c2"}))

	latest, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c2", latest.CycleID)

	old, err := cache.Cycle(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", old.CycleID)
}

func TestReportCache_Missing(t *testing.T) {
	cache := NewReportCache(newMemoryStorage(), time.Hour, zap.NewNop())

	_, err := cache.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	_, err = cache.Cycle(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportCache_CorruptEntry(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[latestKey] = []byte("{not json")
	cache := NewReportCache(storage, time.Hour, zap.NewNop())

	_, err := cache.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportCache_StorageError(t *testing.T) {
	storage := newMemoryStorage()
	storage.err = errors.New("connection reset")
	cache := NewReportCache(storage, time.Hour, zap.NewNop())
	ctx := context.Background()

	assert.ErrorContains(t, cache.Store(ctx, &domain.Report{CycleID: "c1"}), "store cycle c1")
	_, err := cache.Latest(ctx)
	assert.ErrorIs(t, err, storage.err)
}

func TestReportCache_CancelledContext(t *testing.T) {
	cache := NewReportCache(newMemoryStorage(), time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cache.Store(ctx, &domain.Report{}), context.Canceled)
	_, err := cache.Latest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
