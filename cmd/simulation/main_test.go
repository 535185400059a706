package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRandomOrder(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	for n := 1; n <= 50; n++ {
		o := randomOrder(n, now)

		start, ok := o.Start()
		require.True(t, ok)
		due, ok := o.Deadline()
		require.True(t, ok)
		assert.True(t, due.After(start), o.ID)
		assert.False(t, start.After(domain.Today(now)), o.ID)
		assert.Contains(t, cabinetTypes, o.CabinetType)
		assert.GreaterOrEqual(t, o.Quantity, 3)
		assert.LessOrEqual(t, o.Quantity, 50)
		require.NotNil(t, o.RawProgress)
		assert.Zero(t, *o.RawProgress)
		assert.Equal(t, domain.OrderStatusInProgress, o.Status)
	}
}

func TestSeed_WritesThroughOrderStore(t *testing.T) {
	order := randomOrder(1, time.Now())
	store := new(mocks.OrderWriter)
	store.On("SaveOrder", mock.Anything, &order).Return(nil).Once()

	require.NoError(t, seed(context.Background(), store, &order))
	store.AssertExpectations(t)

	failing := new(mocks.OrderWriter)
	failing.On("SaveOrder", mock.Anything, mock.Anything).Return(errors.New("conn refused"))
	assert.EqualError(t, seed(context.Background(), failing, &order), "conn refused")
}
