package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/mocks"
	"github.com/lorrc/performance-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDataLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success normalises the snapshot", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())

		filters := domain.DefaultFilters()
		source.On("FetchDashboard", mock.Anything, &filters).Return(sampleSnapshot(), nil).Once()

		snap, err := loader.Load(ctx, &filters)

		require.NoError(t, err)
		assert.False(t, snap.Placeholder)
		assert.Equal(t, domain.Number(100), snap.GoalsPerformance[1].Target)
		assert.False(t, snap.ReceivedAt.IsZero())
		assert.False(t, loader.Busy())
		source.AssertExpectations(t)
	})

	t.Run("failure falls back to placeholder", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())

		source.On("FetchDashboard", mock.Anything, (*domain.Filters)(nil)).
			Return(nil, errors.New("connection refused")).Once()

		snap, err := loader.Load(ctx, nil)

		require.NoError(t, err)
		assert.True(t, snap.Placeholder)
		assert.Equal(t, domain.Number(108), snap.Summary.TotalKPIs)
		source.AssertExpectations(t)
	})

	t.Run("nil snapshot falls back to placeholder", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())

		source.On("FetchDashboard", mock.Anything, (*domain.Filters)(nil)).Return(nil, nil).Once()

		snap, err := loader.Load(ctx, nil)

		require.NoError(t, err)
		assert.True(t, snap.Placeholder)
	})
}

func TestDataLoader_CoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockMetricsSource()
	loader := services.NewDataLoader(source, testOptions(), testLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	source.On("FetchDashboard", mock.Anything, (*domain.Filters)(nil)).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleSnapshot(), nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := loader.Load(ctx, nil)
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, loader.Busy())

	_, err := loader.Load(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrLoadInFlight)
	_, err = loader.LoadSummary(ctx)
	assert.ErrorIs(t, err, apperrors.ErrLoadInFlight)

	close(release)
	wg.Wait()

	source.AssertNumberOfCalls(t, "FetchDashboard", 1)
	source.AssertNotCalled(t, "FetchSummary", mock.Anything)
}

func TestDataLoader_Timeout(t *testing.T) {
	source := mocks.NewMockMetricsSource()
	opts := testOptions()
	opts.RequestTimeout = 10 * time.Millisecond
	loader := services.NewDataLoader(source, opts, testLogger())

	source.On("FetchDashboard", mock.Anything, (*domain.Filters)(nil)).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	snap, err := loader.Load(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, snap.Placeholder)
}

func TestDataLoader_LoadSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())
		source.On("FetchSummary", mock.Anything).Return(&domain.Summary{TotalKPIs: 12, AvgPerformance: 120}, nil).Once()

		summary, err := loader.LoadSummary(ctx)

		require.NoError(t, err)
		assert.Equal(t, domain.Number(12), summary.TotalKPIs)
		assert.Equal(t, domain.Number(100), summary.AvgPerformance)
	})

	t.Run("failure is reported", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())
		source.On("FetchSummary", mock.Anything).Return(nil, errors.New("boom")).Once()

		summary, err := loader.LoadSummary(ctx)

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	})
}

func TestDataLoader_Periods(t *testing.T) {
	ctx := context.Background()

	t.Run("selects latest fiscal year", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())
		source.On("FetchPeriodOptions", mock.Anything).Return([]domain.PeriodOption{
			{Key: "fy:2023-24", Label: "FY 2023/24"},
			{Key: "fy:2024-25", Label: "FY 2024/25"},
		}, nil).Once()

		opts, selected := loader.Periods(ctx)

		assert.Equal(t, "fy:2024-25", selected)
		assert.Len(t, opts, 3)
	})

	t.Run("failure leaves only all periods", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		loader := services.NewDataLoader(source, testOptions(), testLogger())
		source.On("FetchPeriodOptions", mock.Anything).Return(nil, errors.New("boom")).Once()

		opts, selected := loader.Periods(ctx)

		assert.Empty(t, selected)
		require.Len(t, opts, 1)
		assert.Equal(t, "all", opts[0].Value)
	})
}
