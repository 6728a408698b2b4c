package services_test

import (
	"context"
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/mocks"
	"github.com/lorrc/performance-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("builds charts for the filtered snapshot", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		svc := services.NewDashboardService(source, mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())

		want := domain.Filters{DataType: domain.DataTypeStrategic}.WithDefaults()
		source.On("FetchDashboard", mock.Anything, &want).Return(sampleSnapshot(), nil).Once()

		result, err := svc.Dashboard(ctx, domain.Filters{DataType: domain.DataTypeStrategic})

		require.NoError(t, err)
		assert.Equal(t, want, result.Filters)
		assert.Len(t, result.Charts, 9)
		assert.Contains(t, result.TopList, "Collections")
		source.AssertExpectations(t)
	})

	t.Run("invalid filters never reach the backend", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		svc := services.NewDashboardService(source, mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())

		result, err := svc.Dashboard(ctx, domain.Filters{Performance: "brilliant"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)
		source.AssertNotCalled(t, "FetchDashboard", mock.Anything, mock.Anything)
	})

	t.Run("concurrent requests are not coalesced", func(t *testing.T) {
		source := mocks.NewMockMetricsSource()
		svc := services.NewDashboardService(source, mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())
		source.On("FetchDashboard", mock.Anything, mock.Anything).Return(sampleSnapshot(), nil)

		done := make(chan struct{})
		for i := 0; i < 3; i++ {
			go func() {
				_, err := svc.Dashboard(ctx, domain.DefaultFilters())
				assert.NoError(t, err)
				done <- struct{}{}
			}()
		}
		for i := 0; i < 3; i++ {
			<-done
		}
		source.AssertNumberOfCalls(t, "FetchDashboard", 3)
	})
}

func TestDashboardService_Entities(t *testing.T) {
	ctx := context.Background()
	lookup := mocks.NewMockRecordLookup()
	svc := services.NewDashboardService(mocks.NewMockMetricsSource(), lookup, sampleTable(), testOptions(), testLogger())

	lookup.On("SearchActive", mock.Anything, "strategic.goal", "name").
		Return([]domain.Record{{ID: 1, Name: "Goal A"}}, nil).Once()

	opts, err := svc.Entities(ctx, domain.ScopeStrategicGoal)
	require.NoError(t, err)
	assert.Equal(t, []domain.Option{{Value: "all", Label: "All Goals"}, {Value: "1", Label: "Goal A"}}, opts)

	_, err = svc.Entities(ctx, domain.Scope("region"))
	assert.ErrorIs(t, err, apperrors.ErrUnknownScope)
}

func TestDashboardService_Navigate(t *testing.T) {
	svc := services.NewDashboardService(mocks.NewMockMetricsSource(), mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())

	req, err := svc.Navigate("robust_pmis.action_key_performance_indicator", domain.Filters{Performance: "excellent"})
	require.NoError(t, err)
	assert.Equal(t, 1, req.Context["search_default_achieved"])

	_, err = svc.Navigate("robust_pmis.action_key_performance_indicator", domain.Filters{Entity: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)

	_, err = svc.Navigate("nope", domain.DefaultFilters())
	assert.ErrorIs(t, err, apperrors.ErrUnknownDestination)
}

func TestDashboardService_NewView(t *testing.T) {
	svc := services.NewDashboardService(mocks.NewMockMetricsSource(), mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())

	view := svc.NewView(mocks.NewFakeHost(domain.FullLayout()))

	assert.Equal(t, domain.StateUnmounted, view.State())
}
