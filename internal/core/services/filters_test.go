package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/mocks"
	"github.com/lorrc/performance-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFilterController_SetControl(t *testing.T) {
	fc := services.NewFilterController(mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())

	changed, err := fc.SetControl(domain.ControlEntity, "12")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = fc.SetControl(domain.ControlScope, "directorate")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "all", fc.Current().Entity, "scope change resets the entity")

	_, err = fc.SetControl(domain.ControlPeriod, "all")
	require.NoError(t, err)
	assert.Empty(t, fc.Current().Period)

	_, err = fc.SetControl(domain.ControlPerformance, "stellar")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)
	assert.Equal(t, "all", fc.Current().Performance, "rejected change leaves the selection")

	_, err = fc.SetControl("filter-colour", "red")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)
}

func TestFilterController_EntityOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes records", func(t *testing.T) {
		lookup := mocks.NewMockRecordLookup()
		fc := services.NewFilterController(lookup, sampleTable(), testOptions(), testLogger())
		lookup.On("SearchActive", mock.Anything, "kcca.directorate", "name").Return([]domain.Record{
			{ID: 1, Name: "Finance"},
			{ID: 2, Name: " FINANCE"},
			{ID: 3, Name: "Physical Planning"},
		}, nil).Once()

		opts := fc.EntityOptions(ctx, domain.ScopeDirectorate)

		assert.Equal(t, []domain.Option{
			{Value: "all", Label: "All Directorates"},
			{Value: "1", Label: "Finance"},
			{Value: "3", Label: "Physical Planning"},
		}, opts)
		lookup.AssertExpectations(t)
	})

	t.Run("organization scope skips lookup", func(t *testing.T) {
		lookup := mocks.NewMockRecordLookup()
		fc := services.NewFilterController(lookup, sampleTable(), testOptions(), testLogger())

		opts := fc.EntityOptions(ctx, domain.ScopeOrganization)

		assert.Len(t, opts, 1)
		lookup.AssertNotCalled(t, "SearchActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lookup failure keeps the all option", func(t *testing.T) {
		lookup := mocks.NewMockRecordLookup()
		fc := services.NewFilterController(lookup, sampleTable(), testOptions(), testLogger())
		lookup.On("SearchActive", mock.Anything, "kcca.division", "name").Return(nil, errors.New("down")).Once()

		opts := fc.EntityOptions(ctx, domain.ScopeDivision)

		assert.Equal(t, []domain.Option{{Value: "all", Label: "All Divisions"}}, opts)
	})
}

func TestFilterController_Navigate(t *testing.T) {
	fc := services.NewFilterController(mocks.NewMockRecordLookup(), sampleTable(), testOptions(), testLogger())
	require.NoError(t, fc.Set(domain.Filters{Scope: domain.ScopeDirectorate, Entity: "9", Performance: "good"}))

	req, err := fc.Navigate("robust_pmis.action_key_performance_indicator")

	require.NoError(t, err)
	assert.Equal(t, 1, req.Context["search_default_on_track"])
	assert.Equal(t, int64(9), req.Context["search_default_directorate_id"])

	_, err = fc.Navigate("robust_pmis.missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownDestination)
}
