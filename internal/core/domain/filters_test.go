package domain_test

import (
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters_WithDefaults(t *testing.T) {
	f := domain.Filters{Period: "all"}.WithDefaults()

	assert.Equal(t, domain.DefaultFilters(), f)
	assert.Nil(t, f.Params()["period"])
}

func TestFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filters domain.Filters
		field   string
	}{
		{"defaults are valid", domain.DefaultFilters(), ""},
		{"bad data type", domain.Filters{DataType: "kpi", Scope: domain.ScopeOrganization, Entity: "all", Performance: "all"}, "data_type"},
		{"bad scope", domain.Filters{DataType: domain.DataTypeAll, Scope: "region", Entity: "all", Performance: "all"}, "scope"},
		{"bad entity", domain.Filters{DataType: domain.DataTypeAll, Scope: domain.ScopeDirectorate, Entity: "abc", Performance: "all"}, "entity"},
		{"bad band", domain.Filters{DataType: domain.DataTypeAll, Scope: domain.ScopeOrganization, Entity: "all", Performance: "great"}, "performance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidFilter)
			var verrs *apperrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.Errors, tt.field)
		})
	}
}

func TestScope_Model(t *testing.T) {
	model, ok := domain.ScopeDirectorate.Model()
	assert.True(t, ok)
	assert.Equal(t, "kcca.directorate", model)
	assert.Equal(t, "All Directorates", domain.ScopeDirectorate.AllLabel())

	_, ok = domain.ScopeOrganization.Model()
	assert.False(t, ok)
	assert.Equal(t, "All", domain.ScopeOrganization.AllLabel())
}

func TestFilters_EntityIDAndBand(t *testing.T) {
	f := domain.Filters{Entity: "42", Performance: "good"}

	id, ok := f.EntityID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	band, ok := f.Band()
	assert.True(t, ok)
	assert.Equal(t, domain.BandGood, band)

	_, ok = domain.DefaultFilters().EntityID()
	assert.False(t, ok)
	_, ok = domain.DefaultFilters().Band()
	assert.False(t, ok)
}
