package postgres

import (
	"context"
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecordRepo(t *testing.T) *RecordRepository {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return NewRecordRepository(testPool)
}

func seed(t *testing.T, table string, rows ...struct {
	name   *string
	active bool
}) {
	t.Helper()
	ctx := context.Background()

	_, err := testPool.Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	for _, row := range rows {
		_, err := testPool.Exec(ctx, "INSERT INTO "+table+" (name, active) VALUES ($1, $2)", row.name, row.active)
		require.NoError(t, err)
	}
}

func row(name string, active bool) struct {
	name   *string
	active bool
} {
	return struct {
		name   *string
		active bool
	}{&name, active}
}

func TestRecordRepository_SearchActive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRecordRepo(t)

	seed(t, "kcca_directorate",
		row("Finance", true),
		row("Legacy Works", false),
		row(" finance ", true),
		struct {
			name   *string
			active bool
		}{nil, true},
	)

	records, err := repo.SearchActive(ctx, "kcca.directorate", "name")
	require.NoError(t, err)

	assert.Equal(t, []domain.Record{
		{ID: 1, Name: "Finance"},
		{ID: 3, Name: " finance "},
		{ID: 4, Name: ""},
	}, records)

	opts := domain.EntityOptions(domain.ScopeDirectorate, records)
	assert.Len(t, opts, 2, "duplicates and blank names collapse")
}

func TestRecordRepository_EveryLookupModelHasATable(t *testing.T) {
	ctx := context.Background()
	repo := newTestRecordRepo(t)

	for _, model := range domain.LookupModels() {
		_, err := repo.SearchActive(ctx, model, "name")
		assert.NoError(t, err, model)
	}
}

func TestRecordRepository_RejectsUnknownModel(t *testing.T) {
	ctx := context.Background()
	repo := newTestRecordRepo(t)

	_, err := repo.SearchActive(ctx, "res.users", "name")
	assert.ErrorIs(t, err, apperrors.ErrUnknownModel)

	_, err = repo.SearchActive(ctx, "kcca.division", "password")
	assert.ErrorIs(t, err, apperrors.ErrUnknownModel)
}
