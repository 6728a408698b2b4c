package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// RecordRepository serves entity lookups from a replica of the backend's
// organisational tables. A model maps to the table named after it with dots
// replaced by underscores.
type RecordRepository struct {
	pool   *pgxpool.Pool
	tables map[string]string
}

var _ ports.RecordLookup = (*RecordRepository)(nil)

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	tables := make(map[string]string)
	for _, model := range domain.LookupModels() {
		tables[model] = strings.ReplaceAll(model, ".", "_")
	}
	return &RecordRepository{pool: pool, tables: tables}
}

// SearchActive lists the active rows of model ordered by id.
func (r *RecordRepository) SearchActive(ctx context.Context, model, field string) ([]domain.Record, error) {
	table, ok := r.tables[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownModel, model)
	}
	if field != "name" {
		return nil, fmt.Errorf("%w: field %q of %s", apperrors.ErrUnknownModel, field, model)
	}

	query := fmt.Sprintf(
		`SELECT id, %s FROM %s WHERE active = true ORDER BY id`,
		pgx.Identifier{field}.Sanitize(),
		pgx.Identifier{table}.Sanitize(),
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var (
			id   int64
			name pgtype.Text
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		records = append(records, domain.Record{ID: id, Name: name.String})
	}
	return records, rows.Err()
}
