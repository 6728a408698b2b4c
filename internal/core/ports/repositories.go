package ports

import (
	"context"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

// MetricsSource is the port to the backend that aggregates performance data.
type MetricsSource interface {
	// FetchDashboard returns the full snapshot. A nil filter asks for the
	// unfiltered dashboard.
	FetchDashboard(ctx context.Context, filters *domain.Filters) (*domain.Snapshot, error)
	FetchSummary(ctx context.Context) (*domain.Summary, error)
	FetchPeriodOptions(ctx context.Context) ([]domain.PeriodOption, error)
	Ping(ctx context.Context) error
}

// RecordLookup lists active records of a backend model.
type RecordLookup interface {
	SearchActive(ctx context.Context, model, field string) ([]domain.Record, error)
}
