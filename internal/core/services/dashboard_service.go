package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// DashboardService serves stateless dashboard requests and creates
// controllers for interactive views.
type DashboardService struct {
	source ports.MetricsSource
	lookup ports.RecordLookup
	table  *domain.NavigationTable
	loader *DataLoader
	opts   Options
	base   *slog.Logger
	logger *slog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	source ports.MetricsSource,
	lookup ports.RecordLookup,
	table *domain.NavigationTable,
	opts Options,
	logger *slog.Logger,
) *DashboardService {
	opts = opts.withDefaults()
	return &DashboardService{
		source: source,
		lookup: lookup,
		table:  table,
		loader: NewDataLoader(source, opts, logger),
		opts:   opts,
		base:   logger,
		logger: logger.With("component", "dashboard_service"),
	}
}

// Dashboard loads a snapshot for filters and builds every chart for it. An
// unreachable backend yields the placeholder snapshot, flagged as such.
func (s *DashboardService) Dashboard(ctx context.Context, filters domain.Filters) (*ports.DashboardResult, error) {
	filters = filters.WithDefaults()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	snap := s.loader.Fetch(ctx, &filters)
	return &ports.DashboardResult{
		Filters:  filters,
		Snapshot: snap,
		Charts:   BuildCharts(snap),
		TopList:  TopPerformersHTML(snap.TopKPIs),
	}, nil
}

// Summary returns the headline counters.
func (s *DashboardService) Summary(ctx context.Context) (*domain.Summary, error) {
	return s.loader.FetchSummary(ctx)
}

// Periods returns the period selector options.
func (s *DashboardService) Periods(ctx context.Context) ([]domain.Option, error) {
	opts, _ := s.loader.Periods(ctx)
	return opts, nil
}

// Entities returns the deduplicated entity selector for scope.
func (s *DashboardService) Entities(ctx context.Context, scope domain.Scope) ([]domain.Option, error) {
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownScope, scope)
	}
	return loadEntityOptions(ctx, s.lookup, scope, s.opts.RequestTimeout, s.logger), nil
}

// Navigate resolves a metric card action under filters.
func (s *DashboardService) Navigate(action string, filters domain.Filters) (domain.NavigationRequest, error) {
	filters = filters.WithDefaults()
	if err := filters.Validate(); err != nil {
		return domain.NavigationRequest{}, err
	}
	return s.table.Resolve(action, filters)
}

// NewView creates an unmounted controller for host.
func (s *DashboardService) NewView(host ports.Host) ports.DashboardView {
	return NewDashboardController(host, s.source, s.lookup, s.table, s.opts, s.base)
}
