package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// DataLoader fetches snapshots from the metrics backend. At most one
// snapshot or summary fetch is outstanding per loader.
type DataLoader struct {
	source  ports.MetricsSource
	timeout time.Duration
	topN    int
	busy    atomic.Bool
	logger  *slog.Logger
}

// NewDataLoader creates a loader bound to a metrics source.
func NewDataLoader(source ports.MetricsSource, opts Options, logger *slog.Logger) *DataLoader {
	opts = opts.withDefaults()
	return &DataLoader{
		source:  source,
		timeout: opts.RequestTimeout,
		topN:    opts.TopKPIs,
		logger:  logger.With("component", "data_loader"),
	}
}

// Busy reports whether a fetch is in flight.
func (l *DataLoader) Busy() bool {
	return l.busy.Load()
}

// Load fetches and normalises a snapshot. While another fetch is in flight it
// returns ErrLoadInFlight without touching the backend. Backend failures are
// logged and answered with the placeholder snapshot.
func (l *DataLoader) Load(ctx context.Context, filters *domain.Filters) (*domain.Snapshot, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrLoadInFlight
	}
	defer l.busy.Store(false)

	return l.Fetch(ctx, filters), nil
}

// Fetch is Load without coalescing, for callers that own no view.
func (l *DataLoader) Fetch(ctx context.Context, filters *domain.Filters) *domain.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	snap, err := l.source.FetchDashboard(ctx, filters)
	if err == nil && snap == nil {
		err = apperrors.ErrMalformedSnapshot
	}
	if err != nil {
		l.logger.WarnContext(ctx, "dashboard fetch failed, rendering placeholder", "error", err)
		snap = domain.PlaceholderSnapshot()
	}

	norm := snap.Normalize(l.topN)
	if norm.ReceivedAt.IsZero() {
		norm.ReceivedAt = time.Now().UTC()
	}
	return norm
}

// LoadSummary fetches the summary counters. It shares the in-flight guard
// with Load and reports failures instead of substituting placeholders.
func (l *DataLoader) LoadSummary(ctx context.Context) (*domain.Summary, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrLoadInFlight
	}
	defer l.busy.Store(false)

	return l.FetchSummary(ctx)
}

// FetchSummary is LoadSummary without coalescing.
func (l *DataLoader) FetchSummary(ctx context.Context) (*domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	summary, err := l.source.FetchSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: summary: %v", apperrors.ErrUpstream, err)
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: empty summary", apperrors.ErrUpstream)
	}

	norm := (&domain.Snapshot{Summary: *summary}).Normalize(l.topN).Summary
	return &norm, nil
}

// Periods loads the period selector. The second value is the key selected by
// default, empty for all periods. Failures degrade to the "all" option.
func (l *DataLoader) Periods(ctx context.Context) ([]domain.Option, string) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	periods, err := l.source.FetchPeriodOptions(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "period options unavailable", "error", err)
		periods = nil
	}
	return domain.PeriodOptions(periods)
}
