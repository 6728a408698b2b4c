package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// ChartRenderer keeps at most one live chart per canvas on a host surface.
// Elements the surface does not provide are skipped.
type ChartRenderer struct {
	mu       sync.Mutex
	surface  ports.Surface
	library  ports.ChartLibrary
	charts   map[string]domain.ChartInstance
	retries  int
	interval time.Duration
	logger   *slog.Logger
}

// NewChartRenderer creates a renderer drawing on surface.
func NewChartRenderer(surface ports.Surface, library ports.ChartLibrary, opts Options, logger *slog.Logger) *ChartRenderer {
	opts = opts.withDefaults()
	return &ChartRenderer{
		surface:  surface,
		library:  library,
		charts:   make(map[string]domain.ChartInstance),
		retries:  opts.LibraryRetries,
		interval: opts.LibraryInterval,
		logger:   logger.With("component", "chart_renderer"),
	}
}

// EnsureLibrary waits a bounded time for the chart library to load.
func (r *ChartRenderer) EnsureLibrary(ctx context.Context) error {
	if r.library.Ready() {
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.interval), uint64(r.retries)),
		ctx,
	)
	err := backoff.Retry(func() error {
		if r.library.Ready() {
			return nil
		}
		return apperrors.ErrChartLibraryUnavailable
	}, b)
	if err != nil {
		return fmt.Errorf("%w after %d attempts", apperrors.ErrChartLibraryUnavailable, r.retries+1)
	}
	return nil
}

// Prepare waits for the chart library and picks the snapshot to draw. When
// the library never shows up the placeholder snapshot is drawn instead.
func (r *ChartRenderer) Prepare(ctx context.Context, snap *domain.Snapshot) *domain.Snapshot {
	if err := r.EnsureLibrary(ctx); err != nil {
		r.logger.WarnContext(ctx, "rendering placeholder data", "error", err)
		return domain.PlaceholderSnapshot().Normalize(0)
	}
	return snap
}

// Render draws every chart, the top performers list, the summary counters
// and the headline performance bar for snap.
func (r *ChartRenderer) Render(snap *domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for canvas, cfg := range BuildCharts(snap) {
		r.bindLocked(canvas, cfg)
	}

	if r.surface.Has(domain.ElementTopPerformers) {
		r.surface.SetHTML(domain.ElementTopPerformers, TopPerformersHTML(snap.TopKPIs))
	}
	r.renderSummaryLocked(snap.Summary)
}

// RenderSummary refreshes only the counters and the performance bar.
func (r *ChartRenderer) RenderSummary(s domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderSummaryLocked(s)
}

func (r *ChartRenderer) renderSummaryLocked(s domain.Summary) {
	for element, v := range s.Counters() {
		if r.surface.Has(element) {
			r.surface.SetText(element, strconv.FormatFloat(v, 'f', 0, 64))
		}
	}

	avg := domain.ClampPercent(s.AvgPerformance.Float())
	if r.surface.Has(domain.ElementPerformanceFill) {
		r.surface.SetProgress(domain.ElementPerformanceFill, avg, domain.Classify(avg))
	}
	if r.surface.Has(domain.ElementPerformanceText) {
		r.surface.SetText(domain.ElementPerformanceText, fmt.Sprintf("%.1f%%", avg))
	}
}

// bindLocked (re)creates the chart on canvas. It returns false when the
// canvas is not on the page.
func (r *ChartRenderer) bindLocked(canvas string, cfg domain.ChartConfig) bool {
	if !r.surface.Has(canvas) {
		r.logger.Debug("canvas missing, chart skipped", "canvas", canvas)
		return false
	}

	if existing, ok := r.charts[canvas]; ok {
		r.surface.DestroyChart(existing)
		delete(r.charts, canvas)
	}

	chart := domain.ChartInstance{ID: uuid.New(), Canvas: canvas, Config: cfg}
	r.surface.MountChart(chart)
	r.charts[canvas] = chart
	return true
}

// Resize re-lays out the charts that follow the window size.
func (r *ChartRenderer) Resize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, canvas := range domain.ResizableCanvases {
		if chart, ok := r.charts[canvas]; ok {
			r.surface.ResizeChart(chart)
		}
	}
}

// DestroyAll tears down every live chart.
func (r *ChartRenderer) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for canvas, chart := range r.charts {
		r.surface.DestroyChart(chart)
		delete(r.charts, canvas)
	}
}

// LiveCount is the number of charts currently bound.
func (r *ChartRenderer) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.charts)
}

// Chart returns the live chart on canvas.
func (r *ChartRenderer) Chart(canvas string) (domain.ChartInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chart, ok := r.charts[canvas]
	return chart, ok
}
