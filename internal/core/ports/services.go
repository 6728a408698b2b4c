package ports

import (
	"context"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

// Surface is the host page a view draws on. Calls addressing an element the
// page did not declare are the caller's responsibility to skip.
type Surface interface {
	Has(element string) bool
	MountChart(chart domain.ChartInstance)
	DestroyChart(chart domain.ChartInstance)
	ResizeChart(chart domain.ChartInstance)
	SetHTML(element, html string)
	SetText(element, text string)
	SetOptions(element string, options []domain.Option)
	SetProgress(element string, percent float64, band domain.Band)
}

// ChartLibrary reports whether the host's charting library has loaded.
type ChartLibrary interface {
	Ready() bool
}

// Host is everything a mounted view needs from the connected page.
type Host interface {
	Surface
	ChartLibrary
	Navigate(req domain.NavigationRequest)
	PublishState(state domain.StatePayload)
}

// DashboardView is one mounted dashboard bound to a host page.
type DashboardView interface {
	ID() string
	Mount(ctx context.Context, msg domain.MountMessage) error
	ChangeFilter(ctx context.Context, control, value string) error
	ApplyFilters(ctx context.Context, filters *domain.Filters) error
	Refresh(ctx context.Context) error
	OpenCard(action string) error
	Resize()
	Unmount()
	State() domain.ViewState
}

// DashboardResult is a normalised snapshot together with its charts.
type DashboardResult struct {
	Filters  domain.Filters         `json:"filters"`
	Snapshot *domain.Snapshot       `json:"snapshot"`
	Charts   domain.DashboardCharts `json:"charts"`
	TopList  string                 `json:"top_performers_html"`
}

// DashboardService exposes dashboard operations to primary adapters.
type DashboardService interface {
	Dashboard(ctx context.Context, filters domain.Filters) (*DashboardResult, error)
	Summary(ctx context.Context) (*domain.Summary, error)
	Periods(ctx context.Context) ([]domain.Option, error)
	Entities(ctx context.Context, scope domain.Scope) ([]domain.Option, error)
	Navigate(action string, filters domain.Filters) (domain.NavigationRequest, error)
	NewView(host Host) DashboardView
}
