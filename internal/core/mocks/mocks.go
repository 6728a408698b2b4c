package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockMetricsSource is a mock implementation of ports.MetricsSource
type MockMetricsSource struct {
	mock.Mock
}

func NewMockMetricsSource() *MockMetricsSource {
	return &MockMetricsSource{}
}

func (m *MockMetricsSource) FetchDashboard(ctx context.Context, filters *domain.Filters) (*domain.Snapshot, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockMetricsSource) FetchSummary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockMetricsSource) FetchPeriodOptions(ctx context.Context) ([]domain.PeriodOption, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodOption), args.Error(1)
}

func (m *MockMetricsSource) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRecordLookup is a mock implementation of ports.RecordLookup
type MockRecordLookup struct {
	mock.Mock
}

func NewMockRecordLookup() *MockRecordLookup {
	return &MockRecordLookup{}
}

func (m *MockRecordLookup) SearchActive(ctx context.Context, model, field string) ([]domain.Record, error) {
	args := m.Called(ctx, model, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{}
}

func (m *MockDashboardService) Dashboard(ctx context.Context, filters domain.Filters) (*ports.DashboardResult, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.DashboardResult), args.Error(1)
}

func (m *MockDashboardService) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockDashboardService) Periods(ctx context.Context) ([]domain.Option, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Option), args.Error(1)
}

func (m *MockDashboardService) Entities(ctx context.Context, scope domain.Scope) ([]domain.Option, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Option), args.Error(1)
}

func (m *MockDashboardService) Navigate(action string, filters domain.Filters) (domain.NavigationRequest, error) {
	args := m.Called(action, filters)
	return args.Get(0).(domain.NavigationRequest), args.Error(1)
}

func (m *MockDashboardService) NewView(host ports.Host) ports.DashboardView {
	args := m.Called(host)
	return args.Get(0).(ports.DashboardView)
}

// FakeHost records every call a view makes on its page.
type FakeHost struct {
	mu        sync.Mutex
	layout    domain.HostLayout
	ready     atomic.Bool
	events    []domain.Event
	live      map[string]domain.ChartInstance
	stateHook func(domain.StatePayload)
}

var _ ports.Host = (*FakeHost)(nil)

// NewFakeHost declares the given layout. The chart library starts loaded.
func NewFakeHost(layout domain.HostLayout) *FakeHost {
	h := &FakeHost{layout: layout, live: make(map[string]domain.ChartInstance)}
	h.ready.Store(true)
	return h
}

func (h *FakeHost) SetReady(ready bool) { h.ready.Store(ready) }

func (h *FakeHost) Ready() bool { return h.ready.Load() }

func (h *FakeHost) Has(element string) bool {
	return h.layout.Has(element)
}

func (h *FakeHost) record(t domain.EventType, payload any) {
	h.events = append(h.events, domain.Event{Type: t, Payload: payload})
}

func (h *FakeHost) MountChart(chart domain.ChartInstance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[chart.Canvas] = chart
	h.record(domain.EventChartMount, domain.ChartMountPayload{ChartID: chart.ID.String(), Canvas: chart.Canvas, Config: chart.Config})
}

func (h *FakeHost) DestroyChart(chart domain.ChartInstance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.live[chart.Canvas]; ok && cur.ID == chart.ID {
		delete(h.live, chart.Canvas)
	}
	h.record(domain.EventChartDestroy, domain.ChartRefPayload{ChartID: chart.ID.String(), Canvas: chart.Canvas})
}

func (h *FakeHost) ResizeChart(chart domain.ChartInstance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventChartResize, domain.ChartRefPayload{ChartID: chart.ID.String(), Canvas: chart.Canvas})
}

func (h *FakeHost) SetHTML(element, html string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventSetHTML, domain.ContentPayload{Element: element, Content: html})
}

func (h *FakeHost) SetText(element, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventSetText, domain.ContentPayload{Element: element, Content: text})
}

func (h *FakeHost) SetOptions(element string, options []domain.Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventSetOptions, domain.OptionsPayload{Element: element, Options: options})
}

func (h *FakeHost) SetProgress(element string, percent float64, band domain.Band) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventSetProgress, domain.ProgressPayload{Element: element, Percent: percent, Band: band})
}

func (h *FakeHost) Navigate(req domain.NavigationRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(domain.EventNavigate, req)
}

func (h *FakeHost) PublishState(state domain.StatePayload) {
	h.mu.Lock()
	h.record(domain.EventState, state)
	hook := h.stateHook
	h.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

// OnState registers fn to run after each published state, outside the
// host's lock.
func (h *FakeHost) OnState(fn func(domain.StatePayload)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateHook = fn
}

// Events returns a copy of everything recorded so far.
func (h *FakeHost) Events() []domain.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Event(nil), h.events...)
}

// EventsOf filters the recorded events by type.
func (h *FakeHost) EventsOf(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range h.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// LiveCharts returns the charts mounted and not yet destroyed, by canvas.
func (h *FakeHost) LiveCharts() map[string]domain.ChartInstance {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]domain.ChartInstance, len(h.live))
	for k, v := range h.live {
		out[k] = v
	}
	return out
}

// Reset forgets recorded events but keeps live charts.
func (h *FakeHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}
