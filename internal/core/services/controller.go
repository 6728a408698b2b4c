package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// DashboardController drives one dashboard view on a host page: it loads
// snapshots, renders them, keeps the filter selection and handles the view
// lifecycle.
type DashboardController struct {
	id       string
	host     ports.Host
	loader   *DataLoader
	renderer *ChartRenderer
	filters  *FilterController
	life     *Lifecycle
	opts     Options
	logger   *slog.Logger

	mu       sync.Mutex
	snapshot *domain.Snapshot
}

var _ ports.DashboardView = (*DashboardController)(nil)

// NewDashboardController wires a controller for host.
func NewDashboardController(
	host ports.Host,
	source ports.MetricsSource,
	lookup ports.RecordLookup,
	table *domain.NavigationTable,
	opts Options,
	logger *slog.Logger,
) *DashboardController {
	opts = opts.withDefaults()
	id := uuid.NewString()
	logger = logger.With("view_id", id)

	return &DashboardController{
		id:       id,
		host:     host,
		loader:   NewDataLoader(source, opts, logger),
		renderer: NewChartRenderer(host, host, opts, logger),
		filters:  NewFilterController(lookup, table, opts, logger),
		life:     NewLifecycle(),
		opts:     opts,
		logger:   logger,
	}
}

// ID identifies the view in logs and host events.
func (c *DashboardController) ID() string {
	return c.id
}

// State returns the lifecycle phase.
func (c *DashboardController) State() domain.ViewState {
	return c.life.State()
}

// Snapshot returns the snapshot currently on screen.
func (c *DashboardController) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Filters returns the current selection.
func (c *DashboardController) Filters() domain.Filters {
	return c.filters.Current()
}

// LiveCharts is the number of charts bound on the host.
func (c *DashboardController) LiveCharts() int {
	return c.renderer.LiveCount()
}

// Mount initialises the view once. Fetching the snapshot, loading period
// options and populating the entity selector run concurrently. A second
// Mount while mounted is ignored.
func (c *DashboardController) Mount(ctx context.Context, msg domain.MountMessage) error {
	gen, ok := c.life.Begin()
	if !ok {
		c.logger.DebugContext(ctx, "mount ignored, view already mounted")
		return nil
	}
	c.host.PublishState(domain.StatePayload{State: domain.StateInitializing})

	var request *domain.Filters
	if msg.Filters != nil {
		if err := c.filters.Set(*msg.Filters); err != nil {
			c.logger.WarnContext(ctx, "initial filters rejected, using defaults", "error", err)
		} else {
			current := c.filters.Current()
			request = &current
		}
	}
	scope := c.filters.Current().Scope

	var (
		snap      *domain.Snapshot
		periods   []domain.Option
		selected  string
		entities  []domain.Option
		coalesced bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.loader.Load(gctx, request)
		if errors.Is(err, apperrors.ErrLoadInFlight) {
			coalesced = true
			return nil
		}
		snap = s
		return gctx.Err()
	})
	g.Go(func() error {
		periods, selected = c.loader.Periods(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		entities = c.filters.EntityOptions(gctx, scope)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		c.Unmount()
		return err
	}

	if request == nil && selected != "" {
		c.filters.SelectPeriod(selected)
	}

	if !coalesced {
		snap = c.renderer.Prepare(ctx, snap)
	}

	mounted := c.life.Do(gen, func() {
		if c.host.Has(domain.ControlPeriod) {
			c.host.SetOptions(domain.ControlPeriod, periods)
		}
		if c.host.Has(domain.ControlEntity) {
			c.host.SetOptions(domain.ControlEntity, entities)
		}
		if snap != nil {
			c.show(snap)
		}
	})
	if !mounted || !c.life.Ready(gen) {
		return apperrors.ErrViewNotMounted
	}

	// An Unmount, possibly followed by a new Mount, may have slipped in
	// since Ready.
	if !c.life.Current(gen) {
		return apperrors.ErrViewNotMounted
	}
	filters := c.filters.Current()
	c.host.PublishState(domain.StatePayload{
		State:       domain.StateReady,
		Placeholder: snap != nil && snap.Placeholder,
		Filters:     &filters,
	})

	if c.life.StartTicker(gen, c.opts.AutoRefresh, func(ctx context.Context) { c.refreshSummary(ctx, gen) }) {
		c.logger.DebugContext(ctx, "auto refresh started", "interval", c.opts.AutoRefresh)
	}
	return nil
}

// show must run inside life.Do.
func (c *DashboardController) show(snap *domain.Snapshot) {
	c.renderer.Render(snap)
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}

// ApplyFilters replaces the selection when filters is non-nil and reloads
// the dashboard with it. A call while a fetch is in flight is a no-op and
// leaves the selection untouched.
func (c *DashboardController) ApplyFilters(ctx context.Context, filters *domain.Filters) error {
	if c.loader.Busy() {
		c.logger.DebugContext(ctx, "apply coalesced with in-flight fetch")
		return nil
	}
	if filters != nil {
		if err := c.filters.Set(*filters); err != nil {
			return err
		}
	}
	return c.Refresh(ctx)
}

// Refresh reloads the dashboard with the current selection.
func (c *DashboardController) Refresh(ctx context.Context) error {
	gen, live := c.life.Generation()
	if !live {
		return apperrors.ErrViewNotMounted
	}

	current := c.filters.Current()
	snap, err := c.loader.Load(ctx, &current)
	if errors.Is(err, apperrors.ErrLoadInFlight) {
		c.logger.DebugContext(ctx, "refresh coalesced with in-flight fetch")
		return nil
	}
	if err != nil {
		return err
	}

	snap = c.renderer.Prepare(ctx, snap)
	if !c.life.Do(gen, func() { c.show(snap) }) {
		c.logger.DebugContext(ctx, "dropping snapshot for unmounted view")
	}
	return nil
}

// refreshSummary updates the counters from the summary endpoint. Failures
// keep the counters on screen.
func (c *DashboardController) refreshSummary(ctx context.Context, gen uint64) {
	summary, err := c.loader.LoadSummary(ctx)
	if errors.Is(err, apperrors.ErrLoadInFlight) {
		return
	}
	if err != nil {
		c.logger.WarnContext(ctx, "summary refresh failed", "error", err)
		return
	}

	c.life.Do(gen, func() {
		c.renderer.RenderSummary(*summary)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.snapshot != nil {
			next := *c.snapshot
			next.Summary = *summary
			c.snapshot = &next
		}
	})
}

// ChangeFilter records a change of one control. A scope change repopulates
// the entity selector.
func (c *DashboardController) ChangeFilter(ctx context.Context, control, value string) error {
	gen, live := c.life.Generation()
	if !live {
		return apperrors.ErrViewNotMounted
	}

	scopeChanged, err := c.filters.SetControl(control, value)
	if err != nil {
		return err
	}
	if !scopeChanged {
		return nil
	}

	options := c.filters.EntityOptions(ctx, domain.Scope(value))
	c.life.Do(gen, func() {
		if c.host.Has(domain.ControlEntity) {
			c.host.SetOptions(domain.ControlEntity, options)
		}
	})
	return nil
}

// OpenCard asks the host to open the destination behind a metric card.
func (c *DashboardController) OpenCard(action string) error {
	gen, live := c.life.Generation()
	if !live {
		return apperrors.ErrViewNotMounted
	}

	req, err := c.filters.Navigate(action)
	if err != nil {
		return err
	}
	c.life.Do(gen, func() { c.host.Navigate(req) })
	return nil
}

// Resize re-lays out the resizable charts once resize events settle.
func (c *DashboardController) Resize() {
	gen, live := c.life.Generation()
	if !live {
		return
	}
	c.life.Debounce(c.opts.ResizeDebounce, func() {
		c.life.Do(gen, c.renderer.Resize)
	})
}

// Unmount destroys every chart and stops the view's timers. It is safe to
// call more than once.
func (c *DashboardController) Unmount() {
	if !c.life.End(c.renderer.DestroyAll) {
		return
	}

	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()

	c.host.PublishState(domain.StatePayload{State: domain.StateUnmounted})
	c.logger.Debug("view unmounted")
}
