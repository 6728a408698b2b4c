package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

// FilterController holds a view's filter selection and translates card
// clicks into navigation requests.
type FilterController struct {
	mu      sync.Mutex
	filters domain.Filters
	lookup  ports.RecordLookup
	table   *domain.NavigationTable
	timeout time.Duration
	logger  *slog.Logger
}

// NewFilterController starts from the default selection.
func NewFilterController(lookup ports.RecordLookup, table *domain.NavigationTable, opts Options, logger *slog.Logger) *FilterController {
	opts = opts.withDefaults()
	return &FilterController{
		filters: domain.DefaultFilters(),
		lookup:  lookup,
		table:   table,
		timeout: opts.RequestTimeout,
		logger:  logger.With("component", "filter_controller"),
	}
}

// Current returns the selection as it would be sent to the backend.
func (c *FilterController) Current() domain.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Set replaces the whole selection.
func (c *FilterController) Set(f domain.Filters) error {
	f = f.WithDefaults()
	if err := f.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
	return nil
}

// SetControl applies a change of one filter control. Changing the scope
// resets the entity to "all" and reports true.
func (c *FilterController) SetControl(control, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.filters
	scopeChanged := false

	switch control {
	case domain.ControlDataType:
		next.DataType = domain.DataType(value)
	case domain.ControlScope:
		scopeChanged = domain.Scope(value) != next.Scope
		next.Scope = domain.Scope(value)
		next.Entity = domain.AllValue
	case domain.ControlEntity:
		next.Entity = value
	case domain.ControlPerformance:
		next.Performance = value
	case domain.ControlPeriod:
		next.Period = value
	default:
		return false, fmt.Errorf("%w: unknown control %q", apperrors.ErrInvalidFilter, control)
	}

	next = next.WithDefaults()
	if err := next.Validate(); err != nil {
		return false, err
	}

	c.filters = next
	return scopeChanged, nil
}

// SelectPeriod sets the period without validation; an empty key means all.
func (c *FilterController) SelectPeriod(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Period = key
	c.filters = c.filters.WithDefaults()
}

// EntityOptions builds the entity selector for scope.
func (c *FilterController) EntityOptions(ctx context.Context, scope domain.Scope) []domain.Option {
	return loadEntityOptions(ctx, c.lookup, scope, c.timeout, c.logger)
}

// Navigate resolves a metric card click against the current selection.
func (c *FilterController) Navigate(action string) (domain.NavigationRequest, error) {
	return c.table.Resolve(action, c.Current())
}

func loadEntityOptions(ctx context.Context, lookup ports.RecordLookup, scope domain.Scope, timeout time.Duration, logger *slog.Logger) []domain.Option {
	model, ok := scope.Model()
	if !ok {
		return domain.EntityOptions(scope, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := lookup.SearchActive(ctx, model, "name")
	if err != nil {
		logger.WarnContext(ctx, "entity lookup failed", "scope", scope, "model", model, "error", err)
		records = nil
	}
	return domain.EntityOptions(scope, records)
}
