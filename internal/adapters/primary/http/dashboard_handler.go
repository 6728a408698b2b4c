package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/performance-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

const maxActionLength = 128

// DashboardHandler serves the stateless dashboard endpoints.
type DashboardHandler struct {
	service      ports.DashboardService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service ports.DashboardService, errorHandler *ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "dashboard"),
	}
}

// RegisterRoutes sets up the routing for all dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/data", h.HandleData)
	r.Get("/summary", h.HandleSummary)
	r.Get("/periods", h.HandlePeriods)
	r.Get("/entities", h.HandleEntities)
	r.Post("/navigate", h.HandleNavigate)
}

// --- Request DTOs ---

// NavigateRequest is the body of a card click resolution.
type NavigateRequest struct {
	Action  string          `json:"action"`
	Filters *domain.Filters `json:"filters,omitempty"`
}

// --- Handlers ---

// HandleData returns the normalised snapshot for the query's filters with
// every chart configuration.
func (h *DashboardHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Dashboard(r.Context(), validation.ParseFilters(r))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if result.Snapshot != nil && result.Snapshot.Placeholder {
		w.Header().Set("X-Dashboard-Placeholder", "true")
	}
	WriteJSON(w, http.StatusOK, result)
}

// HandleSummary returns the headline counters.
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// HandlePeriods returns the period selector options.
func (h *DashboardHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Periods(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, options)
}

// HandleEntities returns the entity selector options for ?scope=.
func (h *DashboardHandler) HandleEntities(w http.ResponseWriter, r *http.Request) {
	scope := validation.ParseStringQueryParam(r, "scope")

	v := validation.NewValidator().Custom("scope", scope != nil, "This field is required")
	if HandleError(w, r, v.Err(), h.errorHandler) {
		return
	}

	options, err := h.service.Entities(r.Context(), domain.Scope(*scope))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, options)
}

// HandleNavigate resolves a metric card action under the given filters.
func (h *DashboardHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[NavigateRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	v := validation.NewValidator().
		Required("action", req.Action).
		MaxLength("action", req.Action, maxActionLength)
	if HandleError(w, r, v.Err(), h.errorHandler) {
		return
	}

	filters := domain.DefaultFilters()
	if req.Filters != nil {
		filters = *req.Filters
	}

	nav, err := h.service.Navigate(req.Action, filters)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.DebugContext(r.Context(), "card navigation resolved", "action", nav.Action)
	WriteJSON(w, http.StatusOK, nav)
}
