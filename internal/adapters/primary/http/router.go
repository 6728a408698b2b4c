package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/performance-dashboard/internal/adapters/primary/http/middleware"
	"github.com/lorrc/performance-dashboard/internal/auth"
)

// RouterConfig collects the handlers and middleware the API is built from.
// RateLimiter may be nil.
type RouterConfig struct {
	Dashboard    *DashboardHandler
	WebSocket    *WebSocketHandler
	Health       *HealthHandler
	TokenManager *auth.TokenManager
	RateLimiter  *mw.RateLimiter
	CORSOrigins  []string
	Logger       *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
			ExposedHeaders:   []string{mw.RequestIDHeader, "X-Dashboard-Placeholder"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard health check paths)
	r.Get("/health", cfg.Health.HandleHealth)
	r.Get("/health/live", cfg.Health.HandleLiveness)
	r.Get("/health/ready", cfg.Health.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.JWTMiddleware(cfg.TokenManager))

		r.Get("/ws", cfg.WebSocket.ServeHTTP)
		r.Route("/dashboard", cfg.Dashboard.RegisterRoutes)
	})

	return r
}
