package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/lorrc/performance-dashboard/internal/adapters/primary/http"
	mw "github.com/lorrc/performance-dashboard/internal/adapters/primary/http/middleware"
	"github.com/lorrc/performance-dashboard/internal/adapters/primary/websocket"
	"github.com/lorrc/performance-dashboard/internal/auth"
	"github.com/lorrc/performance-dashboard/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	// 2. Initialize Structured Logger
	logger := newLogger(cfg, os.Stdout)
	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"lookup_backend", cfg.Dashboard.LookupBackend,
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Secondary adapters and the dashboard service
	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.Issuer)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 5. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer rateLimiter.Close()
	}

	// 6. Handlers (Primary Adapters)
	checkers := map[string]httpAdapter.HealthChecker{"upstream": d.upstream}
	if d.pool != nil {
		checkers["database"] = d.pool
	}

	errorHandler := httpAdapter.NewErrorHandler(logger)
	handler := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Dashboard: httpAdapter.NewDashboardHandler(d.service, errorHandler, logger),
		WebSocket: httpAdapter.NewWebSocketHandler(hub, d.service, httpAdapter.WebSocketConfig{
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			IsDevelopment:   cfg.IsDevelopment(),
			Client: websocket.ClientConfig{
				PingInterval: cfg.WebSocket.PingInterval,
				PongWait:     cfg.WebSocket.PongWait,
				MessageRPS:   cfg.RateLimit.MessageRPS,
				MessageBurst: cfg.RateLimit.MessageBurst,
			},
		}, logger),
		Health:       httpAdapter.NewHealthHandler(cfg.App.Version, checkers),
		TokenManager: tokenManager,
		RateLimiter:  rateLimiter,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Logger:       logger,
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server shutdown complete", "open_views", hub.ClientCount())
	return nil
}
