package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/performance-dashboard/internal/adapters/secondary/postgres"
	"github.com/lorrc/performance-dashboard/internal/adapters/secondary/rpc"
	"github.com/lorrc/performance-dashboard/internal/config"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
	"github.com/lorrc/performance-dashboard/internal/core/services"
	"github.com/lorrc/performance-dashboard/internal/infrastructure/logging"
)

// deps are the secondary adapters and core service shared by the commands.
type deps struct {
	upstream *rpc.Client
	pool     *pgxpool.Pool // nil unless the postgres lookup backend is used
	service  *services.DashboardService
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}
	return logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      out,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
}

func serviceOptions(cfg *config.Config) services.Options {
	return services.Options{
		RequestTimeout:  cfg.Upstream.RequestTimeout,
		TopKPIs:         cfg.Dashboard.TopKPIs,
		AutoRefresh:     cfg.Dashboard.AutoRefresh,
		ResizeDebounce:  cfg.Dashboard.ResizeDebounce,
		LibraryRetries:  cfg.Dashboard.LibraryRetries,
		LibraryInterval: cfg.Dashboard.LibraryInterval,
	}
}

// buildDeps connects the metrics backend, the lookup backend and the
// navigation table, then wires the dashboard service on top of them.
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	upstream, err := rpc.NewClient(rpc.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		SessionCookie: cfg.Upstream.SessionCookie,
		Timeout:       cfg.Upstream.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	table, err := config.LoadNavigationTable(cfg.Dashboard.NavigationPath)
	if err != nil {
		return nil, err
	}

	d := &deps{upstream: upstream}

	var lookup ports.RecordLookup = upstream
	if cfg.Dashboard.LookupBackend == config.LookupPostgres {
		d.pool, err = postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established")
		lookup = postgres.NewRecordRepository(d.pool)
	}

	d.service = services.NewDashboardService(upstream, lookup, table, serviceOptions(cfg), logger)
	return d, nil
}
