package cli

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"github.com/lorrc/performance-dashboard/internal/config"
	"github.com/lorrc/performance-dashboard/migrations"
)

func newMigrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Run lookup table migrations",
		Long: `Run the migrations for the PostgreSQL lookup tables.

Without arguments, runs all pending migrations (up).

Examples:
  perfdash migrate              # Run all pending migrations
  perfdash migrate down         # Roll back every migration
  perfdash migrate down -n 1    # Roll back the last migration
  perfdash migrate version      # Print the current version`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required for migrations")
			}

			m, err := newMigrator(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer m.Close()

			out := cmd.OutOrStdout()
			switch direction {
			case "up":
				err = runSteps(m, steps, m.Up)
			case "down":
				err = runSteps(m, -steps, m.Down)
			case "version":
				version, dirty, verr := m.Version()
				if errors.Is(verr, migrate.ErrNilVersion) {
					fmt.Fprintln(out, "No migrations applied")
					return nil
				}
				if verr != nil {
					return verr
				}
				fmt.Fprintf(out, "Current version: %d (dirty: %t)\n", version, dirty)
				return nil
			default:
				return fmt.Errorf("unknown direction %q, expected up, down or version", direction)
			}

			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Fprintln(out, "Already at target version")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(out, "Migrations %s complete\n", direction)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "number of migrations to apply, 0 for all")
	return cmd
}

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return m, nil
}

func runSteps(m *migrate.Migrate, n int, all func() error) error {
	if n == 0 {
		return all()
	}
	return m.Steps(n)
}
