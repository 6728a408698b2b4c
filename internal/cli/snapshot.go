package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/lorrc/performance-dashboard/internal/config"
	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

func newSnapshotCmd() *cobra.Command {
	var (
		filters    domain.Filters
		dataType   string
		scope      string
		withCharts bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch one dashboard snapshot and print it as JSON",
		Long: `Fetch the dashboard for the given filters and print the normalised
snapshot. With --charts the built chart configurations are printed too.

An unreachable backend prints the placeholder snapshot, flagged with
"placeholder": true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			d, err := buildDeps(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			filters.DataType = domain.DataType(dataType)
			filters.Scope = domain.Scope(scope)

			result, err := d.service.Dashboard(cmd.Context(), filters)
			if err != nil {
				return err
			}

			if withCharts {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeJSON(cmd.OutOrStdout(), result.Snapshot)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dataType, "data-type", string(domain.DataTypeAll), "all, strategic or programme")
	f.StringVar(&scope, "scope", string(domain.ScopeOrganization), "organization, strategic_goal, strategic_objective, programme, directorate or division")
	f.StringVar(&filters.Entity, "entity", domain.AllValue, "entity id within the scope")
	f.StringVar(&filters.Performance, "performance", domain.AllValue, "excellent, good, fair, poor or all")
	f.StringVar(&filters.Period, "period", "", "period key, empty for all periods")
	f.BoolVar(&withCharts, "charts", false, "include chart configurations")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
