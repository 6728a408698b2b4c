package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the perfdash command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "perfdash",
		Short: "Performance dashboard view server",
		Long: `perfdash serves the KPI and PIAP performance dashboard.

It loads dashboard snapshots from the metrics backend over JSON-RPC, builds
the chart configurations and drives browser views over WebSocket.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
