package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lorrc/performance-dashboard/internal/auth"
	"github.com/lorrc/performance-dashboard/internal/config"
)

func newTokenCmd() *cobra.Command {
	var userID, login string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the dashboard API",
		Long: `Issue a signed access token for a backend user. Pass it as a Bearer
header to the REST endpoints or as ?token= when opening /api/v1/ws.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is required")
			}

			tm := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.Issuer)
			token, err := tm.GenerateToken(userID, login)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "backend user id (required)")
	cmd.Flags().StringVar(&login, "login", "", "login name stamped into the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
