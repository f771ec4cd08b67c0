package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCheckCmd verifies gate connectivity: login, heartbeat, logout.
func newCheckCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity and credentials against the gate backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			info, outcome := app.settlement.Login(ctx)
			if !outcome.OK {
				return fmt.Errorf("login failed: %s", outcome.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", info.User)

			if outcome := app.settlement.Heartbeat(ctx); !outcome.OK {
				return fmt.Errorf("heartbeat failed: %s", outcome.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "heartbeat ok")

			if outcome := app.settlement.Logout(ctx); !outcome.OK {
				return fmt.Errorf("logout failed: %s", outcome.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
