package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context())
		},
	}
}

func runLogout(ctx context.Context, opts ...RunOption) error {
	return run(ctx, opts, func(rc *runConfig) error {
		wasLoggedIn := rc.env.Session.State().Authenticated()

		if err := rc.env.Session.Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}

		if wasLoggedIn {
			fmt.Fprintln(rc.out, "✓ Logged out")
		} else {
			fmt.Fprintln(rc.out, "Not logged in.")
		}
		return nil
	})
}
