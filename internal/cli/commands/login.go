package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Tanami",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set TANAMI_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TANAMI_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, email, password string, opts ...RunOption) error {
	// Check for environment variables (useful for scripts)
	if email == "" {
		email = os.Getenv("TANAMI_EMAIL")
	}
	if password == "" {
		password = os.Getenv("TANAMI_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or TANAMI_EMAIL env var)")
	}

	return run(ctx, opts, func(rc *runConfig) error {
		if password == "" {
			var err error
			if password, err = rc.passwordPrompt(); err != nil {
				return err
			}
		}

		fmt.Fprintf(rc.out, "Logging in to %s...\n", rc.env.Client.BaseURL())

		if err := rc.env.Session.Login(ctx, email, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		user := rc.env.Session.State().User
		fmt.Fprintln(rc.out, "✓ Login successful!")
		fmt.Fprintf(rc.out, "  User: %s\n", user.Email)
		if user.Role != "" {
			fmt.Fprintf(rc.out, "  Role: %s\n", user.Role)
		}
		return nil
	})
}
