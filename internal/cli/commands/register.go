package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Tanami account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), email, password, role)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set TANAMI_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TANAMI_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Account role: petani or pembeli (will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, email, password, role string, opts ...RunOption) error {
	if email == "" {
		email = os.Getenv("TANAMI_EMAIL")
	}
	if password == "" {
		password = os.Getenv("TANAMI_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or TANAMI_EMAIL env var)")
	}
	if role != "" && !validRole(role) {
		return fmt.Errorf("unknown role %q (want petani or pembeli)", role)
	}

	return run(ctx, opts, func(rc *runConfig) error {
		var err error
		if role == "" {
			if role, err = rc.rolePrompt(); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = rc.passwordPrompt(); err != nil {
				return err
			}
		}

		if err := rc.env.Session.Register(ctx, email, password, role); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Fprintln(rc.out, "✓ Account created and logged in!")
		fmt.Fprintf(rc.out, "  User: %s\n", email)
		fmt.Fprintf(rc.out, "  Role: %s\n", role)
		return nil
	})
}
