package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), format)
		},
	}

	addOutputFlag(cmd, &format)

	return cmd
}

// identity is what whoami reports. Token details come from the JWT payload
// and are not verified; only the backend can do that.
type identity struct {
	Status    string     `json:"status"`
	ID        string     `json:"id,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	Subject   string     `json:"token_subject,omitempty"`
	ExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	Expired   bool       `json:"token_expired,omitempty"`
}

func runWhoami(ctx context.Context, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return run(ctx, opts, func(rc *runConfig) error {
		state := rc.env.Session.State()

		id := identity{Status: string(state.Status)}
		if state.User != nil {
			id.ID = state.User.ID
			id.Email = state.User.Email
			id.Role = state.User.Role
		}

		token, err := rc.env.Client.Token()
		if err != nil {
			return err
		}
		if token != "" {
			inspectToken(token, &id)
		}

		if !state.Authenticated() && format == FormatTable {
			fmt.Fprintln(rc.out, "Not logged in.")
			fmt.Fprintln(rc.out, "\nLog in with: tanami login --email <email>")
			return nil
		}

		return render(rc.out, format, id, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "EMAIL\t%s\n", orDash(id.Email))
			fmt.Fprintf(tw, "ROLE\t%s\n", orDash(id.Role))
			fmt.Fprintf(tw, "ID\t%s\n", orDash(id.ID))
			if id.ExpiresAt != nil {
				expiry := id.ExpiresAt.Local().Format(time.RFC1123)
				if id.Expired {
					expiry += " (expired)"
				}
				fmt.Fprintf(tw, "TOKEN EXPIRES\t%s\n", expiry)
			}
		})
	})
}

// inspectToken reads the subject and expiry from a JWT without verifying
// its signature. Opaque tokens are left alone.
func inspectToken(token string, id *identity) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}

	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		id.ExpiresAt = &t
		id.Expired = time.Now().After(t)
	}
}
