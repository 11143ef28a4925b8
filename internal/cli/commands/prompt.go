package commands

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Roles accepted by the backend at registration
var Roles = []Role{
	{ID: "petani", Label: "Petani (farmer, can sell and publish)"},
	{ID: "pembeli", Label: "Pembeli (buyer)"},
}

// Role is a selectable account role
type Role struct {
	ID    string
	Label string
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassword prompts on the terminal without echoing input
func readPassword() (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or TANAMI_PASSWORD env var)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// selectRole shows an interactive prompt for the account role
func selectRole() (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("role is required in non-interactive mode (use --role petani or --role pembeli)")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an account role",
		Items:     Roles,
		Templates: templates,
		Size:      len(Roles),
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	return Roles[index].ID, nil
}

func validRole(role string) bool {
	for _, r := range Roles {
		if r.ID == role {
			return true
		}
	}
	return false
}
