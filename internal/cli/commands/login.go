package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/medverse/portal/internal/cli/auth"
	"github.com/medverse/portal/internal/cli/userconfig"
	"github.com/medverse/portal/internal/models"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the MedVerse portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set MEDVERSE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MEDVERSE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("MEDVERSE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("MEDVERSE_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or MEDVERSE_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or MEDVERSE_PASSWORD env var)")
		}
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	portalURL := cfg.ResolvedPortalURL()

	fmt.Printf("Logging in to %s...\n", portalURL)

	token, user, err := client.Login(context.Background(), "", email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := auth.Default.SaveToken(portalURL, token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	// Remember who we are so whoami and switch-role work offline. The
	// support account is pinned to admin no matter what came back.
	roles := user.EffectiveRoles()
	activeRole := roles[0]
	if user.Email == models.SupportEmail {
		activeRole = models.RoleAdmin
	}

	cfg.PortalURL = portalURL
	cfg.Email = user.Email
	cfg.Roles = roles
	cfg.ActiveRole = activeRole
	if err := userconfig.Save(cfg); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.FullName(), user.Email)
	fmt.Printf("  Role: %s\n", activeRole)
	if len(roles) > 1 {
		fmt.Printf("  Available roles: %s\n", strings.Join(roles, ", "))
	}

	return nil
}
