package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medverse/portal/internal/cli/auth"
	"github.com/medverse/portal/internal/cli/userconfig"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored authentication token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}
	portalURL := cfg.ResolvedPortalURL()

	if err := auth.Default.DeleteToken(portalURL); err != nil {
		return fmt.Errorf("failed to delete authentication token: %w", err)
	}

	if err := userconfig.ClearIdentity(); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	fmt.Println("✓ Logged out")
	return nil
}
