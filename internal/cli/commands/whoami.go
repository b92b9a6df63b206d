package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/medverse/portal/internal/cli/auth"
	"github.com/medverse/portal/internal/cli/userconfig"
	"github.com/medverse/portal/internal/session"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami()
		},
	}
}

func runWhoami() error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}
	portalURL := cfg.ResolvedPortalURL()

	token, err := auth.Default.LoadToken(portalURL)
	if err != nil {
		return err
	}

	fmt.Printf("Portal: %s\n", portalURL)
	if cfg.Email != "" {
		fmt.Printf("Email:  %s\n", cfg.Email)
	}
	if cfg.ActiveRole != "" {
		fmt.Printf("Role:   %s\n", cfg.ActiveRole)
	}
	if len(cfg.Roles) > 1 {
		fmt.Printf("Roles:  %s\n", strings.Join(cfg.Roles, ", "))
	}

	if expiry, ok := session.TokenExpiry(token); ok {
		if time.Now().After(expiry) {
			fmt.Printf("Token:  expired %s\n", expiry.Format(time.RFC1123))
		} else {
			fmt.Printf("Token:  valid until %s\n", expiry.Format(time.RFC1123))
		}
	}

	return nil
}
