package commands

import (
	"fmt"
	"slices"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/medverse/portal/internal/cli/userconfig"
)

// NewSwitchRoleCmd creates the switch-role command
func NewSwitchRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch-role [role]",
		Short: "Switch the active role",
		Long:  "Switch the active role. With no argument, pick interactively from the roles on the account.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := ""
			if len(args) > 0 {
				role = args[0]
			}
			return runSwitchRole(role)
		},
	}
}

func runSwitchRole(role string) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	if len(cfg.Roles) == 0 {
		return fmt.Errorf("not authenticated. Please run 'medverse login' first")
	}

	if role == "" {
		prompt := promptui.Select{
			Label: "Select role",
			Items: cfg.Roles,
		}
		_, selected, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("role selection cancelled: %w", err)
		}
		role = selected
	}

	// Switching to a role the account does not hold is a no-op.
	if !slices.Contains(cfg.Roles, role) {
		fmt.Printf("Role %q is not available on this account, keeping %q\n", role, cfg.ActiveRole)
		return nil
	}

	if err := userconfig.SetActiveRole(role); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	fmt.Printf("✓ Active role is now %s\n", role)
	return nil
}
