package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "medverse"
	configFileName = "config.json"
)

// DefaultPortalURL is where the CLI looks for the backend when nothing is
// configured.
const DefaultPortalURL = "http://localhost:5000"

// UserConfig is the CLI's local state, stored in ~/.config/medverse/config.json.
// The token itself never lands here; it lives in the OS keyring.
type UserConfig struct {
	PortalURL  string   `json:"portal_url"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	ActiveRole string   `json:"active_role,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// ResolvedPortalURL resolves the backend URL: MEDVERSE_URL env var, then the stored
// config, then the default.
func (c *UserConfig) ResolvedPortalURL() string {
	if url := os.Getenv("MEDVERSE_URL"); url != "" {
		return url
	}
	if c.PortalURL != "" {
		return c.PortalURL
	}
	return DefaultPortalURL
}

// SetActiveRole updates the active role and saves the config.
func SetActiveRole(role string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.ActiveRole = role
	return Save(cfg)
}

// ClearIdentity drops the logged-in identity (email, roles, active role)
// while keeping the portal URL.
func ClearIdentity() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.Email = ""
	cfg.Roles = nil
	cfg.ActiveRole = ""
	return Save(cfg)
}
