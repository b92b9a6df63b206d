package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "medverse-cli"
)

// getKeyringKey returns a unique key for storing tokens per portal
func getKeyringKey(portalURL string) string {
	return fmt.Sprintf("token-%s", portalURL)
}

// SaveToken persists the session token securely in the OS keychain/credential manager
func SaveToken(portalURL, token string) error {
	key := getKeyringKey(portalURL)
	if err := keyring.Set(service, key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the session token from the OS keychain/credential manager
func LoadToken(portalURL string) (string, error) {
	key := getKeyringKey(portalURL)
	token, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("not authenticated. Please run 'medverse login' first")
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the session token from the OS keychain/credential manager
func DeleteToken(portalURL string) error {
	key := getKeyringKey(portalURL)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
