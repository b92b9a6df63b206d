package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/cli/auth"
	"github.com/medverse/portal/internal/cli/userconfig"
)

// keyringTokenSource feeds the backend client from the OS keyring. The scope
// argument is unused: the CLI is a single-user client.
type keyringTokenSource struct {
	store     auth.TokenStore
	portalURL string
}

func (k keyringTokenSource) Token(_ context.Context, _ string) (string, bool) {
	token, err := k.store.LoadToken(k.portalURL)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// keyringEvictor drops the stored token when the backend rejects it, so the
// next command asks for a fresh login instead of retrying a dead session.
type keyringEvictor struct {
	store     auth.TokenStore
	portalURL string
}

func (k keyringEvictor) Evict(_ context.Context, _ string) {
	_ = k.store.DeleteToken(k.portalURL)
	_ = userconfig.ClearIdentity()
	fmt.Fprintln(os.Stderr, "Session expired. Please run 'medverse login' again.")
}

// newClient builds a backend client wired to the keyring for the configured
// portal.
func newClient() (*backend.Client, *userconfig.UserConfig, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	portalURL := cfg.ResolvedPortalURL()
	client := backend.New(portalURL, zerolog.Nop(),
		backend.WithTokenSource(keyringTokenSource{store: auth.Default, portalURL: portalURL}),
		backend.WithSessionEvictor(keyringEvictor{store: auth.Default, portalURL: portalURL}),
	)
	return client, cfg, nil
}
