package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medverse/portal/internal/models"
	"github.com/medverse/portal/internal/routes"
)

// Provider is the single source of truth for visitor sessions. It is
// constructed once at gateway start and initializes every session it hands
// out from the persistent store, correcting the active-role invariant as it
// goes. It performs no network calls: callers obtain credentials from the
// backend and hand them in.
type Provider struct {
	store *Store
	table *routes.Table
	log   zerolog.Logger
}

// NewProvider creates a session provider over the store and route table.
func NewProvider(store *Store, table *routes.Table, log zerolog.Logger) *Provider {
	return &Provider{store: store, table: table, log: log}
}

// Store exposes the underlying session store for flag access.
func (p *Provider) Store() *Store {
	return p.store
}

// Load reconstructs the visitor's session. Invariant enforced on every load:
// the active role must be one of the user's roles; on mismatch it is reset to
// the first role and the correction is persisted.
func (p *Provider) Load(ctx context.Context, scope string) *Session {
	sess := p.store.Read(ctx, scope)

	if sess.User != nil {
		roles := sess.User.EffectiveRoles()
		if sess.ActiveRole == "" || !sess.User.HasRole(sess.ActiveRole) {
			corrected := roles[0]
			if sess.ActiveRole != "" {
				p.log.Debug().
					Str("stored_role", sess.ActiveRole).
					Str("corrected_role", corrected).
					Msg("Active role not among user roles, correcting")
			}
			sess.ActiveRole = corrected
			if err := p.store.SetActiveRole(ctx, scope, corrected); err != nil {
				p.log.Warn().Err(err).Msg("Failed to persist active role correction")
			}
		}
	}

	return sess
}

// Login establishes a session from backend-issued credentials. The active
// role becomes the first of the user's roles.
func (p *Provider) Login(ctx context.Context, scope string, user *models.User, token string, rememberMe bool) (*Session, error) {
	if user == nil {
		return nil, fmt.Errorf("login requires a user")
	}
	if token == "" {
		return nil, fmt.Errorf("login requires a token")
	}

	sess := &Session{
		Token:      token,
		User:       user,
		ActiveRole: user.EffectiveRoles()[0],
		RememberMe: rememberMe,
	}
	if err := p.store.Write(ctx, scope, sess, rememberMe); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	p.log.Info().
		Str("email", user.Email).
		Str("active_role", sess.ActiveRole).
		Bool("remember_me", rememberMe).
		Msg("Session established")

	return sess, nil
}

// Logout clears the session from both stores and returns the login path the
// caller must navigate to. This is the only operation that demands a
// navigation of its own; every other redirect belongs to the guards.
func (p *Provider) Logout(ctx context.Context, scope string) string {
	p.store.Clear(ctx, scope)
	return p.table.Login
}

// SwitchRole activates another of the user's roles and returns the dashboard
// path for it. A role the user does not hold is a no-op: no state change, no
// navigation, switched=false.
func (p *Provider) SwitchRole(ctx context.Context, scope, role string) (path string, switched bool, err error) {
	sess := p.Load(ctx, scope)
	if sess.User == nil || !sess.User.HasRole(role) {
		return "", false, nil
	}
	if err := p.store.SetActiveRole(ctx, scope, role); err != nil {
		return "", false, fmt.Errorf("failed to persist role switch: %w", err)
	}
	return p.table.DashboardFor(role), true, nil
}

// UpdateToken replaces the stored token in place, keeping the session in
// whichever store currently holds it. Used after signup confirmation.
func (p *Provider) UpdateToken(ctx context.Context, scope, token string) error {
	sess := p.store.Read(ctx, scope)
	sess.Token = token
	return p.store.Write(ctx, scope, sess, sess.RememberMe)
}

// UpdateUser replaces the stored user in place. Used after profile edits.
func (p *Provider) UpdateUser(ctx context.Context, scope string, user *models.User) error {
	sess := p.store.Read(ctx, scope)
	sess.User = user
	return p.store.Write(ctx, scope, sess, sess.RememberMe)
}
