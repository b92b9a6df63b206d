// Package session owns the portal's only state: the per-visitor Session
// triple (token, user, activeRole), mirrored into two backing stores so it
// survives reloads and gateway restarts.
package session

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/medverse/portal/internal/models"
)

// Storage keys. These match the keys the portal has always used, including
// the legacy bare "token" key that older clients wrote.
const (
	KeyToken       = "authToken"
	KeyUser        = "authUser"
	KeyActiveRole  = "activeRole"
	KeySeen        = "authSeen"
	KeyExpired     = "authExpired"
	KeyLegacyToken = "token"
)

// Session is the authenticated context for one visitor.
type Session struct {
	Token      string
	User       *models.User
	ActiveRole string
	RememberMe bool // true when the token lives in the durable store
}

// LoggedIn reports whether the visitor holds a token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// Backend is a scoped key-value store. Implementations must tolerate reads
// and deletes of absent keys.
type Backend interface {
	Get(ctx context.Context, scope, key string) (value string, ok bool, err error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope string, keys ...string) error
}

// UserParseState distinguishes absent, malformed and valid stored users.
type UserParseState int

const (
	UserAbsent UserParseState = iota
	UserMalformed
	UserValid
)

// UserParse is the explicit result of decoding a stored user value.
type UserParse struct {
	State UserParseState
	User  *models.User
}

// ParseUser decodes the serialized user value. Malformed JSON is reported,
// never propagated: the store fails open to "logged out".
func ParseUser(raw string) UserParse {
	if raw == "" {
		return UserParse{State: UserAbsent}
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return UserParse{State: UserMalformed}
	}
	return UserParse{State: UserValid, User: &user}
}

// Store mirrors Session fields across a durable store (survives restarts,
// backs "remember me") and an ephemeral store (this session only). The
// durable store wins when both hold a value.
type Store struct {
	durable   Backend
	ephemeral Backend
	log       zerolog.Logger
}

// NewStore creates a session store over the two backends.
func NewStore(durable, ephemeral Backend, log zerolog.Logger) *Store {
	return &Store{durable: durable, ephemeral: ephemeral, log: log}
}

// get reads a key durable-first. Backend failures are logged and treated as
// absent so a broken store degrades to "logged out" rather than an error page.
func (s *Store) get(ctx context.Context, scope, key string) (string, bool) {
	if value, ok, err := s.durable.Get(ctx, scope, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Durable store read failed")
	} else if ok {
		return value, true
	}

	if value, ok, err := s.ephemeral.Get(ctx, scope, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Ephemeral store read failed")
	} else if ok {
		return value, true
	}

	return "", false
}

// Read reconstructs the best-effort Session for a visitor.
func (s *Store) Read(ctx context.Context, scope string) *Session {
	sess := &Session{}

	// Token priority: durable authToken, ephemeral authToken, legacy key.
	if token, ok, err := s.durable.Get(ctx, scope, KeyToken); err == nil && ok {
		sess.Token = token
		sess.RememberMe = true
	} else if token, ok, err := s.ephemeral.Get(ctx, scope, KeyToken); err == nil && ok {
		sess.Token = token
	} else if token, ok, err := s.durable.Get(ctx, scope, KeyLegacyToken); err == nil && ok {
		sess.Token = token
		sess.RememberMe = true
	}

	if raw, ok := s.get(ctx, scope, KeyUser); ok {
		parsed := ParseUser(raw)
		if parsed.State == UserMalformed {
			s.log.Warn().Str("scope", scope).Msg("Stored user is malformed, treating as absent")
		}
		sess.User = parsed.User
	}

	if role, ok := s.get(ctx, scope, KeyActiveRole); ok {
		sess.ActiveRole = role
	}

	return sess
}

// Write persists the session. Token and user land in the durable store when
// rememberMe is set, otherwise in the ephemeral store; the other store is
// scrubbed so a previous login cannot shadow this one. The active role is
// always written durably: the role preference outlives session-only logins.
func (s *Store) Write(ctx context.Context, scope string, sess *Session, rememberMe bool) error {
	target, other := s.ephemeral, s.durable
	if rememberMe {
		target, other = s.durable, s.ephemeral
	}

	if err := target.Set(ctx, scope, KeyToken, sess.Token); err != nil {
		return err
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	if err := target.Set(ctx, scope, KeyUser, string(userJSON)); err != nil {
		return err
	}

	if err := other.Delete(ctx, scope, KeyToken, KeyUser); err != nil {
		s.log.Warn().Err(err).Msg("Failed to scrub stale session copy")
	}

	if sess.ActiveRole != "" {
		if err := s.durable.Set(ctx, scope, KeyActiveRole, sess.ActiveRole); err != nil {
			return err
		}
	}

	return nil
}

// SetActiveRole persists just the role preference (always durable).
func (s *Store) SetActiveRole(ctx context.Context, scope, role string) error {
	return s.durable.Set(ctx, scope, KeyActiveRole, role)
}

// Clear removes token, user and active role from both stores. Absent keys
// are not an error.
func (s *Store) Clear(ctx context.Context, scope string) {
	keys := []string{KeyToken, KeyUser, KeyActiveRole, KeyLegacyToken}
	if err := s.durable.Delete(ctx, scope, keys...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear durable session")
	}
	if err := s.ephemeral.Delete(ctx, scope, keys...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear ephemeral session")
	}
}

// Seen reports whether the visitor has already been through the auth
// selection gate.
func (s *Store) Seen(ctx context.Context, scope string) bool {
	_, ok, err := s.durable.Get(ctx, scope, KeySeen)
	return err == nil && ok
}

// MarkSeen records that the visitor has seen the auth selection gate.
func (s *Store) MarkSeen(ctx context.Context, scope string) error {
	return s.durable.Set(ctx, scope, KeySeen, "1")
}

// MarkExpired sets the one-shot session-expired flag raised on a 401.
func (s *Store) MarkExpired(ctx context.Context, scope string) error {
	return s.durable.Set(ctx, scope, KeyExpired, "1")
}

// ConsumeExpired reads and clears the session-expired flag.
func (s *Store) ConsumeExpired(ctx context.Context, scope string) bool {
	_, ok, err := s.durable.Get(ctx, scope, KeyExpired)
	if err != nil || !ok {
		return false
	}
	if err := s.durable.Delete(ctx, scope, KeyExpired); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear expired flag")
	}
	return true
}
