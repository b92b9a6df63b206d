package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medverse/portal/internal/models"
)

// sealedKeys lists the keys whose values carry credentials and are sealed
// at rest when a session secret is configured.
var sealedKeys = map[string]bool{
	KeyToken:       true,
	KeyUser:        true,
	KeyLegacyToken: true,
}

// DurableBackend stores session entries in SQLite so they survive gateway
// restarts. It is the portal's equivalent of the browser's durable storage.
type DurableBackend struct {
	db     *gorm.DB
	secret []byte // nil disables sealing
}

// NewDurable creates a durable backend. secret must be nil or 32 bytes.
func NewDurable(db *gorm.DB, secret []byte) (*DurableBackend, error) {
	if secret != nil && len(secret) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("session secret must be %d bytes, got %d", chacha20poly1305.KeySize, len(secret))
	}
	return &DurableBackend{db: db, secret: secret}, nil
}

// Get returns the stored value for scope+key. Values that fail to unseal are
// reported as absent: a corrupt row must read as "logged out", never crash.
func (b *DurableBackend) Get(ctx context.Context, scope, key string) (string, bool, error) {
	var entry models.SessionEntry
	err := b.db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	if !entry.Sealed {
		return entry.Value, true, nil
	}

	value, err := b.unseal(entry.Value)
	if err != nil {
		return "", false, nil
	}
	return value, true, nil
}

// Set upserts the value for scope+key, sealing credential keys.
func (b *DurableBackend) Set(ctx context.Context, scope, key, value string) error {
	sealed := false
	if b.secret != nil && sealedKeys[key] {
		sealedValue, err := b.seal(value)
		if err != nil {
			return fmt.Errorf("failed to seal session value: %w", err)
		}
		value = sealedValue
		sealed = true
	}

	entry := models.SessionEntry{
		Scope:  scope,
		Key:    key,
		Value:  value,
		Sealed: sealed,
	}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "sealed", "updated_at"}),
		}).
		Create(&entry).Error
}

// Delete removes the given keys for a scope. Missing keys are fine.
func (b *DurableBackend) Delete(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.db.WithContext(ctx).
		Where("scope = ? AND key IN ?", scope, keys).
		Delete(&models.SessionEntry{}).Error
}

// PruneExpired drops every scope whose stored token the predicate rejects
// (backend-issued tokens embed their expiry). Returns the number of scopes
// pruned.
func (b *DurableBackend) PruneExpired(ctx context.Context, expired func(token string) bool) (int, error) {
	var entries []models.SessionEntry
	err := b.db.WithContext(ctx).
		Where("key IN ?", []string{KeyToken, KeyLegacyToken}).
		Find(&entries).Error
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, entry := range entries {
		token := entry.Value
		if entry.Sealed {
			token, err = b.unseal(entry.Value)
			if err != nil {
				// Unreadable token: the scope can never authenticate with it.
				token = ""
			}
		}
		if token != "" && !expired(token) {
			continue
		}
		if err := b.Delete(ctx, entry.Scope, KeyToken, KeyUser, KeyActiveRole, KeyLegacyToken); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (b *DurableBackend) seal(value string) (string, error) {
	aead, err := chacha20poly1305.New(b.secret)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *DurableBackend) unseal(encoded string) (string, error) {
	if b.secret == nil {
		return "", fmt.Errorf("sealed value but no session secret configured")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSize {
		return "", fmt.Errorf("sealed value too short")
	}
	aead, err := chacha20poly1305.New(b.secret)
	if err != nil {
		return "", err
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSize], raw[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to unseal value: %w", err)
	}
	return string(plaintext), nil
}
