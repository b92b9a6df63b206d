package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medverse/portal/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testSecret() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestDurableBackend_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	backend, err := NewDurable(newTestDB(t), nil)
	if err != nil {
		t.Fatalf("NewDurable failed: %v", err)
	}

	if _, ok, err := backend.Get(ctx, "v", KeyActiveRole); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}

	if err := backend.Set(ctx, "v", KeyActiveRole, "doctor"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := backend.Get(ctx, "v", KeyActiveRole)
	if err != nil || !ok {
		t.Fatalf("expected value, ok=%v err=%v", ok, err)
	}
	if value != "doctor" {
		t.Errorf("expected 'doctor', got %q", value)
	}

	// Upsert replaces in place.
	if err := backend.Set(ctx, "v", KeyActiveRole, "admin"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, _ = backend.Get(ctx, "v", KeyActiveRole)
	if value != "admin" {
		t.Errorf("expected 'admin' after upsert, got %q", value)
	}

	if err := backend.Delete(ctx, "v", KeyActiveRole, "never-stored"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := backend.Get(ctx, "v", KeyActiveRole); ok {
		t.Error("expected key gone after Delete")
	}
}

func TestDurableBackend_SealsCredentialKeys(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	backend, err := NewDurable(db, testSecret())
	if err != nil {
		t.Fatalf("NewDurable failed: %v", err)
	}

	if err := backend.Set(ctx, "v", KeyToken, "secret-token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The raw row must not contain the plaintext token.
	var entry models.SessionEntry
	if err := db.Where("scope = ? AND key = ?", "v", KeyToken).First(&entry).Error; err != nil {
		t.Fatalf("failed to read raw row: %v", err)
	}
	if !entry.Sealed {
		t.Error("expected token row to be sealed")
	}
	if entry.Value == "secret-token" {
		t.Error("expected sealed value, found plaintext")
	}

	// Round trip through the backend recovers the plaintext.
	value, ok, err := backend.Get(ctx, "v", KeyToken)
	if err != nil || !ok {
		t.Fatalf("expected token, ok=%v err=%v", ok, err)
	}
	if value != "secret-token" {
		t.Errorf("expected 'secret-token', got %q", value)
	}

	// Plain keys stay readable at rest.
	if err := backend.Set(ctx, "v", KeyActiveRole, "doctor"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	entry = models.SessionEntry{}
	if err := db.Where("scope = ? AND key = ?", "v", KeyActiveRole).First(&entry).Error; err != nil {
		t.Fatalf("failed to read raw row: %v", err)
	}
	if entry.Sealed || entry.Value != "doctor" {
		t.Errorf("expected plain activeRole row, got sealed=%v value=%q", entry.Sealed, entry.Value)
	}
}

func TestDurableBackend_UnsealFailureReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	backend, err := NewDurable(db, testSecret())
	if err != nil {
		t.Fatalf("NewDurable failed: %v", err)
	}

	// A sealed row written under a different secret cannot be opened.
	other, err := NewDurable(db, bytes.Repeat([]byte{0x99}, 32))
	if err != nil {
		t.Fatalf("NewDurable failed: %v", err)
	}
	if err := other.Set(ctx, "v", KeyToken, "secret-token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, err := backend.Get(ctx, "v", KeyToken); err != nil || ok {
		t.Errorf("expected unreadable token to read as absent, ok=%v err=%v", ok, err)
	}
}

func TestDurableBackend_RejectsShortSecret(t *testing.T) {
	if _, err := NewDurable(newTestDB(t), []byte("too-short")); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestDurableBackend_PruneExpired(t *testing.T) {
	ctx := context.Background()
	backend, err := NewDurable(newTestDB(t), testSecret())
	if err != nil {
		t.Fatalf("NewDurable failed: %v", err)
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	liveToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	backend.Set(ctx, "stale", KeyToken, expiredToken)
	backend.Set(ctx, "stale", KeyActiveRole, "patient")
	backend.Set(ctx, "live", KeyToken, liveToken)

	pruned, err := backend.PruneExpired(ctx, TokenExpired)
	if err != nil {
		t.Fatalf("PruneExpired failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 scope pruned, got %d", pruned)
	}

	if _, ok, _ := backend.Get(ctx, "stale", KeyToken); ok {
		t.Error("expected stale token pruned")
	}
	if _, ok, _ := backend.Get(ctx, "stale", KeyActiveRole); ok {
		t.Error("expected stale scope's role pruned with it")
	}
	if _, ok, _ := backend.Get(ctx, "live", KeyToken); !ok {
		t.Error("expected live token kept")
	}
}
