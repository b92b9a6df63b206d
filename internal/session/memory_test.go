package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBackend_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(time.Hour)

	if _, ok, _ := b.Get(ctx, "v", "k"); ok {
		t.Error("expected no value before Set")
	}

	if err := b.Set(ctx, "v", "k", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := b.Get(ctx, "v", "k")
	if err != nil || !ok {
		t.Fatalf("expected value after Set, ok=%v err=%v", ok, err)
	}
	if value != "value" {
		t.Errorf("expected 'value', got %q", value)
	}

	// Scopes are isolated.
	if _, ok, _ := b.Get(ctx, "other", "k"); ok {
		t.Error("expected no value in another scope")
	}

	if err := b.Delete(ctx, "v", "k", "absent-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "v", "k"); ok {
		t.Error("expected no value after Delete")
	}
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(time.Hour)

	current := time.Now()
	b.now = func() time.Time { return current }

	b.Set(ctx, "v", "k", "value")

	// Before the TTL the value is there and each read slides the window.
	current = current.Add(50 * time.Minute)
	if _, ok, _ := b.Get(ctx, "v", "k"); !ok {
		t.Fatal("expected value before TTL")
	}

	// Another 50 minutes is fine because the previous read refreshed it.
	current = current.Add(50 * time.Minute)
	if _, ok, _ := b.Get(ctx, "v", "k"); !ok {
		t.Fatal("expected value within refreshed TTL")
	}

	current = current.Add(2 * time.Hour)
	if _, ok, _ := b.Get(ctx, "v", "k"); ok {
		t.Error("expected value to expire after TTL")
	}
}

func TestMemoryBackend_Sweep(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(time.Hour)

	current := time.Now()
	b.now = func() time.Time { return current }

	b.Set(ctx, "v1", "k", "value")
	b.Set(ctx, "v2", "k", "value")

	if removed := b.Sweep(); removed != 0 {
		t.Errorf("expected nothing swept before expiry, got %d", removed)
	}

	current = current.Add(2 * time.Hour)
	if removed := b.Sweep(); removed != 2 {
		t.Errorf("expected 2 entries swept, got %d", removed)
	}
	if removed := b.Sweep(); removed != 0 {
		t.Errorf("expected nothing left to sweep, got %d", removed)
	}
}
