package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is the default ephemeral store: an in-process map whose
// entries expire after a sliding TTL. Gone on restart, like a closed tab.
type MemoryBackend struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]map[string]memoryEntry
	now     func() time.Time // swappable in tests
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemory creates an in-memory backend with the given entry TTL.
func NewMemory(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		ttl:     ttl,
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value for scope+key, refreshing its TTL.
func (b *MemoryBackend) Get(_ context.Context, scope, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, ok := b.entries[scope]
	if !ok {
		return "", false, nil
	}
	entry, ok := keys[key]
	if !ok {
		return "", false, nil
	}
	if b.now().After(entry.expiresAt) {
		delete(keys, key)
		return "", false, nil
	}

	entry.expiresAt = b.now().Add(b.ttl)
	keys[key] = entry
	return entry.value, true, nil
}

// Set stores the value for scope+key.
func (b *MemoryBackend) Set(_ context.Context, scope, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, ok := b.entries[scope]
	if !ok {
		keys = make(map[string]memoryEntry)
		b.entries[scope] = keys
	}
	keys[key] = memoryEntry{value: value, expiresAt: b.now().Add(b.ttl)}
	return nil
}

// Delete removes the given keys for a scope.
func (b *MemoryBackend) Delete(_ context.Context, scope string, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, ok := b.entries[scope]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(stored, key)
	}
	if len(stored) == 0 {
		delete(b.entries, scope)
	}
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (b *MemoryBackend) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for scope, keys := range b.entries {
		for key, entry := range keys {
			if now.After(entry.expiresAt) {
				delete(keys, key)
				removed++
			}
		}
		if len(keys) == 0 {
			delete(b.entries, scope)
		}
	}
	return removed
}
