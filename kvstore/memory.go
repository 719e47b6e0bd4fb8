package kvstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process key-value collaborator. It is the default
// when no external store is wired, mirroring the memory-cache fallback the
// original deployments shipped with. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty store. ttl bounds how long entries survive
// untouched; zero keeps entries until removed.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// SetData stores value under key, overwriting any prior value.
func (m *MemoryStore) SetData(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.data[key] = entry
	return nil
}

// GetData returns the value under key, or an empty string when absent or
// past its TTL. Lazily evicts expired entries.
func (m *MemoryStore) GetData(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return "", nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", nil
	}
	return entry.value, nil
}

// RemoveData deletes key. Deleting an absent key is not an error.
func (m *MemoryStore) RemoveData(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len reports the number of live entries, for tests and diagnostics.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
