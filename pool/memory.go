package pool

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process TTL cache for candidate pools. It is the
// default backend when no Redis address is configured. Expired entries
// are dropped lazily on access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry   Entry
	expires time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return e.entry, true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{entry: entry, expires: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}
