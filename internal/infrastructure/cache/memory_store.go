package cache

import (
	"context"
	"sync"
)

// MemoryStore implements CollectionStore with an in-process map. This is the
// default backend; cache contents are idempotent re-derivations of upstream
// truth, so losing them on restart is acceptable.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Snapshot),
	}
}

// Get returns the snapshot for key, or nil if absent
func (s *MemoryStore) Get(_ context.Context, key string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key], nil
}

// Set stores a snapshot, replacing any previous one
func (s *MemoryStore) Set(_ context.Context, key string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = snap
	return nil
}

// Invalidate clears the given keys, or the whole store when no keys are given
func (s *MemoryStore) Invalidate(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.entries = make(map[string]*Snapshot)
		return nil
	}
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// Close releases nothing; present to satisfy CollectionStore
func (s *MemoryStore) Close() error {
	return nil
}

// Size returns the number of cached collections (for testing/monitoring)
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements CollectionStore
var _ CollectionStore = (*MemoryStore)(nil)
