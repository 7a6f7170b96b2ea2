package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/depot/backend/internal/domain/depot"
)

// MemoryRegistrationStore implements depot.RegistrationStore in memory. It is
// the default store when no database is configured; records do not survive a
// restart.
type MemoryRegistrationStore struct {
	mu   sync.RWMutex
	regs []*depot.RegisteredContainer
}

// NewMemoryRegistrationStore creates an empty in-memory registration store
func NewMemoryRegistrationStore() *MemoryRegistrationStore {
	return &MemoryRegistrationStore{}
}

// Save appends a registration record
func (s *MemoryRegistrationStore) Save(ctx context.Context, reg *depot.RegisteredContainer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *reg
	s.regs = append(s.regs, &stored)
	return nil
}

// ListByUser returns all registrations created by the given user, newest first
func (s *MemoryRegistrationStore) ListByUser(ctx context.Context, userID int64) ([]*depot.RegisteredContainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*depot.RegisteredContainer, 0)
	for _, reg := range s.regs {
		if reg.UserID == userID {
			copied := *reg
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

// Close is a no-op
func (s *MemoryRegistrationStore) Close() error {
	return nil
}

// Size returns the number of stored registrations
func (s *MemoryRegistrationStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regs)
}

// Ensure MemoryRegistrationStore implements RegistrationStore
var _ depot.RegistrationStore = (*MemoryRegistrationStore)(nil)
