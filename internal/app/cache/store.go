package cache

import (
	"sync"
	"sync/atomic"
)

// Store publishes the current BalanceCache snapshot. Reads are lock-free; updates are serialized.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[BalanceCache]
}

// NewStore returns a store holding an empty cache.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(New())
	return s
}

// Snapshot returns the current cache. Callers may keep it; it never changes.
func (s *Store) Snapshot() *BalanceCache {
	return s.current.Load()
}

// Update replaces the current cache with fn(current) and returns the new snapshot.
func (s *Store) Update(fn func(*BalanceCache) *BalanceCache) *BalanceCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.current.Load())
	s.current.Store(next)
	return next
}
