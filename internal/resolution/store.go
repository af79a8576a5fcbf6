// Package resolution guards an order against being resolved twice. Two
// independent completion paths can act on the same order: the popup-closure
// reconciler and the provider-redirected approval callback. Whichever path
// wins the claim performs the mutating call; the loser stands down.
package resolution

import (
	"context"
	"sync"
)

// Store records which orders have been claimed for resolution.
// Claim is first-wins: it returns true exactly once per order ID.
type Store interface {
	Claim(ctx context.Context, orderID string) (bool, error)
	Resolved(ctx context.Context, orderID string) (bool, error)
}

// MemoryStore is the single-process implementation. The redis-backed store
// covers deployments where the callback listener runs separately.
type MemoryStore struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claimed: make(map[string]struct{})}
}

func (s *MemoryStore) Claim(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claimed[orderID]; ok {
		return false, nil
	}
	s.claimed[orderID] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Resolved(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.claimed[orderID]
	return ok, nil
}
