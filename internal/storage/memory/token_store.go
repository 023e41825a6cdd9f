package memory

import (
	"context"
	"sync"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore with an
// optional capacity bound. When full, upserting a new mint evicts the
// oldest entry by insertion order.
type TokenStore struct {
	mu       sync.RWMutex
	data     map[string]*domain.MonitoredToken // keyed by mint
	order    []string                          // mints in insertion order
	capacity int                               // 0 means unbounded
}

// NewTokenStore creates a new in-memory token store. capacity 0 disables
// the bound.
func NewTokenStore(capacity int) *TokenStore {
	return &TokenStore{
		data:     make(map[string]*domain.MonitoredToken),
		capacity: capacity,
	}
}

// Upsert inserts a token or replaces the existing entry for its mint.
// A replacement keeps the mint's original position in insertion order.
func (s *TokenStore) Upsert(_ context.Context, t *domain.MonitoredToken) error {
	if t == nil || t.TokenInfo.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mint := t.TokenInfo.Mint
	_, exists := s.data[mint]

	if !exists && s.capacity > 0 && len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.data, oldest)
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[mint] = &tokenCopy
	if !exists {
		s.order = append(s.order, mint)
	}
	return nil
}

// GetByMint retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.MonitoredToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	tokenCopy := *t
	return &tokenCopy, nil
}

// Snapshot retrieves all tokens in insertion order.
func (s *TokenStore) Snapshot(_ context.Context) ([]*domain.MonitoredToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MonitoredToken, 0, len(s.order))
	for _, mint := range s.order {
		tokenCopy := *s.data[mint]
		result = append(result, &tokenCopy)
	}
	return result, nil
}

// Count returns the number of tokens held.
func (s *TokenStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Verify interface compliance at compile time.
var _ storage.TokenStore = (*TokenStore)(nil)
