package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store provides atomic read-modify-write access to per-user ledgers. Get for
// a user without a ledger returns the fresh state rather than an error.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (Ledger, error)
	// Update loads the ledger, applies fn under mutual exclusion, persists the
	// result, and returns it. Returning an error from fn aborts the write.
	Update(ctx context.Context, userID uuid.UUID, fn func(*Ledger) error) (Ledger, error)
	Reset(ctx context.Context, userID uuid.UUID) (Ledger, error)
}

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]Ledger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[uuid.UUID]Ledger)}
}

// Get returns the user's ledger, or a fresh one.
func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[userID]; ok {
		return l.clone(), nil
	}
	return NewLedger(), nil
}

// Update applies fn atomically under the store mutex.
func (s *MemoryStore) Update(ctx context.Context, userID uuid.UUID, fn func(*Ledger) error) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[userID]
	if !ok {
		ledger = NewLedger()
	}
	working := ledger.clone()
	working.normalize()
	if err := fn(&working); err != nil {
		return Ledger{}, err
	}
	s.ledgers[userID] = working
	return working.clone(), nil
}

// Reset reinitializes the user's ledger.
func (s *MemoryStore) Reset(ctx context.Context, userID uuid.UUID) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[userID] = NewLedger()
	return NewLedger(), nil
}
