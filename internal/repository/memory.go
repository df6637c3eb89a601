package repository

import (
	"context"
	"sync"

	"github.com/xenking/courier-market/internal/domain/order"
)

var _ order.Store = (*MemoryOrderStore)(nil)

// MemoryOrderStore implements order.Store over a mutex-guarded map with the
// same conditional-write semantics as the PostgreSQL repository. It backs
// unit tests and the zero-configuration development mode.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

// NewMemoryOrderStore creates an empty in-memory store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*order.Order)}
}

// Get returns a deep copy so callers can never mutate committed state.
func (s *MemoryOrderStore) Get(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

// Put applies the compare-and-set: the stored status must still equal
// expectedPrior and the stored version must be the one this write was
// derived from (StatusNone meaning the id must be absent).
func (s *MemoryOrderStore) Put(_ context.Context, o *order.Order, expectedPrior order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.orders[o.ID]
	if expectedPrior == order.StatusNone {
		if exists {
			return order.ErrConflict
		}
		s.orders[o.ID] = o.Clone()
		return nil
	}

	if !exists {
		return order.ErrNotFound
	}
	if stored.Status != expectedPrior || stored.Version != o.Version-1 {
		return order.ErrConflict
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

// Scan returns copies of every order matching the predicate.
func (s *MemoryOrderStore) Scan(_ context.Context, pred func(*order.Order) bool) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*order.Order
	for _, o := range s.orders {
		if pred == nil || pred(o) {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}
