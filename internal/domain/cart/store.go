package cart

import "sync"

// Store keeps one cart per client in memory. Carts are transient session
// state; losing them on restart is acceptable for this system.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Update runs fn against the client's cart under the store lock, creating an
// empty cart on first use. Per-client mutation is serialized here the same
// way per-order mutation is serialized by the order store.
func (s *Store) Update(clientID string, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[clientID]
	if !ok {
		c = &Cart{ClientID: clientID}
		s.carts[clientID] = c
	}
	return fn(c)
}

// Snapshot returns a copy of the client's cart for read-only use.
func (s *Store) Snapshot(clientID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[clientID]
	if !ok {
		return Cart{ClientID: clientID}
	}
	cp := Cart{ClientID: c.ClientID, Lines: append([]Line(nil), c.Lines...)}
	return cp
}
