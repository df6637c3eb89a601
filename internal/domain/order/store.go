package order

import "context"

// Store is the persistence port the engine depends on. Implementations must
// provide single-key conditional writes; the engine never assumes anything
// stronger (no cross-order transactions).
type Store interface {
	// Get returns the order with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Order, error)

	// Put writes the order conditionally on the stored document still being
	// the one this write was derived from: its status must equal
	// expectedPrior and its version must equal o.Version-1. StatusNone means
	// the order must not exist yet (insert). Returns ErrConflict when a
	// concurrent writer got there first, and ErrNotFound when updating an
	// order that does not exist.
	Put(ctx context.Context, o *Order, expectedPrior Status) error

	// Scan returns every order matching the predicate. Intended for
	// dashboard-style listings, not hot paths.
	Scan(ctx context.Context, pred func(*Order) bool) ([]*Order, error)
}
