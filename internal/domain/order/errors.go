package order

import "fmt"

// Sentinel errors shared across the engine and its stores.
var (
	// ErrNotFound indicates an unknown order id or an absent interest entry.
	ErrNotFound = fmt.Errorf("order not found")

	// ErrConflict indicates a concurrent writer won the conditional write.
	// The engine retries a conflicted mutation once before surfacing it.
	ErrConflict = fmt.Errorf("concurrent update conflict")

	// ErrDuplicateInterest indicates the courier already registered interest
	// in the order. Surfaced to the caller rather than silently ignored.
	ErrDuplicateInterest = fmt.Errorf("interest already registered")
)

// InvalidTransitionError indicates the order's current status does not permit
// the requested move.
type InvalidTransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: invalid transition %s -> %s", e.OrderID, e.From, e.To)
}

// UnauthorizedError indicates the actor lacks rights for the requested
// operation on this order.
type UnauthorizedError struct {
	OrderID string
	ActorID string
	Role    Role
	Op      string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("order %s: %s %s not authorized to %s", e.OrderID, e.Role, e.ActorID, e.Op)
}

// CourierNotInterestedError indicates an assignment target that never
// registered interest in the order.
type CourierNotInterestedError struct {
	OrderID   string
	CourierID string
}

func (e *CourierNotInterestedError) Error() string {
	return fmt.Sprintf("order %s: courier %s has not registered interest", e.OrderID, e.CourierID)
}
