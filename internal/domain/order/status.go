package order

// Status is the lifecycle state of an order. The six literal values are part
// of the persisted wire contract and must not change.
type Status string

const (
	// StatusNone marks the absence of a prior state. It is used as the
	// expected-prior value when inserting a new order and never stored.
	StatusNone Status = ""

	StatusCreated    Status = "CREATED"
	StatusPublished  Status = "PUBLISHED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInDelivery Status = "IN_DELIVERY"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// transitions holds the permitted forward edges of the lifecycle state
// machine. Anything not listed here is an invalid transition, including
// every edge out of a terminal state.
var transitions = map[Status][]Status{
	StatusCreated:    {StatusPublished, StatusCancelled},
	StatusPublished:  {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInDelivery, StatusCancelled},
	StatusInDelivery: {StatusDelivered},
}

// Valid reports whether s is one of the six known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPublished, StatusAssigned,
		StatusInDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanMoveTo reports whether the edge s -> next exists in the state machine.
func (s Status) CanMoveTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// InterestsMutable reports whether the interest list may still be modified.
// Once an order leaves PUBLISHED the registered interests become immutable
// audit data.
func (s Status) InterestsMutable() bool {
	return s == StatusPublished
}

func (s Status) String() string {
	return string(s)
}
