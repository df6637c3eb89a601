package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher receives derived events. Publishing is fire-and-forget: a slow
// feed must never block or fail a mutation.
type Publisher interface {
	Publish(ev Event)
}

// Service is the order lifecycle engine. It validates transitions against the
// current stored state, applies them through conditional writes, and emits
// exactly one derived event per committed mutation.
//
// Per-order serialization comes from the store's compare-and-set, not from
// locks: a mutation that loses the race is re-read, re-validated, and
// re-applied once before ErrConflict reaches the caller.
type Service struct {
	store Store
	feed  Publisher

	now   func() time.Time
	newID func() string
}

// NewService creates the lifecycle engine over a store and an event feed.
func NewService(store Store, feed Publisher) *Service {
	return &Service{
		store: store,
		feed:  feed,
		now:   time.Now,
		newID: NewID,
	}
}

// Checkout creates a CREATED order from checkout parameters and emits the
// created event.
func (s *Service) Checkout(ctx context.Context, p CreateParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, errors.New("checkout requires at least one line item")
	}

	now := s.now()
	o := New(s.newID(), p, now)
	if err := s.store.Put(ctx, o, StatusNone); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	s.feed.Publish(Derive(nil, o, now))
	return o, nil
}

// Publish moves an order to PUBLISHED with the given courier reward.
func (s *Service) Publish(ctx context.Context, id string, actor Actor, reward decimal.Decimal) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.Publish(actor, reward, now)
	})
}

// Assign picks an interested courier for a PUBLISHED order.
func (s *Service) Assign(ctx context.Context, id string, actor Actor, courierID string) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.Assign(actor, courierID, now)
	})
}

// Cancel terminates an order with the given reason.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor, reason string) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.Cancel(actor, reason, now)
	})
}

// StartDelivery moves an ASSIGNED order to IN_DELIVERY.
func (s *Service) StartDelivery(ctx context.Context, id string, actor Actor) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.StartDelivery(actor, now)
	})
}

// CompleteDelivery moves an IN_DELIVERY order to DELIVERED.
func (s *Service) CompleteDelivery(ctx context.Context, id string, actor Actor) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.CompleteDelivery(actor, now)
	})
}

// AddInterest registers a courier's interest in a published order.
func (s *Service) AddInterest(ctx context.Context, id, courierID, eta, comment string) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.AddInterest(courierID, eta, comment, now)
	})
}

// RemoveInterest withdraws a courier's interest from a published order.
func (s *Service) RemoveInterest(ctx context.Context, id, courierID string) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order, now time.Time) error {
		return o.RemoveInterest(courierID)
	})
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

// Scan lists orders matching the predicate.
func (s *Service) Scan(ctx context.Context, pred func(*Order) bool) ([]*Order, error) {
	return s.store.Scan(ctx, pred)
}

// mutate runs one read-validate-write cycle for a single order. The apply
// function mutates a clone, so validation failures leave nothing behind. On
// ErrConflict the whole cycle repeats exactly once against the fresh state;
// re-validation there guarantees a logical operation never applies twice.
func (s *Service) mutate(ctx context.Context, id string, apply func(*Order, time.Time) error) (*Order, error) {
	next, err := s.applyOnce(ctx, id, apply)
	if errors.Is(err, ErrConflict) {
		zctx.From(ctx).Debug("Conditional write lost race, retrying once",
			zap.String("order_id", id))
		next, err = s.applyOnce(ctx, id, apply)
	}
	return next, err
}

func (s *Service) applyOnce(ctx context.Context, id string, apply func(*Order, time.Time) error) (*Order, error) {
	prior, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := prior.Clone()
	if err := apply(next, now); err != nil {
		return nil, err
	}
	next.Version = prior.Version + 1

	if err := s.store.Put(ctx, next, prior.Status); err != nil {
		return nil, err
	}

	s.feed.Publish(Derive(prior, next, now))
	return next, nil
}
