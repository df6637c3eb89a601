package order

import (
	"time"

	"github.com/go-faster/jx"
)

// Kind is the semantic type of a feed event. The literal values are the wire
// contract consumed by the live event feed.
type Kind string

const (
	KindCreated   Kind = "created"
	KindPublished Kind = "published"
	KindAssigned  Kind = "assigned"
	KindCancelled Kind = "cancelled"
	KindDelivered Kind = "delivered"
	KindUpdated   Kind = "updated"
)

// Event is one typed notification derived from a committed order mutation.
// Which payload fields are populated depends on the kind.
type Event struct {
	Kind    Kind
	OrderID string
	TS      time.Time

	Zone         string
	ClientID     string
	RestaurantID string
	Reward       string
	Courier      string
	Reason       string
	DeliveredBy  string
}

// Derive converts a committed mutation into exactly one event. A nil prior
// means the order was newly created. It is a pure function of the two
// snapshots: the same prior and next always yield the same event.
//
// When a mutation changes the status along with other fields, the
// status-derived kind wins over the generic updated kind.
func Derive(prior, next *Order, now time.Time) Event {
	ev := Event{Kind: KindUpdated, OrderID: next.ID, TS: now}

	if prior == nil {
		ev.Kind = KindCreated
		ev.Zone = next.Zone
		ev.ClientID = next.ClientRef.ID
		ev.RestaurantID = next.RestaurantRef.ID
		return ev
	}

	if next.Status != prior.Status {
		switch next.Status {
		case StatusPublished:
			ev.Kind = KindPublished
			ev.Zone = next.Zone
			ev.Reward = next.RewardAmount.StringFixed(2)
		case StatusAssigned:
			ev.Kind = KindAssigned
			ev.Courier = next.AssignedCourier
		case StatusCancelled:
			ev.Kind = KindCancelled
			ev.Reason = next.CancelReason
		case StatusDelivered:
			ev.Kind = KindDelivered
			ev.DeliveredBy = next.DeliveredBy
		default:
			// Status moved but carries no dedicated kind (IN_DELIVERY).
		}
		return ev
	}

	if next.AssignedCourier != prior.AssignedCourier {
		ev.Kind = KindAssigned
		ev.Courier = next.AssignedCourier
	}
	return ev
}

// Encode writes the event's wire representation:
//
//	{"event":"<kind>","payload":{...},"ts":<unix>}
func (ev Event) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str(string(ev.Kind)) })
		e.Field("payload", func(e *jx.Encoder) { ev.encodePayload(e) })
		e.Field("ts", func(e *jx.Encoder) { e.Int64(ev.TS.Unix()) })
	})
}

func (ev Event) encodePayload(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(ev.OrderID) })

		switch ev.Kind {
		case KindCreated:
			e.Field("zone", func(e *jx.Encoder) { e.Str(ev.Zone) })
			e.Field("client_id", func(e *jx.Encoder) { e.Str(ev.ClientID) })
			e.Field("restaurant_id", func(e *jx.Encoder) { e.Str(ev.RestaurantID) })
		case KindPublished:
			e.Field("zone", func(e *jx.Encoder) { e.Str(ev.Zone) })
			e.Field("reward_amount", func(e *jx.Encoder) { e.RawStr(ev.Reward) })
		case KindAssigned:
			e.Field("assigned_courier", func(e *jx.Encoder) { e.Str(ev.Courier) })
		case KindCancelled:
			e.Field("cancel_reason", func(e *jx.Encoder) { e.Str(ev.Reason) })
		case KindDelivered:
			e.Field("delivered_by", func(e *jx.Encoder) { e.Str(ev.DeliveredBy) })
		}
	})
}
