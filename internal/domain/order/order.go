package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role identifies the kind of actor performing an operation.
type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleRestaurant Role = "RESTAURANT"
	RoleCourier    Role = "COURIER"
)

// Actor is the authenticated identity attached to every engine call. The
// engine trusts it as already authenticated by the session layer.
type Actor struct {
	ID   string
	Role Role
	Name string
}

// PartyRef is an identity plus display-name snapshot taken at creation time.
type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineItem is one cart line frozen into the order at checkout.
type LineItem struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Interest is a courier's non-binding offer to deliver a published order.
type Interest struct {
	CourierID string    `json:"courier_id"`
	ETA       string    `json:"eta"`
	Comment   string    `json:"comment"`
	TS        time.Time `json:"ts"`
}

// HistoryEntry is one append-only lifecycle audit record.
type HistoryEntry struct {
	ActorRole Role      `json:"actor_role"`
	ActorID   string    `json:"actor_id"`
	Details   string    `json:"details"`
	TS        time.Time `json:"ts"`
}

// Timestamps records when the order passed each lifecycle milestone.
// Each field is set exactly once and is nil until then.
type Timestamps struct {
	Created   *time.Time `json:"created"`
	Published *time.Time `json:"published"`
	Assigned  *time.Time `json:"assigned"`
	Closed    *time.Time `json:"closed"`
}

// Order is the central aggregate of the marketplace: one food-delivery
// transaction from checkout to delivery or cancellation.
//
// The JSON field names and status literals are the persisted wire contract.
// All mutation goes through the transition methods below; callers must never
// write fields directly outside this package.
//
// Version counts committed writes. The engine bumps it on every mutation and
// the store's conditional write compares it, so mutations that leave the
// status unchanged (interest changes) still serialize per order.
type Order struct {
	ID              string              `json:"id"`
	Version         int64               `json:"version"`
	Status          Status              `json:"status"`
	Zone            string              `json:"zone"`
	ClientRef       PartyRef            `json:"client_ref"`
	RestaurantRef   PartyRef            `json:"restaurant_ref"`
	AssignedCourier string              `json:"assigned_courier,omitempty"`
	DeliveredBy     string              `json:"delivered_by,omitempty"`
	RewardAmount    decimal.Decimal     `json:"reward_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DeliveryAddress string              `json:"delivery_address"`
	LineItems       []LineItem          `json:"line_items"`
	Interests       map[string]Interest `json:"interests"`
	Timestamps      Timestamps          `json:"timestamps"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CancelledBy     Role                `json:"cancelled_by,omitempty"`
	History         []HistoryEntry      `json:"history"`
}

// NewID generates an order id in the external cmd_<hex8> format.
func NewID() string {
	return "cmd_" + uuid.New().String()[:8]
}

// CreateParams holds everything needed to create an order from a checked-out
// cart.
type CreateParams struct {
	Client     PartyRef
	Restaurant PartyRef
	Zone       string
	Address    string
	Items      []LineItem
}

// New builds a CREATED order from checkout parameters. The total is computed
// once from the line items and never recomputed afterwards.
func New(id string, p CreateParams, now time.Time) *Order {
	total := decimal.Zero
	for _, li := range p.Items {
		total = total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}

	o := &Order{
		ID:              id,
		Version:         1,
		Status:          StatusCreated,
		Zone:            p.Zone,
		ClientRef:       p.Client,
		RestaurantRef:   p.Restaurant,
		RewardAmount:    decimal.Zero,
		TotalAmount:     total.Round(2),
		DeliveryAddress: p.Address,
		LineItems:       append([]LineItem(nil), p.Items...),
		Interests:       make(map[string]Interest),
		Timestamps:      Timestamps{Created: &now},
	}
	o.appendHistory(RoleClient, p.Client.ID, "order created by "+p.Client.Name, now)
	return o
}

// Clone returns a deep copy of the order. The engine mutates clones so a
// failed conditional write never leaves a half-applied aggregate behind.
func (o *Order) Clone() *Order {
	cp := *o
	cp.LineItems = append([]LineItem(nil), o.LineItems...)
	cp.History = append([]HistoryEntry(nil), o.History...)
	cp.Interests = make(map[string]Interest, len(o.Interests))
	for k, v := range o.Interests {
		cp.Interests[k] = v
	}
	cp.Timestamps = o.Timestamps.clone()
	return &cp
}

func (t Timestamps) clone() Timestamps {
	cp := Timestamps{}
	if t.Created != nil {
		v := *t.Created
		cp.Created = &v
	}
	if t.Published != nil {
		v := *t.Published
		cp.Published = &v
	}
	if t.Assigned != nil {
		v := *t.Assigned
		cp.Assigned = &v
	}
	if t.Closed != nil {
		v := *t.Closed
		cp.Closed = &v
	}
	return cp
}

// Publish moves CREATED -> PUBLISHED, setting the courier reward. Only the
// order's restaurant may publish.
func (o *Order) Publish(actor Actor, reward decimal.Decimal, now time.Time) error {
	if o.Status != StatusCreated {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusPublished}
	}
	if actor.Role != RoleRestaurant || actor.ID != o.RestaurantRef.ID {
		return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "publish"}
	}
	if reward.IsNegative() {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusPublished}
	}

	o.Status = StatusPublished
	o.RewardAmount = reward.Round(2)
	o.Timestamps.Published = &now
	o.appendHistory(actor.Role, actor.ID, "order published, reward "+reward.StringFixed(2), now)
	return nil
}

// Assign moves PUBLISHED -> ASSIGNED, recording the chosen courier. The
// courier must have registered interest, and only the order's restaurant may
// assign.
func (o *Order) Assign(actor Actor, courierID string, now time.Time) error {
	if o.Status != StatusPublished {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusAssigned}
	}
	if actor.Role != RoleRestaurant || actor.ID != o.RestaurantRef.ID {
		return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "assign"}
	}
	if _, ok := o.Interests[courierID]; !ok {
		return &CourierNotInterestedError{OrderID: o.ID, CourierID: courierID}
	}

	o.Status = StatusAssigned
	o.AssignedCourier = courierID
	o.Timestamps.Assigned = &now
	o.appendHistory(actor.Role, actor.ID, "courier "+courierID+" assigned", now)
	return nil
}

// Cancel terminates the order. Clients and restaurants may cancel while the
// order is CREATED or PUBLISHED; once ASSIGNED only the restaurant may. An
// in-progress or completed delivery can never be cancelled.
func (o *Order) Cancel(actor Actor, reason string, now time.Time) error {
	switch o.Status {
	case StatusCreated, StatusPublished:
		ownedBy := actor.Role == RoleClient && actor.ID == o.ClientRef.ID ||
			actor.Role == RoleRestaurant && actor.ID == o.RestaurantRef.ID
		if !ownedBy {
			return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "cancel"}
		}
	case StatusAssigned:
		if actor.Role != RoleRestaurant || actor.ID != o.RestaurantRef.ID {
			return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "cancel"}
		}
	default:
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusCancelled}
	}

	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledBy = actor.Role
	o.Timestamps.Closed = &now
	o.appendHistory(actor.Role, actor.ID, "order cancelled: "+reason, now)
	return nil
}

// StartDelivery moves ASSIGNED -> IN_DELIVERY. Only the assigned courier may
// start the delivery. No dedicated timestamp is recorded beyond the status
// change itself.
func (o *Order) StartDelivery(actor Actor, now time.Time) error {
	if o.Status != StatusAssigned {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusInDelivery}
	}
	if actor.Role != RoleCourier || actor.ID != o.AssignedCourier {
		return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "start delivery"}
	}

	o.Status = StatusInDelivery
	o.appendHistory(actor.Role, actor.ID, "delivery started", now)
	return nil
}

// CompleteDelivery moves IN_DELIVERY -> DELIVERED and records who delivered.
func (o *Order) CompleteDelivery(actor Actor, now time.Time) error {
	if o.Status != StatusInDelivery {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: StatusDelivered}
	}
	if actor.Role != RoleCourier || actor.ID != o.AssignedCourier {
		return &UnauthorizedError{OrderID: o.ID, ActorID: actor.ID, Role: actor.Role, Op: "complete delivery"}
	}

	o.Status = StatusDelivered
	o.DeliveredBy = actor.ID
	o.Timestamps.Closed = &now
	o.appendHistory(actor.Role, actor.ID, "order delivered", now)
	return nil
}

// AddInterest registers a courier's interest in a published order.
func (o *Order) AddInterest(courierID, eta, comment string, now time.Time) error {
	if !o.Status.InterestsMutable() {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: o.Status}
	}
	if _, ok := o.Interests[courierID]; ok {
		return ErrDuplicateInterest
	}

	o.Interests[courierID] = Interest{CourierID: courierID, ETA: eta, Comment: comment, TS: now}
	return nil
}

// RemoveInterest withdraws a courier's interest. After assignment the
// interest list is immutable audit data, even for the assigned courier.
func (o *Order) RemoveInterest(courierID string) error {
	if !o.Status.InterestsMutable() {
		return &InvalidTransitionError{OrderID: o.ID, From: o.Status, To: o.Status}
	}
	if _, ok := o.Interests[courierID]; !ok {
		return ErrNotFound
	}

	delete(o.Interests, courierID)
	return nil
}

func (o *Order) appendHistory(role Role, actorID, details string, now time.Time) {
	o.History = append(o.History, HistoryEntry{
		ActorRole: role,
		ActorID:   actorID,
		Details:   details,
		TS:        now,
	})
}
