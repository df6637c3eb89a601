package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Created(t *testing.T) {
	o := newTestOrder(t)

	ev := Derive(nil, o, time.Now())

	assert.Equal(t, KindCreated, ev.Kind)
	assert.Equal(t, o.ID, ev.OrderID)
	assert.Equal(t, "centre", ev.Zone)
	assert.Equal(t, "cli_1", ev.ClientID)
	assert.Equal(t, "resto_1", ev.RestaurantID)
}

func TestDerive_Published(t *testing.T) {
	prior := newTestOrder(t)
	next := prior.Clone()
	require.NoError(t, next.Publish(testRestaurant, decimal.RequireFromString("4.00"), time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindPublished, ev.Kind)
	assert.Equal(t, "centre", ev.Zone)
	assert.Equal(t, "4.00", ev.Reward)
}

func TestDerive_Assigned(t *testing.T) {
	prior := publishedOrder(t)
	require.NoError(t, prior.AddInterest("liv_1", "15 min", "", time.Now()))
	next := prior.Clone()
	require.NoError(t, next.Assign(testRestaurant, "liv_1", time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindAssigned, ev.Kind)
	assert.Equal(t, "liv_1", ev.Courier)
}

func TestDerive_Cancelled(t *testing.T) {
	prior := publishedOrder(t)
	next := prior.Clone()
	require.NoError(t, next.Cancel(testClient, "changed my mind", time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindCancelled, ev.Kind)
	assert.Equal(t, "changed my mind", ev.Reason)
}

func TestDerive_Delivered(t *testing.T) {
	prior := assignedOrder(t)
	require.NoError(t, prior.StartDelivery(testCourier, time.Now()))
	next := prior.Clone()
	require.NoError(t, next.CompleteDelivery(testCourier, time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindDelivered, ev.Kind)
	assert.Equal(t, "liv_1", ev.DeliveredBy)
}

func TestDerive_InDeliveryIsUpdated(t *testing.T) {
	prior := assignedOrder(t)
	next := prior.Clone()
	require.NoError(t, next.StartDelivery(testCourier, time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindUpdated, ev.Kind, "IN_DELIVERY has no dedicated kind")
}

func TestDerive_InterestChangeIsUpdated(t *testing.T) {
	prior := publishedOrder(t)
	next := prior.Clone()
	require.NoError(t, next.AddInterest("liv_1", "15 min", "", time.Now()))

	ev := Derive(prior, next, time.Now())

	assert.Equal(t, KindUpdated, ev.Kind)
}

func TestDerive_Deterministic(t *testing.T) {
	prior := newTestOrder(t)
	next := prior.Clone()
	require.NoError(t, next.Publish(testRestaurant, decimal.RequireFromString("4.00"), time.Now()))

	now := time.Now()
	assert.Equal(t, Derive(prior, next, now), Derive(prior, next, now))
}

func TestEvent_Encode(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	ev := Event{
		Kind:    KindPublished,
		OrderID: "cmd_abc12345",
		TS:      ts,
		Zone:    "centre",
		Reward:  "4.00",
	}

	enc := &jx.Encoder{}
	ev.Encode(enc)

	var decoded struct {
		Event   string `json:"event"`
		Payload struct {
			ID     string          `json:"id"`
			Zone   string          `json:"zone"`
			Reward json.RawMessage `json:"reward_amount"`
		} `json:"payload"`
		TS int64 `json:"ts"`
	}
	require.NoError(t, json.Unmarshal(enc.Bytes(), &decoded))

	assert.Equal(t, "published", decoded.Event)
	assert.Equal(t, "cmd_abc12345", decoded.Payload.ID)
	assert.Equal(t, "centre", decoded.Payload.Zone)
	assert.Equal(t, "4.00", string(decoded.Payload.Reward), "reward is a raw JSON number")
	assert.Equal(t, int64(1700000000), decoded.TS)
}

func TestEvent_EncodePayloadFields(t *testing.T) {
	enc := &jx.Encoder{}
	Event{Kind: KindCancelled, OrderID: "cmd_x", Reason: "late"}.Encode(enc)

	var decoded struct {
		Payload map[string]json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(enc.Bytes(), &decoded))

	assert.Contains(t, decoded.Payload, "cancel_reason")
	assert.NotContains(t, decoded.Payload, "zone", "cancelled payload carries no zone")
}
