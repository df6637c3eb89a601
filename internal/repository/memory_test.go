package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/courier-market/internal/domain/order"
)

func storedOrder(id string) *order.Order {
	return order.New(id, order.CreateParams{
		Client:     order.PartyRef{ID: "cli_1", Name: "Alice"},
		Restaurant: order.PartyRef{ID: "resto_1", Name: "Pizza Bella"},
		Zone:       "centre",
		Address:    "12 rue des Lilas",
		Items: []order.LineItem{
			{ItemID: "it_1", Name: "Margherita", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}, time.Now())
}

func TestMemoryStore_InsertAndGet(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := storedOrder("cmd_1")
	require.NoError(t, s.Put(ctx, o, order.StatusNone))

	got, err := s.Get(ctx, "cmd_1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, got.Status)
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryOrderStore()

	_, err := s.Get(context.Background(), "cmd_missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestMemoryStore_InsertTwiceConflicts(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, storedOrder("cmd_1"), order.StatusNone))
	err := s.Put(ctx, storedOrder("cmd_1"), order.StatusNone)
	require.ErrorIs(t, err, order.ErrConflict)
}

func TestMemoryStore_ConditionalUpdate(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := storedOrder("cmd_1")
	require.NoError(t, s.Put(ctx, o, order.StatusNone))

	next := o.Clone()
	restaurant := order.Actor{ID: "resto_1", Role: order.RoleRestaurant}
	require.NoError(t, next.Publish(restaurant, decimal.RequireFromString("4.00"), time.Now()))
	next.Version++

	require.NoError(t, s.Put(ctx, next, order.StatusCreated))

	got, err := s.Get(ctx, "cmd_1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPublished, got.Status)
}

func TestMemoryStore_StalePriorConflicts(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := storedOrder("cmd_1")
	require.NoError(t, s.Put(ctx, o, order.StatusNone))

	next := o.Clone()
	restaurant := order.Actor{ID: "resto_1", Role: order.RoleRestaurant}
	require.NoError(t, next.Publish(restaurant, decimal.RequireFromString("4.00"), time.Now()))
	next.Version++
	require.NoError(t, s.Put(ctx, next, order.StatusCreated))

	// A writer still expecting CREATED lost the race.
	err := s.Put(ctx, next, order.StatusCreated)
	require.ErrorIs(t, err, order.ErrConflict)
}

func TestMemoryStore_StaleVersionConflicts(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := storedOrder("cmd_1")
	restaurant := order.Actor{ID: "resto_1", Role: order.RoleRestaurant}
	require.NoError(t, o.Publish(restaurant, decimal.RequireFromString("4.00"), time.Now()))
	require.NoError(t, s.Put(ctx, o, order.StatusNone))

	// Two writers derive from the same snapshot; neither changes the status,
	// so the version predicate is what detects the second write as stale.
	first := o.Clone()
	require.NoError(t, first.AddInterest("liv_1", "15 min", "", time.Now()))
	first.Version++

	second := o.Clone()
	require.NoError(t, second.AddInterest("liv_2", "20 min", "", time.Now()))
	second.Version++

	require.NoError(t, s.Put(ctx, first, order.StatusPublished))
	err := s.Put(ctx, second, order.StatusPublished)
	require.ErrorIs(t, err, order.ErrConflict)

	got, err := s.Get(ctx, "cmd_1")
	require.NoError(t, err)
	assert.Contains(t, got.Interests, "liv_1")
	assert.NotContains(t, got.Interests, "liv_2")
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	s := NewMemoryOrderStore()

	err := s.Put(context.Background(), storedOrder("cmd_1"), order.StatusCreated)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, storedOrder("cmd_1"), order.StatusNone))

	got, err := s.Get(ctx, "cmd_1")
	require.NoError(t, err)
	got.Status = order.StatusCancelled
	got.LineItems[0].Quantity = 99

	fresh, err := s.Get(ctx, "cmd_1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, fresh.Status)
	assert.Equal(t, 1, fresh.LineItems[0].Quantity)
}

func TestMemoryStore_Scan(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, s.Put(ctx, storedOrder(fmt.Sprintf("cmd_%d", i)), order.StatusNone))
	}

	all, err := s.Scan(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	one, err := s.Scan(ctx, func(o *order.Order) bool { return o.ID == "cmd_3" })
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "cmd_3", one[0].ID)
}

func TestMemoryStore_ConcurrentConditionalWrites(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	o := storedOrder("cmd_1")
	require.NoError(t, s.Put(ctx, o, order.StatusNone))

	restaurant := order.Actor{ID: "resto_1", Role: order.RoleRestaurant}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := o.Clone()
			if err := next.Publish(restaurant, decimal.RequireFromString("4.00"), time.Now()); err != nil {
				return
			}
			next.Version++
			if err := s.Put(ctx, next, order.StatusCreated); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "only one conditional write from CREATED commits")
}

func TestMemoryMenuStore(t *testing.T) {
	s := NewMemoryMenuStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "resto_1")
	require.ErrorIs(t, err, ErrMenuNotFound)

	m := Menu{
		RestaurantID:   "resto_1",
		RestaurantName: "Pizza Bella",
		Zone:           "centre",
		Items: []MenuItem{
			{ItemID: "it_1", Name: "Margherita", Price: decimal.RequireFromString("5.00")},
		},
	}
	require.NoError(t, s.Upsert(ctx, m))
	require.NoError(t, s.Upsert(ctx, Menu{RestaurantID: "resto_2", RestaurantName: "Wok Express", Zone: "nord"}))

	got, err := s.Get(ctx, "resto_1")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Bella", got.RestaurantName)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pizza Bella", list[0].RestaurantName, "sorted by name")
}
