// Package cart holds the transient pre-checkout state for a single client.
// A cart only ever contains lines from one restaurant; checkout converts it
// into an order and empties it.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/courier-market/internal/domain/order"
)

// Sentinel errors for cart validation.
var (
	ErrEmpty            = fmt.Errorf("cart is empty")
	ErrInvalidQuantity  = fmt.Errorf("quantity must be greater than 0")
	ErrMixedRestaurants = fmt.Errorf("cart lines must come from a single restaurant")
	ErrLineNotFound     = fmt.Errorf("cart line not found")
)

// Line is one dish in the cart, carrying a menu-item snapshot so checkout
// needs no catalog lookup.
type Line struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
}

// Cart is the mutable per-client line collection.
type Cart struct {
	ClientID string `json:"client_id"`
	Lines    []Line `json:"lines"`
}

// AddLine appends a line, rejecting lines from a different restaurant than
// the cart's current one. Adding an item already in the cart increments its
// quantity instead of duplicating the line.
func (c *Cart) AddLine(l Line) error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i, existing := range c.Lines {
		if existing.RestaurantID != l.RestaurantID {
			return ErrMixedRestaurants
		}
		if existing.ItemID == l.ItemID {
			c.Lines[i].Quantity += l.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, l)
	return nil
}

// RemoveLine deletes the line with the given item id.
func (c *Cart) RemoveLine(itemID string) error {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// UpdateQuantity changes a line's quantity; a quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(itemID string, qty int) error {
	if qty <= 0 {
		return c.RemoveLine(itemID)
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is the sum of unit price times quantity over all lines, rounded to
// two decimal places.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

// Restaurant returns the party the cart's lines belong to. ok is false for
// an empty cart.
func (c *Cart) Restaurant() (ref order.PartyRef, ok bool) {
	if len(c.Lines) == 0 {
		return order.PartyRef{}, false
	}
	return order.PartyRef{ID: c.Lines[0].RestaurantID, Name: c.Lines[0].RestaurantName}, true
}

// Items freezes the cart lines into order line items for checkout.
func (c *Cart) Items() []order.LineItem {
	items := make([]order.LineItem, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = order.LineItem{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}
	return items
}
