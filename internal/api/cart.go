package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xenking/courier-market/internal/domain/cart"
	"github.com/xenking/courier-market/internal/domain/order"
)

type cartLineRequest struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
}

type cartResponse struct {
	ClientID string          `json:"client_id"`
	Lines    []cart.Line     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	c := h.carts.Snapshot(actor.ID)
	writeJSON(w, r, http.StatusOK, cartResponse{ClientID: c.ClientID, Lines: c.Lines, Total: c.Total()})
}

func (h *Handler) addCartLine(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req cartLineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.carts.Update(actor.ID, func(c *cart.Cart) error {
		return c.AddLine(cart.Line{
			ItemID:         req.ItemID,
			Name:           req.Name,
			UnitPrice:      req.UnitPrice,
			Quantity:       req.Quantity,
			RestaurantID:   req.RestaurantID,
			RestaurantName: req.RestaurantName,
		})
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c := h.carts.Snapshot(actor.ID)
	writeJSON(w, r, http.StatusOK, cartResponse{ClientID: c.ClientID, Lines: c.Lines, Total: c.Total()})
}

func (h *Handler) updateCartLine(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	itemID := r.PathValue("item_id")
	err := h.carts.Update(actor.ID, func(c *cart.Cart) error {
		return c.UpdateQuantity(itemID, req.Quantity)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c := h.carts.Snapshot(actor.ID)
	writeJSON(w, r, http.StatusOK, cartResponse{ClientID: c.ClientID, Lines: c.Lines, Total: c.Total()})
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	itemID := r.PathValue("item_id")
	err := h.carts.Update(actor.ID, func(c *cart.Cart) error {
		return c.RemoveLine(itemID)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	c := h.carts.Snapshot(actor.ID)
	writeJSON(w, r, http.StatusOK, cartResponse{ClientID: c.ClientID, Lines: c.Lines, Total: c.Total()})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	_ = h.carts.Update(actor.ID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	writeJSON(w, r, http.StatusOK, cartResponse{ClientID: actor.ID})
}

type checkoutRequest struct {
	Address string `json:"address"`
	Zone    string `json:"zone"`
}

// checkout converts the client's cart into a CREATED order and empties the
// cart on success.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != order.RoleClient {
		writeError(w, r, http.StatusForbidden, "only clients can check out")
		return
	}

	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Address == "" || req.Zone == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "address and zone required")
		return
	}

	c := h.carts.Snapshot(actor.ID)
	restaurant, hasLines := c.Restaurant()
	if !hasLines {
		writeDomainError(w, r, cart.ErrEmpty)
		return
	}

	o, err := h.engine.Checkout(r.Context(), order.CreateParams{
		Client:     order.PartyRef{ID: actor.ID, Name: actor.Name},
		Restaurant: restaurant,
		Zone:       req.Zone,
		Address:    req.Address,
		Items:      c.Items(),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	_ = h.carts.Update(actor.ID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})

	writeJSON(w, r, http.StatusCreated, o)
}
