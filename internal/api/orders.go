package api

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xenking/courier-market/internal/domain/order"
)

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

// listOrders returns the caller's orders: a client's own, a restaurant's
// incoming (optionally filtered by ?status=), or a courier's deliveries
// (?delivered=1 for history). Newest first.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	statusFilter := order.Status(r.URL.Query().Get("status"))
	deliveredOnly := r.URL.Query().Get("delivered") == "1"

	var pred func(*order.Order) bool
	switch actor.Role {
	case order.RoleClient:
		pred = func(o *order.Order) bool { return o.ClientRef.ID == actor.ID }
	case order.RoleRestaurant:
		pred = func(o *order.Order) bool {
			if o.RestaurantRef.ID != actor.ID {
				return false
			}
			return statusFilter == order.StatusNone || o.Status == statusFilter
		}
	case order.RoleCourier:
		if deliveredOnly {
			pred = func(o *order.Order) bool {
				return o.Status == order.StatusDelivered && o.DeliveredBy == actor.ID
			}
		} else {
			pred = func(o *order.Order) bool { return o.AssignedCourier == actor.ID }
		}
	}

	orders, err := h.engine.Scan(r.Context(), pred)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sortNewestFirst(orders)
	writeJSON(w, r, http.StatusOK, orders)
}

// listAnnouncements returns PUBLISHED orders in the courier's zone.
func (h *Handler) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	actor, zone, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != order.RoleCourier {
		writeError(w, r, http.StatusForbidden, "only couriers see announcements")
		return
	}

	orders, err := h.engine.Scan(r.Context(), func(o *order.Order) bool {
		return o.Status == order.StatusPublished && o.Zone == zone
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sortNewestFirst(orders)
	writeJSON(w, r, http.StatusOK, orders)
}

// listInterests returns an order's registered interests, newest first.
// Ordering is presentation policy; the ledger itself imposes none.
func (h *Handler) listInterests(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	interests := make([]order.Interest, 0, len(o.Interests))
	for _, in := range o.Interests {
		interests = append(interests, in)
	}
	sort.Slice(interests, func(i, j int) bool {
		return interests[i].TS.After(interests[j].TS)
	})
	writeJSON(w, r, http.StatusOK, interests)
}

type publishRequest struct {
	RewardAmount decimal.Decimal `json:"reward_amount"`
}

func (h *Handler) publishOrder(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req publishRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.engine.Publish(r.Context(), r.PathValue("id"), actor, req.RewardAmount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

type assignRequest struct {
	CourierID string `json:"courier_id"`
}

func (h *Handler) assignOrder(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CourierID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "courier_id required")
		return
	}

	o, err := h.engine.Assign(r.Context(), r.PathValue("id"), actor, req.CourierID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.engine.Cancel(r.Context(), r.PathValue("id"), actor, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *Handler) startDelivery(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.engine.StartDelivery(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *Handler) completeDelivery(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.engine.CompleteDelivery(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

type interestRequest struct {
	ETA     string `json:"eta"`
	Comment string `json:"comment"`
}

func (h *Handler) addInterest(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != order.RoleCourier {
		writeError(w, r, http.StatusForbidden, "only couriers register interest")
		return
	}

	var req interestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.engine.AddInterest(r.Context(), r.PathValue("id"), actor.ID, req.ETA, req.Comment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *Handler) removeInterest(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != order.RoleCourier {
		writeError(w, r, http.StatusForbidden, "only couriers withdraw interest")
		return
	}

	o, err := h.engine.RemoveInterest(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func sortNewestFirst(orders []*order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		ti, tj := orders[i].Timestamps.Created, orders[j].Timestamps.Created
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
}
