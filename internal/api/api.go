// Package api is the HTTP surface over the lifecycle engine: cart and
// checkout endpoints, the lifecycle operations, courier announcements, and
// the live event feed. Identity arrives pre-authenticated in actor headers.
package api

import (
	"net/http"

	"github.com/xenking/courier-market/internal/domain/cart"
	"github.com/xenking/courier-market/internal/domain/order"
	"github.com/xenking/courier-market/internal/feed"
	"github.com/xenking/courier-market/internal/repository"
)

// Handler bundles the engine, carts, menus and feed behind HTTP routes.
type Handler struct {
	engine *order.Service
	carts  *cart.Store
	menus  repository.MenuStore
	feed   *feed.Hub
}

// NewHandler constructs the API handler with its collaborators.
func NewHandler(engine *order.Service, carts *cart.Store, menus repository.MenuStore, hub *feed.Hub) *Handler {
	return &Handler{
		engine: engine,
		carts:  carts,
		menus:  menus,
		feed:   hub,
	}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /restaurants", h.listRestaurants)
	mux.HandleFunc("GET /restaurants/{id}/menu", h.getMenu)

	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("POST /cart/lines", h.addCartLine)
	mux.HandleFunc("PATCH /cart/lines/{item_id}", h.updateCartLine)
	mux.HandleFunc("DELETE /cart/lines/{item_id}", h.removeCartLine)
	mux.HandleFunc("POST /cart/clear", h.clearCart)

	mux.HandleFunc("POST /orders", h.checkout)
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("GET /orders/{id}/interests", h.listInterests)
	mux.HandleFunc("POST /orders/{id}/publish", h.publishOrder)
	mux.HandleFunc("POST /orders/{id}/assign", h.assignOrder)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("POST /orders/{id}/start", h.startDelivery)
	mux.HandleFunc("POST /orders/{id}/complete", h.completeDelivery)
	mux.HandleFunc("POST /orders/{id}/interest", h.addInterest)
	mux.HandleFunc("DELETE /orders/{id}/interest", h.removeInterest)

	mux.HandleFunc("GET /announcements", h.listAnnouncements)

	mux.HandleFunc("GET /events", h.streamEvents)
}
