package api

import (
	"net/http"

	"github.com/xenking/courier-market/internal/domain/order"
)

// Actor identity headers. The session layer in front of this service is
// trusted to have authenticated them already.
const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
	headerActorName = "X-Actor-Name"
	headerActorZone = "X-Actor-Zone"
)

// actorFrom extracts the trusted actor identity from request headers.
// ok is false when the identity is missing or carries an unknown role.
func actorFrom(r *http.Request) (actor order.Actor, zone string, ok bool) {
	actor = order.Actor{
		ID:   r.Header.Get(headerActorID),
		Role: order.Role(r.Header.Get(headerActorRole)),
		Name: r.Header.Get(headerActorName),
	}
	zone = r.Header.Get(headerActorZone)

	if actor.ID == "" {
		return order.Actor{}, "", false
	}
	switch actor.Role {
	case order.RoleClient, order.RoleRestaurant, order.RoleCourier:
		return actor, zone, true
	}
	return order.Actor{}, "", false
}

// requireActor writes a 401 response when the identity headers are absent.
func requireActor(w http.ResponseWriter, r *http.Request) (order.Actor, string, bool) {
	actor, zone, ok := actorFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "actor identity required")
	}
	return actor, zone, ok
}
