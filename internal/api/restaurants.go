package api

import (
	"net/http"
	"strings"
)

// listRestaurants returns the restaurant catalog, optionally filtered by a
// free-text ?q= match on name or zone.
func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menus.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))

	type restaurantResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Zone string `json:"zone"`
	}
	out := make([]restaurantResponse, 0, len(menus))
	for _, m := range menus {
		if q != "" &&
			!strings.Contains(strings.ToLower(m.RestaurantName), q) &&
			!strings.Contains(strings.ToLower(m.Zone), q) {
			continue
		}
		out = append(out, restaurantResponse{ID: m.RestaurantID, Name: m.RestaurantName, Zone: m.Zone})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	m, err := h.menus.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}
