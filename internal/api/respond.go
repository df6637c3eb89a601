package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/courier-market/internal/domain/cart"
	"github.com/xenking/courier-market/internal/domain/order"
	"github.com/xenking/courier-market/internal/repository"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Debug("Response write failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps engine and cart failures to HTTP statuses. Unknown
// errors become opaque 500s; the detail stays in the log.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid      *order.InvalidTransitionError
		unauthorized *order.UnauthorizedError
		notInterest  *order.CourierNotInterestedError
	)

	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, repository.ErrMenuNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.As(err, &unauthorized):
		writeError(w, r, http.StatusForbidden, unauthorized.Error())
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusConflict, invalid.Error())
	case errors.As(err, &notInterest):
		writeError(w, r, http.StatusUnprocessableEntity, notInterest.Error())
	case errors.Is(err, order.ErrDuplicateInterest):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrConflict):
		writeError(w, r, http.StatusConflict, "concurrent update, retry")
	case errors.Is(err, cart.ErrEmpty),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMixedRestaurants):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("Unhandled API error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
