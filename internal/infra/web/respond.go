package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"inet-marketplace/internal/domain"
)

type errorResponse struct {
	Error string      `json:"error"`
	Data  interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error vocabulary onto HTTP statuses. data,
// when set, rides along in the body (e.g. the existing intent on an
// already-purchased conflict).
func writeError(w http.ResponseWriter, err error, data interface{}) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrPhoneRequired),
		errors.Is(err, domain.ErrProofRequired),
		errors.Is(err, domain.ErrPromoInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyPurchased),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrIntentNotPending),
		errors.Is(err, domain.ErrLockBusy):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrGatewayRejected):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrGatewayUnavailable):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Data: data})
}
