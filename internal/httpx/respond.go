package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/catrink-storefront/internal/auth"
	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/chatbot"
	"github.com/ariefcatur/catrink-storefront/internal/checkout"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/identity"
	"github.com/ariefcatur/catrink-storefront/internal/logging"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return false
	}
	return true
}

// writeError maps domain errors onto status codes; anything unknown is a 500
// and gets logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := validation.As(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
		return
	}
	if pe, ok := identity.AsProviderError(err); ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: pe.Error(), Code: pe.Code})
		return
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, coupons.ErrInvalidCoupon), errors.Is(err, checkout.ErrInvalidAmount):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, coupons.ErrExists):
		code = http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, coupons.ErrNotFound), errors.Is(err, orders.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalid), errors.Is(err, coupons.ErrInvalid),
		errors.Is(err, orders.ErrInvalidStatus), errors.Is(err, chatbot.ErrEmptyMessage):
		code = http.StatusBadRequest
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidToken):
		code = http.StatusUnauthorized
	case errors.Is(err, auth.ErrAdminPassword):
		code = http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}

	if code == http.StatusInternalServerError {
		logging.FromCtx(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, code, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}
