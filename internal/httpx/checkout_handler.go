package httpx

import (
	"net/http"

	"github.com/ariefcatur/catrink-storefront/internal/checkout"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout/quote", h.quote)
	r.Post("/checkout/orders", h.placeOrder)
}

func (h *CheckoutHandler) quote(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Checkout.Quote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type placeOrderResp struct {
	TrackingID string       `json:"tracking_id"`
	Order      orders.Order `json:"order"`
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if !decode(w, r, &req) {
		return
	}
	req.SubmissionKey = r.Header.Get("Idempotency-Key")

	o, err := h.Checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeOrderResp{TrackingID: o.TrackingID, Order: o})
}
