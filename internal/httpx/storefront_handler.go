package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/chatbot"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type StorefrontHandler struct {
	Catalog *catalog.Store
	Orders  orders.Store
	Bot     *chatbot.Bot
}

func (h *StorefrontHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/flavors", h.listFlavors)
	r.Get("/orders/track/{trackingID}", h.track)
	r.Get("/chat", h.greeting)
	r.Post("/chat", h.chat)
}

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *StorefrontHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *StorefrontHandler) listFlavors(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Catalog.ListFlavors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (h *StorefrontHandler) track(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetByTrackingID(ctx, chi.URLParam(r, "trackingID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *StorefrontHandler) greeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatbot.Greeting())
}

type chatReq struct {
	Message string `json:"message"`
}

func (h *StorefrontHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Bot.Respond(r.Context(), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
