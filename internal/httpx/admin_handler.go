package httpx

import (
	"fmt"
	"net/http"

	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

// AdminHandler is the console over catalog, coupons and orders. Routes are
// registered behind Authenticator.RequireAdmin.
type AdminHandler struct {
	Catalog *catalog.Store
	Coupons *coupons.Store
	Orders  orders.Store
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Post("/products", h.addProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/flavors", h.listFlavors)
		r.Post("/flavors", h.addFlavor)
		r.Put("/flavors/{id}", h.updateFlavor)
		r.Delete("/flavors/{id}", h.deleteFlavor)

		r.Get("/coupons", h.listCoupons)
		r.Post("/coupons", h.createCoupon)
		r.Put("/coupons/{code}", h.updateCoupon)
		r.Delete("/coupons/{code}", h.deleteCoupon)

		r.Get("/orders", h.listOrders)
		r.Put("/orders/{id}/status", h.updateOrderStatus)
	})
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListProducts(r.Context())
	respond(w, r, http.StatusOK, ps, err)
}

func (h *AdminHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if !decode(w, r, &p) {
		return
	}
	out, err := h.Catalog.AddProduct(r.Context(), p)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if !decode(w, r, &p) {
		return
	}
	out, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), p)
	respond(w, r, http.StatusOK, out, err)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")))
}

func (h *AdminHandler) listFlavors(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Catalog.ListFlavors(r.Context())
	respond(w, r, http.StatusOK, fs, err)
}

func (h *AdminHandler) addFlavor(w http.ResponseWriter, r *http.Request) {
	var f catalog.Flavor
	if !decode(w, r, &f) {
		return
	}
	out, err := h.Catalog.AddFlavor(r.Context(), f)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *AdminHandler) updateFlavor(w http.ResponseWriter, r *http.Request) {
	var f catalog.Flavor
	if !decode(w, r, &f) {
		return
	}
	out, err := h.Catalog.UpdateFlavor(r.Context(), chi.URLParam(r, "id"), f)
	respond(w, r, http.StatusOK, out, err)
}

func (h *AdminHandler) deleteFlavor(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, h.Catalog.DeleteFlavor(r.Context(), chi.URLParam(r, "id")))
}

func (h *AdminHandler) listCoupons(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Coupons.List(r.Context())
	respond(w, r, http.StatusOK, cs, err)
}

func (h *AdminHandler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupons.Coupon
	if !decode(w, r, &c) {
		return
	}
	out, err := h.Coupons.Create(r.Context(), c)
	respond(w, r, http.StatusCreated, out, err)
}

func (h *AdminHandler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupons.Coupon
	if !decode(w, r, &c) {
		return
	}
	out, err := h.Coupons.Update(r.Context(), chi.URLParam(r, "code"), c)
	respond(w, r, http.StatusOK, out, err)
}

func (h *AdminHandler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, h.Coupons.Delete(r.Context(), chi.URLParam(r, "code")))
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.List(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

type statusReq struct {
	Status string `json:"status"`
}

// updateOrderStatus follows the fulfilment lifecycle unless ?force=true.
func (h *AdminHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if !decode(w, r, &req) {
		return
	}
	next, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	if r.URL.Query().Get("force") != "true" {
		cur, err := h.Orders.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !orders.CanTransition(cur.Status, next) {
			writeJSON(w, http.StatusConflict, errorBody{
				Error: fmt.Sprintf("cannot move order from %s to %s", cur.Status, next),
				Field: "status",
			})
			return
		}
	}

	o, err := h.Orders.UpdateStatus(r.Context(), id, next)
	respond(w, r, http.StatusOK, o, err)
}

func respond(w http.ResponseWriter, r *http.Request, code int, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, v)
}

func noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
