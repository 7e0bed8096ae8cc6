package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/auth"
	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/chatbot"
	"github.com/ariefcatur/catrink-storefront/internal/checkout"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/logging"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/profile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the handlers borrow.
type Deps struct {
	Catalog  *catalog.Store
	Coupons  *coupons.Store
	Orders   orders.Store
	Checkout *checkout.Service
	Gate     *auth.Gate
	Tokens   *auth.Tokens
	Profiles *profile.Store
	Bot      *chatbot.Bot
}

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(Metrics, requestLogger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// requestLogger puts a request-scoped logger on the context for handlers.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.New("http").With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.WithCtx(r.Context(), l)))
	})
}

// NewServer wires every handler onto NewRouter.
func NewServer(d Deps) *chi.Mux {
	r := NewRouter()
	authn := &Authenticator{Gate: d.Gate, Tokens: d.Tokens}

	(&StorefrontHandler{Catalog: d.Catalog, Orders: d.Orders, Bot: d.Bot}).Register(r)
	(&CheckoutHandler{Checkout: d.Checkout}).Register(r)
	(&AuthHandler{Gate: d.Gate, Tokens: d.Tokens, Profiles: d.Profiles, Authn: authn}).Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireAdmin)
		(&AdminHandler{Catalog: d.Catalog, Coupons: d.Coupons, Orders: d.Orders}).Register(r)
	})
	return r
}
