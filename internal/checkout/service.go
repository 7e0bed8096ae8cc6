// Package checkout turns a cart plus billing and shipping input into a
// placed order.
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/notify"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
)

const (
	keyInFlight   = "catrink:checkout:inflight:%s"
	keyCompleted  = "catrink:checkout:done:%s"
	keyHasOrdered = "catrink_has_ordered_%s"

	deliveryDays  = 7
	notifyTimeout = 15 * time.Second
)

var ErrSubmissionInFlight = errors.New("order submission already in progress")

type ValidationError = validation.Error

type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type Coupons interface {
	CouponResolver
	Redeem(ctx context.Context, code string, now time.Time) (coupons.Coupon, error)
	Release(ctx context.Context, code string) error
}

type Billing struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

func (b Billing) address() orders.Address {
	return orders.Address{
		FullName: b.FullName,
		Street:   b.Street,
		City:     b.City,
		State:    b.State,
		ZipCode:  b.ZipCode,
		Country:  b.Country,
		Phone:    b.Phone,
	}
}

type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Request struct {
	Lines          []LineRequest  `json:"lines"`
	Billing        Billing        `json:"billing"`
	Shipping       *Billing       `json:"shipping,omitempty"` // nil -> sama dengan billing
	ShippingMethod ShippingMethod `json:"shipping_method"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	CouponCode     string         `json:"coupon_code"`
	AgreeToTerms   bool           `json:"agree_to_terms"`

	// SubmissionKey identifies one checkout attempt (Idempotency-Key). When
	// empty a key is derived from the request content.
	SubmissionKey string `json:"-"`
}

type Options struct {
	OperatorEmail string
	TemplateID    string
	InFlightTTL   time.Duration
	ReplayTTL     time.Duration
}

type Service struct {
	catalog  Catalog
	coupons  Coupons
	orders   orders.Store
	kv       kv.Store
	payments Payments
	notifier notify.Notifier
	opts     Options
	now      func() time.Time
	log      *slog.Logger

	wg sync.WaitGroup // notifikasi yang masih jalan
}

func NewService(cat Catalog, cs Coupons, orderStore orders.Store, store kv.Store, pay Payments, n notify.Notifier, opts Options) *Service {
	if opts.InFlightTTL <= 0 {
		opts.InFlightTTL = time.Minute
	}
	if opts.ReplayTTL <= 0 {
		opts.ReplayTTL = 24 * time.Hour
	}
	return &Service{
		catalog:  cat,
		coupons:  cs,
		orders:   orderStore,
		kv:       store,
		payments: pay,
		notifier: n,
		opts:     opts,
		now:      time.Now,
		log:      slog.Default().With("component", "checkout"),
	}
}

// Quote prices the request without side effects.
func (s *Service) Quote(ctx context.Context, req Request) (Breakdown, error) {
	cart, err := s.cart(ctx, req.Lines)
	if err != nil {
		return Breakdown{}, err
	}
	return Price(ctx, cart.Lines(), req.ShippingMethod, req.CouponCode, s.coupons, s.now())
}

// PlaceOrder validates, charges and persists one order. Invalid input
// changes nothing. A second call with the same submission key while the
// first is still running fails with ErrSubmissionInFlight; after it
// finished, an explicit key replays the stored order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (orders.Order, error) {
	if err := validate(req); err != nil {
		return orders.Order{}, err
	}
	cart, err := s.cart(ctx, req.Lines)
	if err != nil {
		return orders.Order{}, err
	}

	explicit := req.SubmissionKey != ""
	key := req.SubmissionKey
	if !explicit {
		key = deriveKey(req)
	}

	if explicit {
		if o, ok, err := s.replay(ctx, key); err != nil || ok {
			return o, err
		}
	}
	locked, err := s.kv.SetNX(ctx, fmt.Sprintf(keyInFlight, key), []byte("1"), s.opts.InFlightTTL)
	if err != nil {
		return orders.Order{}, fmt.Errorf("submission lock: %w", err)
	}
	if !locked {
		return orders.Order{}, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.kv.Delete(context.WithoutCancel(ctx), fmt.Sprintf(keyInFlight, key)); err != nil {
			s.log.Warn("release submission lock", "err", err)
		}
	}()
	if explicit {
		// bisa saja selesai di antara replay() dan SetNX
		if o, ok, err := s.replay(ctx, key); err != nil || ok {
			return o, err
		}
	}

	now := s.now()
	b, err := Price(ctx, cart.Lines(), req.ShippingMethod, req.CouponCode, s.coupons, now)
	if err != nil {
		return orders.Order{}, err
	}
	if b.Err() != nil {
		return orders.Order{}, b.Err()
	}

	if b.Coupon != nil {
		if _, err := s.coupons.Redeem(ctx, b.Coupon.Code, now); err != nil {
			return orders.Order{}, fmt.Errorf("redeem coupon: %w", err)
		}
	}
	release := func() {
		if b.Coupon == nil {
			return
		}
		if err := s.coupons.Release(context.WithoutCancel(ctx), b.Coupon.Code); err != nil {
			s.log.Error("release coupon", "code", b.Coupon.Code, "err", err)
		}
	}

	if _, err := s.payments.Authorize(ctx, b.Total, req.PaymentMethod); err != nil {
		release()
		return orders.Order{}, err
	}

	ship := req.Billing
	if req.Shipping != nil {
		ship = *req.Shipping
	}
	o := orders.Order{
		TrackingID:        orders.GenerateTrackingID(),
		Items:             snapshot(cart.Lines()),
		TotalAmount:       b.Total,
		Status:            orders.StatusProcessing,
		OrderDate:         now,
		EstimatedDelivery: now.AddDate(0, 0, deliveryDays),
		ShippingAddress:   ship.address(),
		PaymentMethod:     string(req.PaymentMethod),
		CouponApplied:     b.Coupon,
		CustomerEmail:     req.Billing.Email,
	}
	if _, err := s.orders.Add(ctx, o); err != nil {
		release()
		return orders.Order{}, fmt.Errorf("save order: %w", err)
	}
	// Add mengisi ID di sisi store; ambil ulang supaya caller dapat ID-nya
	placed, err := s.orders.GetByTrackingID(ctx, o.TrackingID)
	if err != nil {
		return orders.Order{}, fmt.Errorf("reload order: %w", err)
	}

	bg := context.WithoutCancel(ctx)
	if err := s.kv.Set(bg, fmt.Sprintf(keyHasOrdered, strings.ToLower(req.Billing.Email)), []byte("true"), 0); err != nil {
		s.log.Warn("has-ordered flag", "err", err)
	}
	if explicit {
		if err := s.kv.Set(bg, fmt.Sprintf(keyCompleted, key), []byte(placed.TrackingID), s.opts.ReplayTTL); err != nil {
			s.log.Warn("record submission", "err", err)
		}
	}
	ordersPlaced.WithLabelValues(string(req.ShippingMethod)).Inc()
	s.log.Info("order placed", "order_id", placed.ID, "tracking_id", placed.TrackingID, "total", placed.TotalAmount.StringFixed(2))

	s.dispatch(bg, notify.OrderDetails{
		Order:    placed,
		Subtotal: b.Subtotal,
		Discount: b.Discount,
		Tax:      b.Tax,
		Shipping: b.Shipping,
		Pickup:   req.ShippingMethod == ShippingPickup,
		Phone:    req.Billing.Phone,
	})
	return placed, nil
}

// HasOrdered reports whether email has ever placed an order.
func (s *Service) HasOrdered(ctx context.Context, email string) (bool, error) {
	_, err := s.kv.Get(ctx, fmt.Sprintf(keyHasOrdered, strings.ToLower(email)))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Wait blocks until every dispatched notification has finished.
func (s *Service) Wait() { s.wg.Wait() }

// dispatch sends the operator notification in the background. Failures are
// logged and counted, never returned.
func (s *Service) dispatch(ctx context.Context, d notify.OrderDetails) {
	if s.notifier == nil {
		return
	}
	msg := notify.OrderMessage(s.opts.OperatorEmail, s.opts.TemplateID, d)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, msg); err != nil {
			notificationsFailed.Inc()
			s.log.Warn("order notification failed", "order_id", msg.OrderID, "tracking_id", msg.TrackingID, "err", err)
		}
	}()
}

func (s *Service) replay(ctx context.Context, key string) (orders.Order, bool, error) {
	tid, err := s.kv.Get(ctx, fmt.Sprintf(keyCompleted, key))
	if errors.Is(err, kv.ErrNotFound) {
		return orders.Order{}, false, nil
	}
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("submission lookup: %w", err)
	}
	o, err := s.orders.GetByTrackingID(ctx, string(tid))
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("replay %s: %w", tid, err)
	}
	return o, true, nil
}

// cart resolves request lines against the catalog at current prices.
func (s *Service) cart(ctx context.Context, lines []LineRequest) (*Cart, error) {
	if len(lines) == 0 {
		return nil, validation.New("lines", "cart is empty")
	}
	c := &Cart{}
	for _, l := range lines {
		p, err := s.catalog.GetProduct(ctx, l.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, validation.New("lines", fmt.Sprintf("unknown product %q", l.ProductID))
		}
		if err != nil {
			return nil, err
		}
		if err := c.Add(p, l.Quantity); err != nil {
			return nil, validation.New("lines", err.Error())
		}
	}
	return c, nil
}

func validate(req Request) error {
	if !req.AgreeToTerms {
		return validation.New("agree_to_terms", "Please agree to the Terms & Conditions")
	}
	required := []struct{ field, val string }{
		{"billing.full_name", req.Billing.FullName},
		{"billing.email", req.Billing.Email},
		{"billing.street", req.Billing.Street},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return validation.New(r.field, "Please fill in all required billing information")
		}
	}
	if req.Shipping != nil && (strings.TrimSpace(req.Shipping.FullName) == "" || strings.TrimSpace(req.Shipping.Street) == "") {
		return validation.New("shipping", "shipping address needs a name and street")
	}
	if _, ok := req.ShippingMethod.Fee(); !ok {
		return validation.New("shipping_method", "unknown shipping method")
	}
	if !req.PaymentMethod.Valid() {
		return validation.New("payment_method", "unknown payment method")
	}
	return nil
}

// deriveKey fingerprints who is buying what, so a double-click without an
// Idempotency-Key still hits the in-flight lock.
func deriveKey(req Request) string {
	lines := append([]LineRequest(nil), req.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", strings.ToLower(req.Billing.Email), req.ShippingMethod, req.PaymentMethod, coupons.Normalize(req.CouponCode))
	for _, l := range lines {
		fmt.Fprintf(h, "|%s:%d", l.ProductID, l.Quantity)
	}
	return "auto-" + hex.EncodeToString(h.Sum(nil))[:32]
}

func snapshot(lines []CartLine) []orders.Item {
	out := make([]orders.Item, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Image:     l.Image,
		})
	}
	return out
}
