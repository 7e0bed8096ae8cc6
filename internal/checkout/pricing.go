package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
	"github.com/shopspring/decimal"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPickup   ShippingMethod = "pickup"
)

var shippingFees = map[ShippingMethod]decimal.Decimal{
	ShippingStandard: decimal.RequireFromString("4.99"),
	ShippingExpress:  decimal.RequireFromString("9.99"),
	ShippingPickup:   decimal.Zero,
}

func (m ShippingMethod) Fee() (decimal.Decimal, bool) {
	f, ok := shippingFees[m]
	return f, ok
}

type PaymentMethod string

const (
	PaymentStripe   PaymentMethod = "stripe"
	PaymentRazorpay PaymentMethod = "razorpay"
	PaymentPaypal   PaymentMethod = "paypal"
	PaymentCard     PaymentMethod = "card"
	PaymentUPI      PaymentMethod = "upi"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentStripe, PaymentRazorpay, PaymentPaypal, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// TaxRate is flat; there is no jurisdiction logic.
var TaxRate = decimal.RequireFromString("0.10")

type Breakdown struct {
	Subtotal decimal.Decimal       `json:"subtotal"`
	Discount decimal.Decimal       `json:"discount"`
	Tax      decimal.Decimal       `json:"tax"`
	Shipping decimal.Decimal       `json:"shipping"`
	Total    decimal.Decimal       `json:"total"`
	Coupon   *orders.AppliedCoupon `json:"coupon,omitempty"`

	// CouponError is set when a code was entered but does not apply; the
	// breakdown is then undiscounted.
	CouponError string `json:"coupon_error,omitempty"`
	couponErr   error
}

// Err returns the coupon rejection behind CouponError, if any.
func (b Breakdown) Err() error { return b.couponErr }

type CouponResolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (coupons.Coupon, decimal.Decimal, error)
}

// Price computes the order totals:
//
//	subtotal = Σ price × qty
//	tax      = round2((subtotal − discount) × 0.10)
//	total    = subtotal − discount + tax + shipping
//
// Only infrastructure failures are returned as errors; a rejected coupon is
// reported on the Breakdown.
func Price(ctx context.Context, lines []CartLine, method ShippingMethod, code string, cs CouponResolver, now time.Time) (Breakdown, error) {
	fee, ok := method.Fee()
	if !ok {
		return Breakdown{}, validation.New("shippingMethod", "unknown shipping method")
	}

	var b Breakdown
	b.Subtotal = decimal.Zero
	for _, l := range lines {
		b.Subtotal = b.Subtotal.Add(l.Total())
	}
	b.Discount = decimal.Zero

	if code = coupons.Normalize(code); code != "" {
		c, disc, err := cs.Resolve(ctx, code, b.Subtotal, now)
		switch {
		case errors.Is(err, coupons.ErrInvalidCoupon):
			b.couponErr = err
			b.CouponError = err.Error()
		case err != nil:
			return Breakdown{}, err
		default:
			b.Discount = disc
			b.Coupon = &orders.AppliedCoupon{Code: c.Code, Discount: disc, Kind: string(c.Kind)}
		}
	}

	b.Tax = b.Subtotal.Sub(b.Discount).Mul(TaxRate).Round(2)
	b.Shipping = fee
	b.Total = b.Subtotal.Sub(b.Discount).Add(b.Tax).Add(b.Shipping)
	return b, nil
}
