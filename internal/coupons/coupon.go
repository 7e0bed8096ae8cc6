package coupons

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

var (
	ErrInvalidCoupon = errors.New("invalid coupon code")

	ErrCouponInactive  = fmt.Errorf("%w: coupon is not active", ErrInvalidCoupon)
	ErrCouponExpired   = fmt.Errorf("%w: coupon has expired", ErrInvalidCoupon)
	ErrBelowMinimum    = fmt.Errorf("%w: order below coupon minimum", ErrInvalidCoupon)
	ErrCouponExhausted = fmt.Errorf("%w: coupon usage limit reached", ErrInvalidCoupon)

	ErrExists  = errors.New("coupon already exists")
	ErrInvalid = errors.New("invalid coupon definition")
)

type Coupon struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Kind        Kind            `json:"kind"`
	MinOrder    decimal.Decimal `json:"min_order"`
	MaxUses     int             `json:"max_uses"`
	CurrentUses int             `json:"current_uses"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Active      bool            `json:"active"`
}

// Normalize uppercases and trims a user-entered code; codes compare
// case-insensitively.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports why c cannot be redeemed at now, ignoring the order minimum.
func (c Coupon) Usable(now time.Time) error {
	switch {
	case !c.Active:
		return ErrCouponInactive
	case !now.Before(c.ExpiresAt):
		return ErrCouponExpired
	case c.CurrentUses >= c.MaxUses:
		return ErrCouponExhausted
	}
	return nil
}

// Check is Usable plus the subtotal >= MinOrder rule.
func (c Coupon) Check(subtotal decimal.Decimal, now time.Time) error {
	if err := c.Usable(now); err != nil {
		return err
	}
	if subtotal.LessThan(c.MinOrder) {
		return ErrBelowMinimum
	}
	return nil
}

// DiscountFor returns the discount c grants on subtotal, rounded to cents.
// Fixed coupons grant their flat amount whatever the subtotal.
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if c.Kind == KindPercentage {
		return subtotal.Mul(c.Discount).Div(decimal.NewFromInt(100)).Round(2)
	}
	return c.Discount.Round(2)
}

func (c Coupon) validate() error {
	switch {
	case c.Code == "":
		return fmt.Errorf("%w: code required", ErrInvalid)
	case c.Kind != KindPercentage && c.Kind != KindFixed:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, c.Kind)
	case !c.Discount.IsPositive():
		return fmt.Errorf("%w: discount must be > 0", ErrInvalid)
	case c.Kind == KindPercentage && c.Discount.GreaterThan(decimal.NewFromInt(100)):
		return fmt.Errorf("%w: percentage above 100", ErrInvalid)
	case c.MinOrder.IsNegative():
		return fmt.Errorf("%w: min_order must be >= 0", ErrInvalid)
	case c.MaxUses < 1:
		return fmt.Errorf("%w: max_uses must be >= 1", ErrInvalid)
	case c.CurrentUses < 0 || c.CurrentUses > c.MaxUses:
		return fmt.Errorf("%w: current_uses must be within 0..max_uses", ErrInvalid)
	case c.ExpiresAt.IsZero():
		return fmt.Errorf("%w: expires_at required", ErrInvalid)
	}
	return nil
}

// Defaults are the two launch promotions.
func Defaults() []Coupon {
	exp := time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC)
	return []Coupon{
		{
			Code:      "FIRSTCAT",
			Discount:  decimal.NewFromInt(20),
			Kind:      KindPercentage,
			MinOrder:  decimal.Zero,
			MaxUses:   1000,
			ExpiresAt: exp,
			Active:    true,
		},
		{
			Code:      "ENERGY50",
			Discount:  decimal.NewFromInt(5),
			Kind:      KindFixed,
			MinOrder:  decimal.NewFromInt(15),
			MaxUses:   500,
			ExpiresAt: exp,
			Active:    true,
		},
	}
}
