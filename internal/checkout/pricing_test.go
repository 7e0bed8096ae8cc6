package checkout

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seededCoupons(t *testing.T) *coupons.Store {
	t.Helper()
	cs := coupons.NewStore(kv.NewMemory())
	require.NoError(t, cs.Seed(context.Background()))
	return cs
}

func mango() catalog.Product {
	return catalog.Product{ID: "mango-bluster", Name: "Mango Bluster", Price: d("4.99"), Image: "🥭"}
}

func lines(price string, qty int) []CartLine {
	return []CartLine{{ProductID: "p", Name: "P", Price: d(price), Quantity: qty}}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s = %s, want %s", what, got, want)
}

func TestCart(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(mango(), 2))
	require.NoError(t, c.Add(catalog.Product{ID: "night", Name: "Night Prowler", Price: d("5.49")}, 1))
	assertDec(t, "15.47", c.Subtotal(), "subtotal")

	require.NoError(t, c.Add(mango(), 1))
	assert.Equal(t, 2, c.Len(), "same product merges into one line")
	assertDec(t, "20.46", c.Subtotal(), "subtotal")

	require.NoError(t, c.SetQuantity("mango-bluster", 0))
	assert.Equal(t, 1, c.Len())
	assertDec(t, "5.49", c.Subtotal(), "subtotal after removal")

	require.ErrorIs(t, c.SetQuantity("ghost", 1), ErrNotInCart)
	require.Error(t, c.Add(mango(), 0))
	require.Error(t, c.SetQuantity("night", -1))

	c.Remove("night")
	assert.Zero(t, c.Len())
	assert.True(t, c.Subtotal().IsZero())
}

func TestCartQuantityBounds(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Cart) error
	}{
		{"huge single line", func(c *Cart) error { return c.Add(mango(), math.MaxInt) }},
		{"merge past cap", func(c *Cart) error {
			require.NoError(t, c.Add(mango(), MaxQuantity))
			return c.Add(mango(), 1)
		}},
		{"merge would overflow int", func(c *Cart) error {
			_ = c.Add(mango(), math.MaxInt)
			return c.Add(mango(), math.MaxInt)
		}},
		{"set past cap", func(c *Cart) error {
			require.NoError(t, c.Add(mango(), 1))
			return c.SetQuantity("mango-bluster", MaxQuantity+1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			require.Error(t, tt.run(&c))
			for _, l := range c.Lines() {
				assert.GreaterOrEqual(t, l.Quantity, 1)
				assert.LessOrEqual(t, l.Quantity, MaxQuantity)
			}
			assert.False(t, c.Subtotal().IsNegative())
		})
	}

	var c Cart
	require.NoError(t, c.Add(mango(), MaxQuantity-1))
	require.NoError(t, c.Add(mango(), 1))
	assert.Equal(t, MaxQuantity, c.Lines()[0].Quantity)
}

func TestCartLinesIsCopy(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(mango(), 1))
	ls := c.Lines()
	ls[0].Quantity = 50
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestPrice(t *testing.T) {
	ctx := context.Background()
	cs := seededCoupons(t)

	tests := []struct {
		name                                     string
		lines                                    []CartLine
		method                                   ShippingMethod
		code                                     string
		subtotal, discount, tax, shipping, total string
		couponErr                                bool
	}{
		{
			name: "standard no coupon", lines: lines("4.99", 2), method: ShippingStandard,
			subtotal: "9.98", discount: "0", tax: "1.00", shipping: "4.99", total: "15.97",
		},
		{
			name: "express", lines: lines("4.99", 2), method: ShippingExpress,
			subtotal: "9.98", discount: "0", tax: "1.00", shipping: "9.99", total: "20.97",
		},
		{
			name: "pickup charges no shipping", lines: lines("4.99", 2), method: ShippingPickup,
			subtotal: "9.98", discount: "0", tax: "1.00", shipping: "0", total: "10.98",
		},
		{
			name: "FIRSTCAT on 25", lines: lines("12.50", 2), method: ShippingPickup, code: "firstcat",
			subtotal: "25.00", discount: "5.00", tax: "2.00", shipping: "0", total: "22.00",
		},
		{
			name: "ENERGY50 flat five", lines: lines("5.00", 4), method: ShippingStandard, code: "ENERGY50",
			subtotal: "20.00", discount: "5.00", tax: "1.50", shipping: "4.99", total: "21.49",
		},
		{
			name: "ENERGY50 below minimum", lines: lines("4.99", 2), method: ShippingPickup, code: "ENERGY50",
			subtotal: "9.98", discount: "0", tax: "1.00", shipping: "0", total: "10.98", couponErr: true,
		},
		{
			name: "unknown code undiscounted", lines: lines("4.99", 2), method: ShippingStandard, code: "MEOW",
			subtotal: "9.98", discount: "0", tax: "1.00", shipping: "4.99", total: "15.97", couponErr: true,
		},
		{
			name: "tax rounds half away from zero", lines: lines("0.05", 1), method: ShippingPickup,
			subtotal: "0.05", discount: "0", tax: "0.01", shipping: "0", total: "0.06",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Price(ctx, tt.lines, tt.method, tt.code, cs, now)
			require.NoError(t, err)
			assertDec(t, tt.subtotal, b.Subtotal, "subtotal")
			assertDec(t, tt.discount, b.Discount, "discount")
			assertDec(t, tt.tax, b.Tax, "tax")
			assertDec(t, tt.shipping, b.Shipping, "shipping")
			assertDec(t, tt.total, b.Total, "total")
			if tt.couponErr {
				assert.NotEmpty(t, b.CouponError)
				assert.ErrorIs(t, b.Err(), coupons.ErrInvalidCoupon)
				assert.Nil(t, b.Coupon)
			} else {
				assert.Empty(t, b.CouponError)
			}
		})
	}
}

func TestPriceTaxProperty(t *testing.T) {
	ctx := context.Background()
	cs := seededCoupons(t)
	for cents := int64(0); cents <= 5000; cents += 37 {
		sub := decimal.New(cents, -2)
		b, err := Price(ctx, []CartLine{{ProductID: "p", Price: sub, Quantity: 1}}, ShippingPickup, "FIRSTCAT", cs, now)
		require.NoError(t, err)
		want := b.Subtotal.Sub(b.Discount).Mul(d("0.10")).Round(2)
		require.True(t, want.Equal(b.Tax), "subtotal %s", sub)
		require.True(t, b.Discount.LessThanOrEqual(b.Subtotal))
	}
}

func TestPriceUnknownShipping(t *testing.T) {
	_, err := Price(context.Background(), lines("1", 1), "drone", "", seededCoupons(t), now)
	assert.True(t, validation.IsValidation(err))
}
