package coupons

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore(kv.NewMemory())
	require.NoError(t, s.Seed(context.Background()))
	return s
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolveDefaults(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	tests := []struct {
		name     string
		code     string
		subtotal string
		want     string
	}{
		{"FIRSTCAT is 20 percent", "FIRSTCAT", "25.00", "5.00"},
		{"lowercase code", "firstcat", "25.00", "5.00"},
		{"padded code", "  FirstCat ", "9.98", "2.00"},
		{"ENERGY50 is flat 5", "ENERGY50", "15.00", "5.00"},
		{"ENERGY50 ignores subtotal size", "energy50", "120.00", "5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, disc, err := s.Resolve(ctx, tt.code, d(tt.subtotal), now)
			require.NoError(t, err)
			assert.NotEmpty(t, c.Code)
			assert.True(t, d(tt.want).Equal(disc), "discount = %s, want %s", disc, tt.want)
		})
	}
}

func TestResolveRejections(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	_, disc, err := s.Resolve(ctx, "MEOW100", d("50"), now)
	require.ErrorIs(t, err, ErrInvalidCoupon)
	assert.True(t, disc.IsZero())

	_, _, err = s.Resolve(ctx, "ENERGY50", d("14.99"), now)
	require.ErrorIs(t, err, ErrBelowMinimum)
	require.ErrorIs(t, err, ErrInvalidCoupon)

	_, _, err = s.Resolve(ctx, "FIRSTCAT", d("10"), time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrCouponExpired)
}

func TestResolveInactiveAndExhausted(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	_, err := s.Create(ctx, Coupon{
		Code: "off", Discount: d("10"), Kind: KindPercentage,
		MaxUses: 1, ExpiresAt: now.Add(time.Hour), Active: false,
	})
	require.NoError(t, err)
	_, _, err = s.Resolve(ctx, "OFF", d("10"), now)
	require.ErrorIs(t, err, ErrCouponInactive)

	_, err = s.Create(ctx, Coupon{
		Code: "once", Discount: d("1"), Kind: KindFixed,
		MaxUses: 1, CurrentUses: 1, ExpiresAt: now.Add(time.Hour), Active: true,
	})
	require.NoError(t, err)
	_, _, err = s.Resolve(ctx, "once", d("10"), now)
	require.ErrorIs(t, err, ErrCouponExhausted)
}

func TestRedeemNeverExceedsMaxUses(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())
	_, err := s.Create(ctx, Coupon{
		Code: "LAST3", Discount: d("1"), Kind: KindFixed,
		MaxUses: 3, ExpiresAt: now.Add(time.Hour), Active: true,
	})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Redeem(ctx, "last3", now); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrCouponExhausted)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	c, err := s.Get(ctx, "LAST3")
	require.NoError(t, err)
	assert.Equal(t, 3, c.CurrentUses)

	require.NoError(t, s.Release(ctx, "LAST3"))
	c, _ = s.Get(ctx, "LAST3")
	assert.Equal(t, 2, c.CurrentUses)
}

func TestReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.Release(ctx, "FIRSTCAT"))
	c, err := s.Get(ctx, "FIRSTCAT")
	require.NoError(t, err)
	assert.Equal(t, 0, c.CurrentUses)
}

func TestCreateValidation(t *testing.T) {
	base := Coupon{
		Code: "X", Discount: d("10"), Kind: KindPercentage,
		MaxUses: 10, ExpiresAt: now.Add(time.Hour), Active: true,
	}
	tests := []struct {
		name   string
		mutate func(*Coupon)
	}{
		{"empty code", func(c *Coupon) { c.Code = " " }},
		{"unknown kind", func(c *Coupon) { c.Kind = "bogo" }},
		{"zero discount", func(c *Coupon) { c.Discount = decimal.Zero }},
		{"percentage above 100", func(c *Coupon) { c.Discount = d("101") }},
		{"negative minimum", func(c *Coupon) { c.MinOrder = d("-1") }},
		{"no uses", func(c *Coupon) { c.MaxUses = 0 }},
		{"uses above cap", func(c *Coupon) { c.CurrentUses = 11 }},
		{"no expiry", func(c *Coupon) { c.ExpiresAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			_, err := NewStore(kv.NewMemory()).Create(context.Background(), c)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	_, err := s.Create(ctx, Coupon{
		Code: "firstcat", Discount: d("5"), Kind: KindFixed,
		MaxUses: 1, ExpiresAt: now.Add(time.Hour), Active: true,
	})
	require.ErrorIs(t, err, ErrExists, "codes are unique case-insensitively")

	c, err := s.Get(ctx, "ENERGY50")
	require.NoError(t, err)
	c.Active = false
	_, err = s.Update(ctx, "energy50", c)
	require.NoError(t, err)

	c, err = s.Get(ctx, "ENERGY50")
	require.NoError(t, err)
	assert.False(t, c.Active)

	require.NoError(t, s.Delete(ctx, "ENERGY50"))
	require.ErrorIs(t, s.Delete(ctx, "ENERGY50"), ErrNotFound)

	cs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}
