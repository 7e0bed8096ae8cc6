package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/shopspring/decimal"
)

const keyCoupons = "catrink:coupons"

var ErrNotFound = errors.New("coupon not found")

type Store struct {
	kv kv.Store
}

func NewStore(s kv.Store) *Store { return &Store{kv: s} }

func (s *Store) Seed(ctx context.Context) error {
	return kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		if cur == nil {
			return Defaults(), nil
		}
		return cur, nil
	})
}

func (s *Store) List(ctx context.Context) ([]Coupon, error) {
	var out []Coupon
	err := kv.GetJSON(ctx, s.kv, keyCoupons, &out)
	if errors.Is(err, kv.ErrNotFound) {
		return []Coupon{}, nil
	}
	return out, err
}

func (s *Store) Get(ctx context.Context, code string) (Coupon, error) {
	cs, err := s.List(ctx)
	if err != nil {
		return Coupon{}, err
	}
	code = Normalize(code)
	for _, c := range cs {
		if c.Code == code {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

// Resolve looks up code for an order of subtotal. Unknown codes fail with
// ErrInvalidCoupon; known codes that cannot apply fail with a more specific
// error that still matches ErrInvalidCoupon.
func (s *Store) Resolve(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (Coupon, decimal.Decimal, error) {
	c, err := s.Get(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return Coupon{}, decimal.Zero, ErrInvalidCoupon
	}
	if err != nil {
		return Coupon{}, decimal.Zero, err
	}
	if err := c.Check(subtotal, now); err != nil {
		return c, decimal.Zero, err
	}
	return c, c.DiscountFor(subtotal), nil
}

// Redeem increments CurrentUses atomically; two buyers racing for the last
// use cannot both succeed.
func (s *Store) Redeem(ctx context.Context, code string, now time.Time) (Coupon, error) {
	code = Normalize(code)
	var redeemed Coupon
	err := kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		for i := range cur {
			if cur[i].Code != code {
				continue
			}
			if err := cur[i].Usable(now); err != nil {
				return nil, err
			}
			cur[i].CurrentUses++
			redeemed = cur[i]
			return cur, nil
		}
		return nil, ErrInvalidCoupon
	})
	return redeemed, err
}

// Release gives back one use after a failed checkout.
func (s *Store) Release(ctx context.Context, code string) error {
	code = Normalize(code)
	return kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		for i := range cur {
			if cur[i].Code == code {
				if cur[i].CurrentUses > 0 {
					cur[i].CurrentUses--
				}
				return cur, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *Store) Create(ctx context.Context, c Coupon) (Coupon, error) {
	c.Code = Normalize(c.Code)
	if err := c.validate(); err != nil {
		return Coupon{}, err
	}
	err := kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		for _, x := range cur {
			if x.Code == c.Code {
				return nil, ErrExists
			}
		}
		return append(cur, c), nil
	})
	return c, err
}

// Update replaces the coupon stored under code; the code itself is kept.
func (s *Store) Update(ctx context.Context, code string, c Coupon) (Coupon, error) {
	c.Code = Normalize(code)
	if err := c.validate(); err != nil {
		return Coupon{}, err
	}
	err := kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		for i := range cur {
			if cur[i].Code == c.Code {
				cur[i] = c
				return cur, nil
			}
		}
		return nil, ErrNotFound
	})
	return c, err
}

func (s *Store) Delete(ctx context.Context, code string) error {
	code = Normalize(code)
	return kv.UpdateJSON(ctx, s.kv, keyCoupons, func(cur []Coupon) ([]Coupon, error) {
		for i := range cur {
			if cur[i].Code == code {
				return append(cur[:i], cur[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}
