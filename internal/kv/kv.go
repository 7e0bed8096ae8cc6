// Package kv is the key-value persistence boundary shared by the catalog,
// coupon, profile, session and checkout stores. Redis backs it in production
// (see redisx.Store); Memory serves development and tests.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is the minimal surface the stores need. Update must apply fn
// atomically with respect to concurrent writers of the same key; old is nil
// when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error
}

// GetJSON decodes the value at key into out.
func GetJSON(ctx context.Context, s Store, key string, out any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b, ttl)
}

// UpdateJSON runs fn over the decoded value at key (zero T when absent) and
// stores the result.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(cur T) (T, error)) error {
	return s.Update(ctx, key, func(old []byte) ([]byte, error) {
		var cur T
		if old != nil {
			if err := json.Unmarshal(old, &cur); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}
