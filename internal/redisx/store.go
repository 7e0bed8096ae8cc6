package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds the optimistic WATCH/MULTI loop in Update.
const maxTxRetries = 16

// Store implements kv.Store on redis. Update uses WATCH + MULTI so concurrent
// writers (coupon redemption, catalog edits) never lose an increment.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) k(key string) string { return s.prefix + key }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.k(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	return b, err
}

func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.k(key), val, ttl).Err()
}

func (s *Store) SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, s.k(key), val, ttl).Result()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.k(key)).Err()
}

func (s *Store) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	full := s.k(key)
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			old, err = nil, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(old)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue // ada writer lain, ulangi
		}
		return err
	}
	return fmt.Errorf("redis update %s: too much contention", key)
}

var _ kv.Store = (*Store)(nil)
