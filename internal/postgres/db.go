package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id                 TEXT PRIMARY KEY,
	tracking_id        TEXT NOT NULL,
	items              JSONB NOT NULL,
	total_amount       NUMERIC(12,2) NOT NULL,
	status             TEXT NOT NULL,
	order_date         TIMESTAMPTZ NOT NULL,
	estimated_delivery TIMESTAMPTZ NOT NULL,
	shipping_address   JSONB NOT NULL,
	payment_method     TEXT NOT NULL,
	coupon_applied     JSONB,
	customer_email     TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS orders_tracking_id_idx ON orders (tracking_id);
CREATE INDEX IF NOT EXISTS orders_order_date_idx ON orders (order_date DESC);
`

// Migrate creates the order tables; safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
