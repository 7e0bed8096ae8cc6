package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repo is the PostgreSQL Store. Items, address and coupon are JSONB; the
// total is numeric(12,2) and read back as text to keep decimal precision.
type Repo struct{ DB *pgxpool.Pool }

const selectOrder = `SELECT id, tracking_id, items, total_amount::text, status, order_date,
       estimated_delivery, shipping_address, payment_method, coupon_applied, customer_email
  FROM orders`

func (r *Repo) Add(ctx context.Context, o Order) (string, error) {
	if o.TrackingID == "" {
		o.TrackingID = GenerateTrackingID()
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusProcessing
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	var coupon []byte
	if o.CouponApplied != nil {
		if coupon, err = json.Marshal(o.CouponApplied); err != nil {
			return "", fmt.Errorf("encode coupon: %w", err)
		}
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO orders(id, tracking_id, items, total_amount, status, order_date,
		                   estimated_delivery, shipping_address, payment_method, coupon_applied, customer_email)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.TrackingID, items, o.TotalAmount.StringFixed(2), string(o.Status), o.OrderDate,
		o.EstimatedDelivery, addr, o.PaymentMethod, coupon, o.CustomerEmail,
	)
	if err != nil {
		return "", err
	}
	return o.TrackingID, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return r.one(ctx, selectOrder+` WHERE id=$1`, id)
}

func (r *Repo) GetByTrackingID(ctx context.Context, trackingID string) (Order, error) {
	return r.one(ctx, selectOrder+` WHERE tracking_id=$1 ORDER BY order_date DESC LIMIT 1`, trackingID)
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, selectOrder+` ORDER BY order_date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) (Order, error) {
	if !s.Valid() {
		return Order{}, ErrInvalidStatus
	}
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, string(s))
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		return Order{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) one(ctx context.Context, q string, arg any) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                   Order
		items, addr, coupon []byte
		total, status       string
	)
	if err := row.Scan(&o.ID, &o.TrackingID, &items, &total, &status, &o.OrderDate,
		&o.EstimatedDelivery, &addr, &o.PaymentMethod, &coupon, &o.CustomerEmail); err != nil {
		return Order{}, err
	}
	var err error
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("decode total: %w", err)
	}
	o.Status = Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return Order{}, fmt.Errorf("decode address: %w", err)
	}
	if len(coupon) > 0 {
		o.CouponApplied = &AppliedCoupon{}
		if err := json.Unmarshal(coupon, o.CouponApplied); err != nil {
			return Order{}, fmt.Errorf("decode coupon: %w", err)
		}
	}
	return o, nil
}
