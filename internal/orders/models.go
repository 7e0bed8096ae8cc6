package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a snapshot of a cart line at purchase time; later catalog edits
// do not touch it.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

type Address struct {
	FullName string `json:"full_name"`
	Street   string `json:"street"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zip_code,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type AppliedCoupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Kind     string          `json:"kind"`
}

type Order struct {
	ID                string          `json:"id"`
	TrackingID        string          `json:"tracking_id"`
	Items             []Item          `json:"items"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            Status          `json:"status"` // lihat status.go
	OrderDate         time.Time       `json:"order_date"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	ShippingAddress   Address         `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	CouponApplied     *AppliedCoupon  `json:"coupon_applied,omitempty"`
	CustomerEmail     string          `json:"customer_email"`
}

func (o Order) clone() Order {
	o.Items = append([]Item(nil), o.Items...)
	if o.CouponApplied != nil {
		c := *o.CouponApplied
		o.CouponApplied = &c
	}
	return o
}
