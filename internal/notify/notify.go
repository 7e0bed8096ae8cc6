// Package notify delivers the operator notification for a placed order.
// Delivery is best effort: a failed send never fails the order.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/shopspring/decimal"
)

type Message struct {
	TemplateID string
	To         string
	Subject    string
	Body       string
	ReplyTo    string

	// OrderID and TrackingID identify the order for partitioning and logs.
	OrderID    string
	TrackingID string
}

type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

var (
	_ Notifier = (*EmailRelay)(nil)
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)

const (
	fromName       = "Catrink Order System"
	defaultReplyTo = "noreply@catrink.com"
)

// OrderDetails is what OrderMessage needs beyond the stored order.
type OrderDetails struct {
	Order    orders.Order
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Pickup   bool
	Phone    string
}

// OrderMessage renders the operator email for a placed order.
func OrderMessage(to, templateID string, d OrderDetails) Message {
	o := d.Order
	a := o.ShippingAddress

	var items strings.Builder
	for _, it := range o.Items {
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&items, "• %dx %s %s - $%s\n", it.Quantity, it.Name, it.Image, line.StringFixed(2))
	}

	delivery := "Home Delivery"
	if d.Pickup {
		delivery = "Store Pickup"
	}
	coupon := ""
	if o.CouponApplied != nil {
		coupon = fmt.Sprintf("🎟️ Coupon (%s): -$%s\n", o.CouponApplied.Code, d.Discount.StringFixed(2))
	}

	var b strings.Builder
	b.WriteString("🐱 NEW CATRINK ORDER RECEIVED! 🐱\n\n")
	b.WriteString("ORDER DETAILS:\n")
	fmt.Fprintf(&b, "📦 Order ID: %s\n", o.TrackingID)
	fmt.Fprintf(&b, "📅 Order Date: %s\n", o.OrderDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "🚚 Delivery Method: %s\n", delivery)
	fmt.Fprintf(&b, "💳 Payment Method: %s\n\n", strings.ToUpper(o.PaymentMethod))
	b.WriteString("CUSTOMER INFO:\n")
	fmt.Fprintf(&b, "👤 Name: %s\n", a.FullName)
	fmt.Fprintf(&b, "📧 Email: %s\n", orNotProvided(o.CustomerEmail))
	fmt.Fprintf(&b, "📱 Phone: %s\n\n", orNotProvided(d.Phone))
	b.WriteString("SHIPPING ADDRESS:\n")
	fmt.Fprintf(&b, "📍 %s\n   %s, %s %s\n   %s\n\n", a.Street, a.City, a.State, a.ZipCode, a.Country)
	b.WriteString("ITEMS ORDERED:\n")
	b.WriteString(items.String())
	b.WriteString("\nPRICING BREAKDOWN:\n")
	fmt.Fprintf(&b, "💰 Subtotal: $%s\n", d.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "🚚 Shipping: $%s\n", d.Shipping.StringFixed(2))
	fmt.Fprintf(&b, "🧾 Tax: $%s\n", d.Tax.StringFixed(2))
	b.WriteString(coupon)
	fmt.Fprintf(&b, "💵 TOTAL: $%s\n\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "📅 Estimated Delivery: %s\n\n", o.EstimatedDelivery.Format("2006-01-02"))
	b.WriteString("🎯 This order is ready for processing!\nMeow! 🐱\n")

	replyTo := o.CustomerEmail
	if replyTo == "" {
		replyTo = defaultReplyTo
	}
	return Message{
		TemplateID: templateID,
		To:         to,
		Subject:    fmt.Sprintf("🐱 New Order #%s - $%s", o.TrackingID, o.TotalAmount.StringFixed(2)),
		Body:       b.String(),
		ReplyTo:    replyTo,
		OrderID:    o.ID,
		TrackingID: o.TrackingID,
	}
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

// LogNotifier only logs; used in development.
type LogNotifier struct {
	Log *slog.Logger
}

func (l *LogNotifier) Notify(_ context.Context, m Message) error {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("order notification", "to", m.To, "subject", m.Subject, "tracking_id", m.TrackingID)
	return nil
}
