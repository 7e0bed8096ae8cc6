package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/catrink-storefront/internal/kafka"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDetails() OrderDetails {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return OrderDetails{
		Order: orders.Order{
			ID:         "ord-1",
			TrackingID: "CAT-ABC123!@#XYZ",
			Items: []orders.Item{{
				ProductID: "mango-bluster", Name: "Mango Bluster", Image: "🥭",
				Price: d("4.99"), Quantity: 2,
			}},
			TotalAmount:       d("13.97"),
			OrderDate:         at,
			EstimatedDelivery: at.AddDate(0, 0, 7),
			ShippingAddress:   orders.Address{FullName: "Nia", Street: "Jl. Kucing 1", City: "Bandung"},
			PaymentMethod:     "upi",
			CouponApplied:     &orders.AppliedCoupon{Code: "FIRSTCAT", Discount: d("2.00"), Kind: "percentage"},
			CustomerEmail:     "nia@x.io",
		},
		Subtotal: d("9.98"),
		Discount: d("2.00"),
		Tax:      d("0.80"),
		Shipping: d("4.99"),
	}
}

func TestOrderMessage(t *testing.T) {
	m := OrderMessage("ops@catrink.in", "template_c2wun1e", sampleDetails())

	assert.Equal(t, "ops@catrink.in", m.To)
	assert.Equal(t, "template_c2wun1e", m.TemplateID)
	assert.Equal(t, "nia@x.io", m.ReplyTo)
	assert.Equal(t, "ord-1", m.OrderID)
	assert.Equal(t, "🐱 New Order #CAT-ABC123!@#XYZ - $13.97", m.Subject)
	for _, want := range []string{
		"📦 Order ID: CAT-ABC123!@#XYZ",
		"🚚 Delivery Method: Home Delivery",
		"💳 Payment Method: UPI",
		"• 2x Mango Bluster 🥭 - $9.98",
		"💰 Subtotal: $9.98",
		"🎟️ Coupon (FIRSTCAT): -$2.00",
		"💵 TOTAL: $13.97",
		"📅 Estimated Delivery: 2026-10-21",
		"📱 Phone: Not provided",
	} {
		assert.Contains(t, m.Body, want)
	}
}

func TestOrderMessagePickupNoCoupon(t *testing.T) {
	det := sampleDetails()
	det.Pickup = true
	det.Order.CouponApplied = nil
	det.Order.CustomerEmail = ""

	m := OrderMessage("ops@catrink.in", "t", det)
	assert.Contains(t, m.Body, "Store Pickup")
	assert.NotContains(t, m.Body, "Coupon")
	assert.Equal(t, defaultReplyTo, m.ReplyTo)
}

func TestEmailRelay(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "OK")
	}))
	defer srv.Close()

	e := NewEmailRelay(srv.URL, "service_c2wun1e", "pub-key")
	err := e.Notify(context.Background(), Message{TemplateID: "tpl", To: "ops@catrink.in", Subject: "s", Body: "b", ReplyTo: "r@x.io"})
	require.NoError(t, err)

	assert.Equal(t, "service_c2wun1e", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pub-key", got.UserID)
	assert.Equal(t, "ops@catrink.in", got.TemplateParams["to_email"])
	assert.Equal(t, fromName, got.TemplateParams["from_name"])
	assert.Equal(t, "b", got.TemplateParams["message"])
}

func TestEmailRelayRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "The Public Key is invalid")
	}))
	defer srv.Close()

	err := NewEmailRelay(srv.URL, "svc", "bad").Notify(context.Background(), Message{})
	require.ErrorContains(t, err, "status 400")
	require.ErrorContains(t, err, "Public Key is invalid")
}

type fakePublisher struct {
	key, value []byte
	headers    []kafkago.Header
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) error {
	f.key, f.value, f.headers = key, value, headers
	return nil
}

func TestKafkaNotifierEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	k := &KafkaNotifier{Producer: pub, Service: "catrink-api"}
	m := OrderMessage("ops@catrink.in", "tpl", sampleDetails())
	require.NoError(t, k.Notify(context.Background(), m))

	assert.Equal(t, []byte("ord-1"), pub.key)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.value, &env))
	assert.Equal(t, orders.EventOrderPlaced, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "catrink-api", env.Producer)
	assert.Equal(t, "ord-1", env.CorrelationID)

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, m.Body, p.Body)
	assert.Equal(t, "CAT-ABC123!@#XYZ", p.TrackingID)
}

type recorder struct {
	mu   sync.Mutex
	got  []Message
	fail error
}

func (r *recorder) Notify(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.got = append(r.got, m)
	return nil
}

func placedEvent(t *testing.T, eventID string) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:      eventID,
		EventType:    orders.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID: "ord-1", TrackingID: "CAT-X", To: "ops@catrink.in", Subject: "s", Body: "b",
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestRelayDedupsByEventID(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	r := &Relay{Dedup: kv.NewMemory(), Next: rec, Service: "notifier"}

	ev := placedEvent(t, uuid.NewString())
	require.NoError(t, r.HandleOrderPlaced(ctx, ev))
	require.NoError(t, r.HandleOrderPlaced(ctx, ev))
	require.NoError(t, r.HandleOrderPlaced(ctx, placedEvent(t, uuid.NewString())))

	require.Len(t, rec.got, 2)
	assert.Equal(t, "ops@catrink.in", rec.got[0].To)
}

func TestRelayRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{fail: errors.New("smtp down")}
	r := &Relay{Dedup: kv.NewMemory(), Next: rec, Service: "notifier"}

	ev := placedEvent(t, "evt-1")
	require.Error(t, r.HandleOrderPlaced(ctx, ev))

	rec.fail = nil
	require.NoError(t, r.HandleOrderPlaced(ctx, ev))
	assert.Len(t, rec.got, 1)
}

func TestRelayIgnoresOtherEvents(t *testing.T) {
	rec := &recorder{}
	r := &Relay{Dedup: kv.NewMemory(), Next: rec, Service: "notifier"}

	other := kafkax.MustMarshal(orders.Envelope{EventID: "e", EventType: "Something"})
	require.NoError(t, r.HandleOrderPlaced(context.Background(), kafkago.Message{Value: other}))
	require.NoError(t, r.HandleOrderPlaced(context.Background(), kafkago.Message{Value: []byte("{")}))
	assert.Empty(t, rec.got)
}

// stuckDedup cannot drop keys, like a redis that went away mid-handler.
type stuckDedup struct {
	*kv.Memory
}

func (stuckDedup) Delete(context.Context, string) error { return errors.New("redis: connection refused") }

func TestRelayLogsStuckDedupKey(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{fail: errors.New("smtp down")}
	r := &Relay{
		Dedup:   stuckDedup{kv.NewMemory()},
		Next:    rec,
		Service: "notifier",
		Log:     slog.New(slog.NewTextHandler(&buf, nil)),
	}

	require.Error(t, r.HandleOrderPlaced(context.Background(), placedEvent(t, "evt-2")))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "drop dedup key")
	assert.Contains(t, buf.String(), "dedup:notifier:evt-2")
}
