package notify

import (
	"context"
	"time"

	kafkax "github.com/ariefcatur/catrink-storefront/internal/kafka"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

// KafkaNotifier hands the message to cmd/notifier through the
// order.notification topic.
type KafkaNotifier struct {
	Producer publisher
	Service  string
}

func (k *KafkaNotifier) Notify(ctx context.Context, m Message) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		TraceID:       traceID(ctx),
		CorrelationID: m.OrderID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:    m.OrderID,
			TrackingID: m.TrackingID,
			TemplateID: m.TemplateID,
			To:         m.To,
			Subject:    m.Subject,
			Body:       m.Body,
			ReplyTo:    m.ReplyTo,
		}),
	}
	return k.Producer.Publish(orders.PartitionKey(m.OrderID), kafkax.MustMarshal(ev),
		kafkax.EventHeaders(orders.EventOrderPlaced, 1)...)
}

// traceID reuses the chi request id so api and notifier logs line up.
func traceID(ctx context.Context) string { return middleware.GetReqID(ctx) }
