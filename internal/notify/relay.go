package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/catrink-storefront/internal/kafka"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

// Relay consumes order.notification and forwards each event once to Next.
type Relay struct {
	Dedup   kv.Store
	Next    Notifier
	Service string
	Log     *slog.Logger
}

// HandleOrderPlaced: dipasang sebagai handler consumer.
func (r *Relay) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		r.logger().Warn("drop undecodable event", "offset", m.Offset, "err", err)
		return nil // poison message: commit supaya tidak di-retry terus
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	} // ignore

	// 2) dedup via kv (pakai event_id); key dilepas lagi kalau kirim gagal
	dkey := fmt.Sprintf(redisx.KeyDedup, r.Service, env.EventID)
	fresh, err := r.Dedup.SetNX(ctx, dkey, []byte("1"), redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	if !fresh {
		return nil
	}

	// 3) decode payload
	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		r.logger().Warn("drop bad payload", "event_id", env.EventID, "err", err)
		return nil
	}

	// 4) kirim
	err = r.Next.Notify(ctx, Message{
		TemplateID: p.TemplateID,
		To:         p.To,
		Subject:    p.Subject,
		Body:       p.Body,
		ReplyTo:    p.ReplyTo,
		OrderID:    p.OrderID,
		TrackingID: p.TrackingID,
	})
	if err != nil {
		if derr := r.Dedup.Delete(ctx, dkey); derr != nil {
			// key tertinggal sampai TTLDedup, retry akan dianggap duplikat
			r.logger().Warn("drop dedup key", "key", dkey, "tracking_id", p.TrackingID, "err", derr)
		}
		return fmt.Errorf("relay %s: %w", p.TrackingID, err)
	}
	r.logger().Info("notification relayed", "order_id", p.OrderID, "tracking_id", p.TrackingID, "trace_id", env.TraceID)
	return nil
}

func (r *Relay) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
