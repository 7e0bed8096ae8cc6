package orders

import (
	"encoding/json"
	"time"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // EventOrderPlaced
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "catrink-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPlacedPayload carries the rendered operator email so the relay does
// not need catalog or pricing access.
type OrderPlacedPayload struct {
	OrderID    string `json:"order_id"`
	TrackingID string `json:"tracking_id"`
	TemplateID string `json:"template_id"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	ReplyTo    string `json:"reply_to,omitempty"`
}
