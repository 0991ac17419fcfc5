package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeOrderPlaced is emitted after an order is committed.
	EventTypeOrderPlaced = "shelf.order.placed"
)

// OrderPlacedEvent is a transport-neutral event payload for a placed order.
type OrderPlacedEvent struct {
	SchemaVersion int                   `json:"schema_version"`
	EventType     string                `json:"event_type"`
	EventID       string                `json:"event_id"`
	EmittedAt     time.Time             `json:"emitted_at"`
	Order         catalog.OrderResponse `json:"order"`
	Total         catalog.Money         `json:"total"`
}

// NewOrderPlacedEvent builds the event for a committed order.
func NewOrderPlacedEvent(order *catalog.Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeOrderPlaced,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Order:         order.Response(),
		Total:         order.Total(),
	}
}
