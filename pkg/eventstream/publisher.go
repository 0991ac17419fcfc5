package eventstream

import "context"

// Publisher publishes order events to an event stream backend.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error
	Close() error
}
