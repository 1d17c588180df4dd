package ports

import "context"

// EventPublisher pushes order status events onto the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}
