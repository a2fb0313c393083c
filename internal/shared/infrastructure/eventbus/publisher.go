// Package eventbus publishes domain events to RabbitMQ. Local mode swaps in
// the noop publisher; nothing downstream needs to know.
package eventbus

import (
	"context"
)

// Publisher sends serialized domain events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}
