// Package outbox implements the transactional outbox: domain events are
// written to a table in the same transaction as the aggregate, then a
// background processor drains the table to the broker. A broker outage
// delays events instead of losing them.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is an outbox row awaiting publication.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	RoutingKey    string
	Payload       json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	RetryCount    int
	LastError     *string
}

// NewMessage serializes a domain event into an outbox row.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished reports whether the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry reports whether the message is under the retry ceiling.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
