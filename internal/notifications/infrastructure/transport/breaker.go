package transport

import (
	"context"
	"time"

	"github.com/chivvyhq/chivvy/internal/messages"
	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/sony/gobreaker/v2"
)

// Sender matches the scheduler's email transport port.
type Sender interface {
	Send(ctx context.Context, to string, msg messages.Message) error
}

// PushSender matches the scheduler's push transport port.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, msg messages.Message) error
}

func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// BreakerEmail wraps an email transport in a circuit breaker. Once the relay
// fails five times in a row the breaker opens; sends fail immediately for
// thirty seconds before a probe is allowed through. The scheduler treats a
// fast failure exactly like a slow one: no log entry, retry next pass.
type BreakerEmail struct {
	inner   Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerEmail wraps the given transport.
func NewBreakerEmail(inner Sender) *BreakerEmail {
	return &BreakerEmail{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[struct{}](breakerSettings("email")),
	}
}

func (b *BreakerEmail) Send(ctx context.Context, to string, msg messages.Message) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Send(ctx, to, msg)
	})
	return err
}

// BreakerPush wraps a push transport in a circuit breaker with the same
// policy as email.
type BreakerPush struct {
	inner   PushSender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPush wraps the given transport.
func NewBreakerPush(inner PushSender) *BreakerPush {
	return &BreakerPush{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[struct{}](breakerSettings("push")),
	}
}

func (b *BreakerPush) Send(ctx context.Context, sub *domain.PushSubscription, msg messages.Message) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Send(ctx, sub, msg)
	})
	return err
}
