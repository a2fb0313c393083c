package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PushSubscription is a browser push endpoint registered by a user agent,
// in the shape the Web Push protocol hands back from
// PushManager.subscribe().
type PushSubscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Endpoint  string
	P256dhKey string
	AuthKey   string
	CreatedAt time.Time
}

// NewPushSubscription registers a browser endpoint for a user.
func NewPushSubscription(userID uuid.UUID, endpoint, p256dh, auth string) *PushSubscription {
	return &PushSubscription{
		ID:        uuid.New(),
		UserID:    userID,
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
		CreatedAt: time.Now().UTC(),
	}
}

// SubscriptionRepository stores browser push subscriptions. A user may have
// several, one per browser.
type SubscriptionRepository interface {
	Save(ctx context.Context, sub *PushSubscription) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*PushSubscription, error)
	// DeleteByEndpoint drops a subscription the push service reported gone.
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
