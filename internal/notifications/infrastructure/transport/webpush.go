package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chivvyhq/chivvy/internal/messages"
	"github.com/chivvyhq/chivvy/internal/notifications/domain"
)

// subscriptionGone marks HTTP statuses meaning the browser revoked the
// endpoint. Callers should drop the subscription rather than retry.
func subscriptionGone(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}

// ErrSubscriptionGone reports a revoked push endpoint.
type ErrSubscriptionGone struct {
	Endpoint string
}

func (e *ErrSubscriptionGone) Error() string {
	return fmt.Sprintf("push subscription revoked: %s", e.Endpoint)
}

// WebPush posts notification payloads to browser push endpoints.
type WebPush struct {
	client *http.Client
	ttl    time.Duration
}

// NewWebPush creates the push transport. A nil client gets a default with a
// ten second timeout.
func NewWebPush(client *http.Client) *WebPush {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebPush{client: client, ttl: 24 * time.Hour}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send posts one message to one subscription endpoint.
func (w *WebPush) Send(ctx context.Context, sub *domain.PushSubscription, msg messages.Message) error {
	payload, err := json.Marshal(pushPayload{Title: msg.Title, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", fmt.Sprintf("%d", int(w.ttl.Seconds())))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	if subscriptionGone(resp.StatusCode) {
		return &ErrSubscriptionGone{Endpoint: sub.Endpoint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push to %s: unexpected status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
