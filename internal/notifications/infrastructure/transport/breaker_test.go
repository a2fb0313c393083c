package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/chivvyhq/chivvy/internal/messages"
	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSender struct {
	calls int
	err   error
}

func (s *failingSender) Send(context.Context, string, messages.Message) error {
	s.calls++
	return s.err
}

func TestBreakerEmailOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingSender{err: errors.New("relay down")}
	breaker := NewBreakerEmail(inner)
	ctx := context.Background()
	msg := messages.Message{Title: "t", Body: "b"}

	for i := 0; i < 5; i++ {
		err := breaker.Send(ctx, "user@example.com", msg)
		require.Error(t, err)
	}
	require.Equal(t, 5, inner.calls)

	err := breaker.Send(ctx, "user@example.com", msg)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, inner.calls, "open breaker never reaches the relay")
}

func TestBreakerEmailStaysClosedOnSuccess(t *testing.T) {
	inner := &failingSender{}
	breaker := NewBreakerEmail(inner)

	for i := 0; i < 10; i++ {
		require.NoError(t, breaker.Send(context.Background(), "user@example.com", messages.Message{}))
	}
	assert.Equal(t, 10, inner.calls)
}

func TestWebPushDelivers(t *testing.T) {
	var got atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("TTL"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	push := NewWebPush(srv.Client())
	sub := domain.NewPushSubscription(uuid.New(), srv.URL, "p256dh", "auth")

	err := push.Send(context.Background(), sub, messages.Message{Title: "DO IT", Body: "now"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Load())
}

func TestWebPushRevokedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	push := NewWebPush(srv.Client())
	sub := domain.NewPushSubscription(uuid.New(), srv.URL, "p256dh", "auth")

	err := push.Send(context.Background(), sub, messages.Message{})
	var gone *ErrSubscriptionGone
	require.ErrorAs(t, err, &gone)
	assert.Equal(t, srv.URL, gone.Endpoint)
}
