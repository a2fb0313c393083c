package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages.
type Repository interface {
	// SaveBatch stores messages; callers run it inside the same transaction
	// that saved the aggregate when the driver supports it.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished retrieves unpublished messages oldest-first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished marks a message as successfully published.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a publish failure.
	MarkFailed(ctx context.Context, id int64, errMsg string) error

	// DeleteOld removes published messages older than the retention period.
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}
