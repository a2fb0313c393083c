package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL outbox repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveBatch inserts messages in one round trip.
func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, msg := range msgs {
		batch.Queue(query,
			msg.EventID, msg.AggregateType, msg.AggregateID, msg.RoutingKey,
			msg.Payload, msg.Metadata, msg.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range msgs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves unpublished messages oldest-first.
func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key,
		       payload, metadata, created_at, published_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.EventID, &m.AggregateType, &m.AggregateID,
			&m.RoutingKey, &m.Payload, &m.Metadata, &m.CreatedAt,
			&m.PublishedAt, &m.RetryCount, &m.LastError)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox SET published_at = NOW() WHERE id = $1`, id)
	return err
}

// MarkFailed records a publish failure.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = $2 WHERE id = $1`,
		id, errMsg)
	return err
}

// DeleteOld removes published messages older than the retention period.
func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`,
		time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
