// Package persistence implements notification storage for PostgreSQL.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLogRepository implements domain.LogRepository. The table is
// append-only; rows are removed only when their task is deleted.
type PostgresLogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLogRepository creates a new PostgreSQL send-log repository.
func NewPostgresLogRepository(pool *pgxpool.Pool) *PostgresLogRepository {
	return &PostgresLogRepository{pool: pool}
}

// Append records a successful send.
func (r *PostgresLogRepository) Append(ctx context.Context, entry *domain.LogEntry) error {
	query := `
		INSERT INTO notification_log (id, task_id, user_id, tier, channel, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.TaskID, entry.UserID, string(entry.Tier), string(entry.Channel), entry.SentAt)
	return err
}

// Exists reports whether any entry matches task+tier+channel.
func (r *PostgresLogRepository) Exists(ctx context.Context, taskID uuid.UUID, tier domain.Tier, channel domain.Channel) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_log
			WHERE task_id = $1 AND tier = $2 AND channel = $3
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, taskID, string(tier), string(channel)).Scan(&exists)
	return exists, err
}

// MostRecent returns the latest send time for task+tier across channels.
func (r *PostgresLogRepository) MostRecent(ctx context.Context, taskID uuid.UUID, tier domain.Tier) (time.Time, bool, error) {
	query := `
		SELECT sent_at FROM notification_log
		WHERE task_id = $1 AND tier = $2
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var sentAt time.Time
	err := r.pool.QueryRow(ctx, query, taskID, string(tier)).Scan(&sentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return sentAt, true, nil
}

// PurgeForTask removes all entries for a task.
func (r *PostgresLogRepository) PurgeForTask(ctx context.Context, taskID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notification_log WHERE task_id = $1`, taskID)
	return err
}
