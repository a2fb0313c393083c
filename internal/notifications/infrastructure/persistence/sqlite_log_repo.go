package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
)

// SQLiteLogRepository implements domain.LogRepository for local mode.
type SQLiteLogRepository struct {
	dbConn *sql.DB
}

// NewSQLiteLogRepository creates a new SQLite send-log repository.
func NewSQLiteLogRepository(dbConn *sql.DB) *SQLiteLogRepository {
	return &SQLiteLogRepository{dbConn: dbConn}
}

// Append records a successful send.
func (r *SQLiteLogRepository) Append(ctx context.Context, entry *domain.LogEntry) error {
	query := `
		INSERT INTO notification_log (id, task_id, user_id, tier, channel, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.dbConn.ExecContext(ctx, query,
		entry.ID.String(), entry.TaskID.String(), entry.UserID.String(),
		string(entry.Tier), string(entry.Channel),
		entry.SentAt.UTC().Format(time.RFC3339))
	return err
}

// Exists reports whether any entry matches task+tier+channel.
func (r *SQLiteLogRepository) Exists(ctx context.Context, taskID uuid.UUID, tier domain.Tier, channel domain.Channel) (bool, error) {
	query := `
		SELECT 1 FROM notification_log
		WHERE task_id = ? AND tier = ? AND channel = ?
		LIMIT 1
	`
	var one int
	err := r.dbConn.QueryRowContext(ctx, query, taskID.String(), string(tier), string(channel)).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MostRecent returns the latest send time for task+tier across channels.
func (r *SQLiteLogRepository) MostRecent(ctx context.Context, taskID uuid.UUID, tier domain.Tier) (time.Time, bool, error) {
	query := `
		SELECT sent_at FROM notification_log
		WHERE task_id = ? AND tier = ?
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var sentAt string
	err := r.dbConn.QueryRowContext(ctx, query, taskID.String(), string(tier)).Scan(&sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	ts, err := time.Parse(time.RFC3339, sentAt)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// PurgeForTask removes all entries for a task.
func (r *SQLiteLogRepository) PurgeForTask(ctx context.Context, taskID uuid.UUID) error {
	_, err := r.dbConn.ExecContext(ctx, `DELETE FROM notification_log WHERE task_id = ?`, taskID.String())
	return err
}
