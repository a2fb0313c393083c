package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// SQLitePostponementRepository implements task.PostponementRepository for
// local mode.
type SQLitePostponementRepository struct {
	dbConn *sql.DB
}

// NewSQLitePostponementRepository creates the repository.
func NewSQLitePostponementRepository(dbConn *sql.DB) *SQLitePostponementRepository {
	return &SQLitePostponementRepository{dbConn: dbConn}
}

// Save records a postponement, replacing any earlier one for the same task.
func (r *SQLitePostponementRepository) Save(ctx context.Context, p task.Postponement) error {
	query := `
		INSERT INTO postponements (task_id, user_id, until, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (task_id) DO UPDATE SET
			until = excluded.until,
			created_at = excluded.created_at
	`
	_, err := r.dbConn.ExecContext(ctx, query,
		p.TaskID.String(), p.UserID.String(),
		p.Until.UTC().Format(time.RFC3339),
		p.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// ListActiveTaskIDs returns the set of task IDs shielded at the given time.
func (r *SQLitePostponementRepository) ListActiveTaskIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		`SELECT task_id FROM postponements WHERE until > ?`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		active[id] = struct{}{}
	}
	return active, rows.Err()
}
