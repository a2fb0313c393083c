package persistence

import (
	"context"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostponementRepository implements task.PostponementRepository.
// Expired rows are left in place; Active filtering happens in the query.
type PostgresPostponementRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPostponementRepository creates the repository.
func NewPostgresPostponementRepository(pool *pgxpool.Pool) *PostgresPostponementRepository {
	return &PostgresPostponementRepository{pool: pool}
}

// Save records a postponement. A newer postponement for the same task
// replaces the old one.
func (r *PostgresPostponementRepository) Save(ctx context.Context, p task.Postponement) error {
	query := `
		INSERT INTO postponements (task_id, user_id, until, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (task_id) DO UPDATE SET
			until = EXCLUDED.until,
			created_at = EXCLUDED.created_at
	`
	_, err := r.pool.Exec(ctx, query, p.TaskID, p.UserID, p.Until, p.CreatedAt)
	return err
}

// ListActiveTaskIDs returns the set of task IDs shielded at the given time.
func (r *PostgresPostponementRepository) ListActiveTaskIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT task_id FROM postponements WHERE until > $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		active[id] = struct{}{}
	}
	return active, rows.Err()
}
