// Package persistence implements task storage for PostgreSQL (server mode)
// and SQLite (local mode).
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrOptimisticLocking = errors.New("optimistic locking conflict")
)

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// taskRow represents a database row for tasks.
type taskRow struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Title            string
	Description      *string
	Category         *string
	RealDueDate      time.Time
	Status           string
	CompletedAt      *time.Time
	CompletedOnTime  *bool
	EstimatedMinutes *int
	ActualMinutes    *int
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const taskColumns = `id, user_id, title, description, category, real_due_date,
	status, completed_at, completed_on_time, estimated_minutes, actual_minutes,
	version, created_at, updated_at`

// Save persists a task, guarding concurrent writers with the version column.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, category, real_due_date,
			status, completed_at, completed_on_time, estimated_minutes,
			actual_minutes, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			real_due_date = EXCLUDED.real_due_date,
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			completed_on_time = EXCLUDED.completed_on_time,
			estimated_minutes = EXCLUDED.estimated_minutes,
			actual_minutes = EXCLUDED.actual_minutes,
			version = tasks.version + 1,
			updated_at = NOW()
		WHERE tasks.version = $12
		RETURNING version
	`

	var newVersion int
	err := r.pool.QueryRow(ctx, query,
		t.ID(),
		t.UserID(),
		t.Title(),
		nullIfEmpty(t.Description()),
		nullIfEmpty(t.Category()),
		t.RealDueDate(),
		t.Status().String(),
		t.CompletedAt(),
		t.CompletedOnTime(),
		t.EstimatedMinutes(),
		t.ActualMinutes(),
		t.Version(),
		t.CreatedAt(),
		t.UpdatedAt(),
	).Scan(&newVersion)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOptimisticLocking
		}
		return err
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	row, err := scanTaskRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return rowToTask(row), nil
}

// FindByUserID retrieves all tasks for a user, newest first.
func (r *PostgresTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindPending retrieves a user's incomplete tasks ordered by real due date.
func (r *PostgresTaskRepository) FindPending(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status IN ('pending', 'overdue')
		ORDER BY real_due_date, created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindAllPending retrieves every user's incomplete tasks for the notifier
// pass.
func (r *PostgresTaskRepository) FindAllPending(ctx context.Context) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status IN ('pending', 'overdue')
		ORDER BY user_id, real_due_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindRecentlyCompleted retrieves a user's latest completions that have both
// an estimate and an actual duration, newest completion first.
func (r *PostgresTaskRepository) FindRecentlyCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status = 'completed'
			AND estimated_minutes > 0 AND actual_minutes > 0
		ORDER BY completed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Delete removes a task.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row rowScanner) (taskRow, error) {
	var tr taskRow
	err := row.Scan(
		&tr.ID,
		&tr.UserID,
		&tr.Title,
		&tr.Description,
		&tr.Category,
		&tr.RealDueDate,
		&tr.Status,
		&tr.CompletedAt,
		&tr.CompletedOnTime,
		&tr.EstimatedMinutes,
		&tr.ActualMinutes,
		&tr.Version,
		&tr.CreatedAt,
		&tr.UpdatedAt,
	)
	return tr, err
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		tr, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, rowToTask(tr))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func rowToTask(tr taskRow) *task.Task {
	return task.Rehydrate(
		tr.ID,
		tr.UserID,
		tr.Title,
		deref(tr.Description),
		deref(tr.Category),
		tr.RealDueDate,
		task.ParseStatus(tr.Status),
		tr.CompletedAt,
		tr.CompletedOnTime,
		tr.EstimatedMinutes,
		tr.ActualMinutes,
		tr.Version,
		tr.CreatedAt,
		tr.UpdatedAt,
	)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
