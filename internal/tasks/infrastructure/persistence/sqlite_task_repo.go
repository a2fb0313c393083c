package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// SQLiteTaskRepository implements task.Repository for local mode. UUIDs and
// timestamps are stored as text; SQLite has no native types for either.
type SQLiteTaskRepository struct {
	dbConn *sql.DB
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(dbConn *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{dbConn: dbConn}
}

const sqliteTaskColumns = `id, user_id, title, description, category,
	real_due_date, status, completed_at, completed_on_time, estimated_minutes,
	actual_minutes, version, created_at, updated_at`

// Save persists a task.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, category, real_due_date,
			status, completed_at, completed_on_time, estimated_minutes,
			actual_minutes, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			real_due_date = excluded.real_due_date,
			status = excluded.status,
			completed_at = excluded.completed_at,
			completed_on_time = excluded.completed_on_time,
			estimated_minutes = excluded.estimated_minutes,
			actual_minutes = excluded.actual_minutes,
			version = tasks.version + 1,
			updated_at = excluded.updated_at
	`

	_, err := r.dbConn.ExecContext(ctx, query,
		t.ID().String(),
		t.UserID().String(),
		t.Title(),
		toNullString(t.Description()),
		toNullString(t.Category()),
		t.RealDueDate().UTC().Format(time.RFC3339),
		t.Status().String(),
		toNullTime(t.CompletedAt()),
		toNullBool(t.CompletedOnTime()),
		toNullInt(t.EstimatedMinutes()),
		toNullInt(t.ActualMinutes()),
		t.Version(),
		t.CreatedAt().UTC().Format(time.RFC3339),
		t.UpdatedAt().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanSQLiteTask(r.dbConn.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// FindByUserID retrieves all tasks for a user, newest first.
func (r *SQLiteTaskRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, userID.String())
}

// FindPending retrieves a user's incomplete tasks ordered by real due date.
func (r *SQLiteTaskRepository) FindPending(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `
		SELECT ` + sqliteTaskColumns + `
		FROM tasks
		WHERE user_id = ? AND status IN ('pending', 'overdue')
		ORDER BY real_due_date, created_at
	`
	return r.queryTasks(ctx, query, userID.String())
}

// FindAllPending retrieves every user's incomplete tasks.
func (r *SQLiteTaskRepository) FindAllPending(ctx context.Context) ([]*task.Task, error) {
	query := `
		SELECT ` + sqliteTaskColumns + `
		FROM tasks
		WHERE status IN ('pending', 'overdue')
		ORDER BY user_id, real_due_date
	`
	return r.queryTasks(ctx, query)
}

// FindRecentlyCompleted retrieves a user's latest completions that have both
// an estimate and an actual duration, newest completion first.
func (r *SQLiteTaskRepository) FindRecentlyCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	query := `
		SELECT ` + sqliteTaskColumns + `
		FROM tasks
		WHERE user_id = ? AND status = 'completed'
			AND estimated_minutes > 0 AND actual_minutes > 0
		ORDER BY completed_at DESC
		LIMIT ?
	`
	return r.queryTasks(ctx, query, userID.String(), limit)
}

// Delete removes a task.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.dbConn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanSQLiteTask(row rowScanner) (*task.Task, error) {
	var (
		id, userID, title, realDue, status string
		createdAt, updatedAt               string
		description, category, completedAt sql.NullString
		completedOnTime                    sql.NullBool
		estimated, actual                  sql.NullInt64
		version                            int
	)

	err := row.Scan(&id, &userID, &title, &description, &category, &realDue,
		&status, &completedAt, &completedOnTime, &estimated, &actual,
		&version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	due, err := time.Parse(time.RFC3339, realDue)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, err
	}

	var donePtr *time.Time
	if completedAt.Valid {
		done, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return nil, err
		}
		donePtr = &done
	}

	return task.Rehydrate(
		taskID,
		owner,
		title,
		description.String,
		category.String,
		due,
		task.ParseStatus(status),
		donePtr,
		fromNullBool(completedOnTime),
		fromNullInt(estimated),
		fromNullInt(actual),
		version,
		created,
		updated,
	), nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func toNullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func fromNullBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}

func fromNullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
