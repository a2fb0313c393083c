package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chivvyhq/chivvy/internal/picker/domain"
	"github.com/google/uuid"
)

// SQLiteStateRepository implements domain.StateRepository for local mode.
type SQLiteStateRepository struct {
	dbConn *sql.DB
}

// NewSQLiteStateRepository creates a new SQLite state repository.
func NewSQLiteStateRepository(dbConn *sql.DB) *SQLiteStateRepository {
	return &SQLiteStateRepository{dbConn: dbConn}
}

// Load retrieves the state for a user.
func (r *SQLiteStateRepository) Load(ctx context.Context, userID uuid.UUID) (*domain.State, error) {
	query := `
		SELECT user_id, mode, picked_task_id, pick_count, tasks_to_complete,
		       completions_so_far, dismissed, updated_at
		FROM pick_states WHERE user_id = ?
	`

	var (
		state          domain.State
		uid, mode      string
		picked         sql.NullString
		dismissed      string
		updatedAt      string
	)
	err := r.dbConn.QueryRowContext(ctx, query, userID.String()).Scan(
		&uid, &mode, &picked, &state.PickCount,
		&state.TasksToComplete, &state.CompletionsSoFar, &dismissed, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}

	state.UserID, err = uuid.Parse(uid)
	if err != nil {
		return nil, err
	}
	state.Mode = domain.Mode(mode)
	if picked.Valid {
		id, err := uuid.Parse(picked.String)
		if err != nil {
			return nil, err
		}
		state.PickedTaskID = &id
	}
	state.Dismissed, err = decodeDismissed([]byte(dismissed))
	if err != nil {
		return nil, err
	}
	state.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save upserts the state for a user.
func (r *SQLiteStateRepository) Save(ctx context.Context, state *domain.State) error {
	dismissed, err := encodeDismissed(state.Dismissed)
	if err != nil {
		return err
	}

	var picked sql.NullString
	if state.PickedTaskID != nil {
		picked = sql.NullString{String: state.PickedTaskID.String(), Valid: true}
	}

	query := `
		INSERT INTO pick_states (
			user_id, mode, picked_task_id, pick_count, tasks_to_complete,
			completions_so_far, dismissed, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			mode = excluded.mode,
			picked_task_id = excluded.picked_task_id,
			pick_count = excluded.pick_count,
			tasks_to_complete = excluded.tasks_to_complete,
			completions_so_far = excluded.completions_so_far,
			dismissed = excluded.dismissed,
			updated_at = excluded.updated_at
	`
	_, err = r.dbConn.ExecContext(ctx, query,
		state.UserID.String(), string(state.Mode), picked, state.PickCount,
		state.TasksToComplete, state.CompletionsSoFar, string(dismissed),
		state.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// Delete removes the state for a user.
func (r *SQLiteStateRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.dbConn.ExecContext(ctx, `DELETE FROM pick_states WHERE user_id = ?`, userID.String())
	return err
}
