// Package persistence implements pick-for-me state storage for PostgreSQL
// and SQLite. The dismissed set is serialized as a JSON array of task IDs.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chivvyhq/chivvy/internal/picker/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStateRepository implements domain.StateRepository.
type PostgresStateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStateRepository creates a new PostgreSQL state repository.
func NewPostgresStateRepository(pool *pgxpool.Pool) *PostgresStateRepository {
	return &PostgresStateRepository{pool: pool}
}

// Load retrieves the state for a user.
func (r *PostgresStateRepository) Load(ctx context.Context, userID uuid.UUID) (*domain.State, error) {
	query := `
		SELECT user_id, mode, picked_task_id, pick_count, tasks_to_complete,
		       completions_so_far, dismissed, updated_at
		FROM pick_states WHERE user_id = $1
	`

	var (
		state     domain.State
		mode      string
		picked    *uuid.UUID
		dismissed []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&state.UserID, &mode, &picked, &state.PickCount,
		&state.TasksToComplete, &state.CompletionsSoFar, &dismissed, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}

	state.Mode = domain.Mode(mode)
	state.PickedTaskID = picked
	state.Dismissed, err = decodeDismissed(dismissed)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save upserts the state for a user.
func (r *PostgresStateRepository) Save(ctx context.Context, state *domain.State) error {
	dismissed, err := encodeDismissed(state.Dismissed)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pick_states (
			user_id, mode, picked_task_id, pick_count, tasks_to_complete,
			completions_so_far, dismissed, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			picked_task_id = EXCLUDED.picked_task_id,
			pick_count = EXCLUDED.pick_count,
			tasks_to_complete = EXCLUDED.tasks_to_complete,
			completions_so_far = EXCLUDED.completions_so_far,
			dismissed = EXCLUDED.dismissed,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query,
		state.UserID, string(state.Mode), state.PickedTaskID, state.PickCount,
		state.TasksToComplete, state.CompletionsSoFar, dismissed, state.UpdatedAt)
	return err
}

// Delete removes the state for a user.
func (r *PostgresStateRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pick_states WHERE user_id = $1`, userID)
	return err
}

func encodeDismissed(set map[uuid.UUID]struct{}) ([]byte, error) {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode dismissed set: %w", err)
	}
	return data, nil
}

func decodeDismissed(data []byte) (map[uuid.UUID]struct{}, error) {
	set := make(map[uuid.UUID]struct{})
	if len(data) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode dismissed set: %w", err)
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
