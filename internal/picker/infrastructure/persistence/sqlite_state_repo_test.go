package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chivvyhq/chivvy/internal/picker/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupStateDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE pick_states (
			user_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL DEFAULT 'idle',
			picked_task_id TEXT,
			pick_count INTEGER NOT NULL DEFAULT 0,
			tasks_to_complete INTEGER NOT NULL DEFAULT 0,
			completions_so_far INTEGER NOT NULL DEFAULT 0,
			dismissed TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStateRepositoryRoundTrip(t *testing.T) {
	repo := NewSQLiteStateRepository(setupStateDB(t))
	ctx := context.Background()

	state := domain.NewState(uuid.New())
	state.Mode = domain.ModeEscalated
	state.PickCount = 2
	state.TasksToComplete = 3
	state.CompletionsSoFar = 1
	state.SetPicked(uuid.New())
	state.Dismiss(uuid.New())
	state.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Load(ctx, state.UserID)
	require.NoError(t, err)

	assert.Equal(t, state.UserID, loaded.UserID)
	assert.Equal(t, domain.ModeEscalated, loaded.Mode)
	require.NotNil(t, loaded.PickedTaskID)
	assert.Equal(t, *state.PickedTaskID, *loaded.PickedTaskID)
	assert.Equal(t, 2, loaded.PickCount)
	assert.Equal(t, 3, loaded.TasksToComplete)
	assert.Equal(t, 1, loaded.CompletionsSoFar)
	assert.Equal(t, state.Dismissed, loaded.Dismissed)
}

func TestSQLiteStateRepositoryMissingUser(t *testing.T) {
	repo := NewSQLiteStateRepository(setupStateDB(t))

	_, err := repo.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestSQLiteStateRepositoryDelete(t *testing.T) {
	repo := NewSQLiteStateRepository(setupStateDB(t))
	ctx := context.Background()

	state := domain.NewState(uuid.New())
	state.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Save(ctx, state))

	require.NoError(t, repo.Delete(ctx, state.UserID))

	_, err := repo.Load(ctx, state.UserID)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}
