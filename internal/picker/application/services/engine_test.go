package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/chivvyhq/chivvy/internal/picker/domain"
	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateRepo struct {
	states  map[uuid.UUID]*domain.State
	loadErr error
	saveErr error
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[uuid.UUID]*domain.State)}
}

func (r *fakeStateRepo) Load(_ context.Context, userID uuid.UUID) (*domain.State, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	s, ok := r.states[userID]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return s, nil
}

func (r *fakeStateRepo) Save(_ context.Context, state *domain.State) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.states[state.UserID] = state
	return nil
}

func (r *fakeStateRepo) Delete(_ context.Context, userID uuid.UUID) error {
	delete(r.states, userID)
	return nil
}

type fakeTaskRepo struct {
	pending []*task.Task
}

func (r *fakeTaskRepo) Save(context.Context, *task.Task) error { return nil }
func (r *fakeTaskRepo) FindByID(context.Context, uuid.UUID) (*task.Task, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeTaskRepo) FindByUserID(context.Context, uuid.UUID) ([]*task.Task, error) {
	return r.pending, nil
}
func (r *fakeTaskRepo) FindPending(context.Context, uuid.UUID) ([]*task.Task, error) {
	return r.pending, nil
}
func (r *fakeTaskRepo) FindAllPending(context.Context) ([]*task.Task, error) {
	return r.pending, nil
}
func (r *fakeTaskRepo) FindRecentlyCompleted(context.Context, uuid.UUID, int) ([]*task.Task, error) {
	return nil, nil
}
func (r *fakeTaskRepo) Delete(context.Context, uuid.UUID) error { return nil }

type fakeProfileRepo struct {
	profile *profiles.Profile
}

func (r *fakeProfileRepo) Get(context.Context, uuid.UUID) (*profiles.Profile, error) {
	return r.profile, nil
}
func (r *fakeProfileRepo) Save(context.Context, *profiles.Profile) error { return nil }
func (r *fakeProfileRepo) ListNotifiable(context.Context) ([]*profiles.Profile, error) {
	return []*profiles.Profile{r.profile}, nil
}

var engineNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, score float64, titles ...string) (*Engine, *fakeStateRepo, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	profile := profiles.NewProfile(userID, "user@example.com")
	profile.ReliabilityScore = score

	taskRepo := &fakeTaskRepo{}
	for i, title := range titles {
		tk, err := task.NewTask(userID, title, engineNow.Add(time.Duration(i+1)*24*time.Hour))
		require.NoError(t, err)
		taskRepo.pending = append(taskRepo.pending, tk)
	}

	states := newFakeStateRepo()
	scorer := NewScorer(30, rand.New(rand.NewSource(1)))
	engine := NewEngine(states, taskRepo, &fakeProfileRepo{profile: profile}, scorer, nil,
		func() time.Time { return engineNow })

	return engine, states, userID
}

func TestEngineFirstPick(t *testing.T) {
	engine, states, userID := newTestEngine(t, 50, "Call bank", "Write essay")

	res, err := engine.Pick(context.Background(), userID)
	require.NoError(t, err)

	require.NotNil(t, res.Task)
	assert.Equal(t, domain.ModeSinglePicked, res.State.Mode)
	assert.Equal(t, 1, res.State.PickCount)
	require.NotNil(t, res.State.PickedTaskID)
	assert.Equal(t, res.Task.ID(), *res.State.PickedTaskID)

	saved, ok := states.states[userID]
	require.True(t, ok, "state persisted after pick")
	assert.Equal(t, domain.ModeSinglePicked, saved.Mode)
}

func TestEngineEscalationBands(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{90, 1},
		{65, 2},
		{30, 3},
		{10, 4},
	}

	for _, tt := range tests {
		engine, _, userID := newTestEngine(t, tt.score, "Call bank", "Write essay")
		ctx := context.Background()

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		res, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		assert.Equal(t, domain.ModeEscalated, res.State.Mode, "score %.0f", tt.score)
		assert.True(t, res.State.InSingleTaskMode())
		assert.Equal(t, tt.want, res.State.TasksToComplete, "score %.0f", tt.score)
	}
}

func TestEnginePickLockedWhileEscalated(t *testing.T) {
	engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")
	ctx := context.Background()

	_, err := engine.Pick(ctx, userID)
	require.NoError(t, err)
	_, err = engine.Pick(ctx, userID)
	require.NoError(t, err)

	_, err = engine.Pick(ctx, userID)
	assert.ErrorIs(t, err, ErrEscalationLocked)
}

func TestEngineExitEscalation(t *testing.T) {
	engine, states, userID := newTestEngine(t, 50, "Call bank", "Write essay")
	ctx := context.Background()

	_, err := engine.Pick(ctx, userID)
	require.NoError(t, err)
	_, err = engine.Pick(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.ModeEscalated, engine.State(ctx, userID).Mode)

	require.NoError(t, engine.ExitEscalation(ctx, userID))

	state := engine.State(ctx, userID)
	assert.Equal(t, domain.ModeIdle, state.Mode)
	assert.Nil(t, state.PickedTaskID)
	assert.Zero(t, state.TasksToComplete)
	assert.Equal(t, domain.ModeIdle, states.states[userID].Mode, "reset persisted")

	// Picking works again after the manual exit.
	res, err := engine.Pick(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSinglePicked, res.State.Mode)
}

func TestEngineEscalationDisabled(t *testing.T) {
	engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")
	engine.profiles.(*fakeProfileRepo).profile.Flags.Escalation = false
	ctx := context.Background()

	_, err := engine.Pick(ctx, userID)
	require.NoError(t, err)

	res, err := engine.Pick(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSinglePicked, res.State.Mode)
	assert.Equal(t, 2, res.State.PickCount)
}

func TestEngineDismiss(t *testing.T) {
	ctx := context.Background()

	t.Run("outside escalation clears the pick", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		res, err := engine.Dismiss(ctx, userID)
		require.NoError(t, err)
		assert.Nil(t, res.Task)
		assert.Equal(t, domain.ModeIdle, res.State.Mode)
	})

	t.Run("escalated cycles to the next task", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay", "Mow lawn")

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		first, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, domain.ModeEscalated, first.State.Mode)

		res, err := engine.Dismiss(ctx, userID)
		require.NoError(t, err)

		require.NotNil(t, res.Task)
		assert.Equal(t, domain.ModeEscalated, res.State.Mode, "dismiss does not escape escalation")
		assert.NotEqual(t, first.Task.ID(), res.Task.ID(), "dismissed task not re-picked")
		assert.Len(t, res.State.Dismissed, 1)
	})

	t.Run("exhausting the pool wraps around", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		_, err = engine.Pick(ctx, userID)
		require.NoError(t, err)

		// Two tasks, dismiss both picks; the dismissed set resets rather
		// than stranding the user.
		_, err = engine.Dismiss(ctx, userID)
		require.NoError(t, err)
		res, err := engine.Dismiss(ctx, userID)
		require.NoError(t, err)

		require.NotNil(t, res.Task, "a candidate is always offered while tasks remain")
		assert.Equal(t, domain.ModeEscalated, res.State.Mode)
	})
}

func TestEngineCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("outside escalation returns to idle", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")

		res, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		after, err := engine.NotifyCompleted(ctx, userID, res.Task.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.ModeIdle, after.State.Mode)
		assert.Nil(t, after.State.PickedTaskID)
	})

	t.Run("escalated completion below quota picks the next task", func(t *testing.T) {
		// Score 10 requires 4 completions.
		engine, _, userID := newTestEngine(t, 10, "Call bank", "Write essay", "Mow lawn")

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		res, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		after, err := engine.NotifyCompleted(ctx, userID, res.Task.ID())
		require.NoError(t, err)

		assert.Equal(t, domain.ModeEscalated, after.State.Mode)
		assert.Equal(t, 1, after.State.CompletionsSoFar)
		require.NotNil(t, after.Task)
		assert.NotEqual(t, res.Task.ID(), after.Task.ID(), "completed task not re-picked")
	})

	t.Run("reaching the quota earns out to idle", func(t *testing.T) {
		// Score 90 requires a single completion.
		engine, _, userID := newTestEngine(t, 90, "Call bank", "Write essay")

		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		res, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 1, res.State.TasksToComplete)

		after, err := engine.NotifyCompleted(ctx, userID, res.Task.ID())
		require.NoError(t, err)

		assert.Equal(t, domain.ModeIdle, after.State.Mode)
		assert.Zero(t, after.State.PickCount)
		assert.Empty(t, after.State.Dismissed)
	})

	t.Run("unrelated completion is a no-op", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")

		res, err := engine.Pick(ctx, userID)
		require.NoError(t, err)

		after, err := engine.NotifyCompleted(ctx, userID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, domain.ModeSinglePicked, after.State.Mode)
		assert.Equal(t, res.Task.ID(), *after.State.PickedTaskID)
	})
}

func TestEngineCanUsePick(t *testing.T) {
	ctx := context.Background()

	t.Run("needs two pending tasks", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank")
		ok, err := engine.CanUsePick(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("available when idle with enough tasks", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")
		ok, err := engine.CanUsePick(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("locked while escalated", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")
		_, err := engine.Pick(ctx, userID)
		require.NoError(t, err)
		_, err = engine.Pick(ctx, userID)
		require.NoError(t, err)

		ok, err := engine.CanUsePick(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("feature flag off disables", func(t *testing.T) {
		engine, _, userID := newTestEngine(t, 50, "Call bank", "Write essay")
		engine.profiles.(*fakeProfileRepo).profile.Flags.PickForMe = false

		ok, err := engine.CanUsePick(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEngineStateStorageFailureDegrades(t *testing.T) {
	engine, states, userID := newTestEngine(t, 50, "Call bank", "Write essay")
	states.loadErr = errors.New("storage down")
	states.saveErr = errors.New("storage down")

	res, err := engine.Pick(context.Background(), userID)
	require.NoError(t, err, "storage outage degrades, never crashes")
	require.NotNil(t, res.Task)
	assert.Equal(t, domain.ModeSinglePicked, res.State.Mode)
}
