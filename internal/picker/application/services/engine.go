package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chivvyhq/chivvy/internal/deadline"
	"github.com/chivvyhq/chivvy/internal/picker/domain"
	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

var (
	ErrPickingDisabled  = errors.New("pick-for-me is disabled for this user")
	ErrNoPendingTasks   = errors.New("no pending tasks to pick from")
	ErrEscalationLocked = errors.New("escalated: complete the current task to pick again")
)

// PickResult is what the UI renders after a pick/dismiss/complete action.
type PickResult struct {
	// Task is the currently picked task, nil when the pick was cleared.
	Task    *task.Task
	Reasons []string
	State   *domain.State
}

// Engine runs the pick-for-me flow: weighted selection plus the escalation
// state machine, with state persisted per user across invocations.
type Engine struct {
	states   domain.StateRepository
	tasks    task.Repository
	profiles profiles.Repository
	scorer   *Scorer
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a pick-for-me engine. A nil now defaults to time.Now.
func NewEngine(
	states domain.StateRepository,
	tasks task.Repository,
	profileRepo profiles.Repository,
	scorer *Scorer,
	logger *slog.Logger,
	now func() time.Time,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		states:   states,
		tasks:    tasks,
		profiles: profileRepo,
		scorer:   scorer,
		logger:   logger,
		now:      now,
	}
}

// Pick chooses a task for the user. A second pick while one is already
// active escalates (when the feature is enabled): the user is locked into
// single-task mode until they complete their earn-out quota.
func (e *Engine) Pick(ctx context.Context, userID uuid.UUID) (*PickResult, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Flags.PickForMe {
		return nil, ErrPickingDisabled
	}

	candidates, err := e.candidates(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoPendingTasks
	}

	state := e.loadState(ctx, userID)
	now := e.now()

	switch state.Mode {
	case domain.ModeEscalated:
		return nil, ErrEscalationLocked

	case domain.ModeIdle:
		chosen := e.scorer.PickTask(candidates, nil, now)
		state.Mode = domain.ModeSinglePicked
		state.PickCount = 1
		state.SetPicked(chosen.Task.ID())
		e.saveState(ctx, state)
		return e.result(chosen, state, now), nil

	default: // ModeSinglePicked: a pick is already active
		state.PickCount++

		exclude := map[uuid.UUID]struct{}{}
		if state.PickedTaskID != nil {
			exclude[*state.PickedTaskID] = struct{}{}
		}

		if state.PickCount >= 2 && profile.Flags.Escalation {
			state.Escalate(domain.EarnOutThreshold(profile.ReliabilityScore))
			e.logger.Info("pick-for-me escalated",
				"user_id", userID,
				"tasks_to_complete", state.TasksToComplete,
			)
		}

		chosen := e.scorer.PickTask(candidates, exclude, now)
		if chosen == nil {
			// Only the already-picked task remains.
			chosen = e.scorer.PickTask(candidates, nil, now)
		}
		state.SetPicked(chosen.Task.ID())
		e.saveState(ctx, state)
		return e.result(chosen, state, now), nil
	}
}

// Dismiss rejects the current pick. Outside escalation this simply clears the
// pick; inside escalation it cycles to the next candidate, wrapping to the
// full pool when every choice has been dismissed.
func (e *Engine) Dismiss(ctx context.Context, userID uuid.UUID) (*PickResult, error) {
	state := e.loadState(ctx, userID)
	now := e.now()

	if state.Mode != domain.ModeEscalated {
		state.Reset()
		e.saveState(ctx, state)
		return &PickResult{State: state}, nil
	}

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := e.candidates(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		state.Reset()
		e.saveState(ctx, state)
		return &PickResult{State: state}, nil
	}

	if state.PickedTaskID != nil {
		state.Dismiss(*state.PickedTaskID)
	}

	chosen := e.scorer.PickTask(candidates, state.Dismissed, now)
	if chosen == nil {
		// Every candidate dismissed: wrap around rather than strand the user.
		state.ResetDismissed()
		chosen = e.scorer.PickTask(candidates, nil, now)
	}

	state.SetPicked(chosen.Task.ID())
	e.saveState(ctx, state)
	return e.result(chosen, state, now), nil
}

// NotifyCompleted advances the state machine when the picked task completes.
// Escalated users tick toward their earn-out quota; everyone else returns to
// idle.
func (e *Engine) NotifyCompleted(ctx context.Context, userID, taskID uuid.UUID) (*PickResult, error) {
	state := e.loadState(ctx, userID)
	if state.PickedTaskID == nil || *state.PickedTaskID != taskID {
		return &PickResult{State: state}, nil
	}

	if state.Mode != domain.ModeEscalated {
		state.Reset()
		e.saveState(ctx, state)
		return &PickResult{State: state}, nil
	}

	state.CompletionsSoFar++
	if state.CompletionsSoFar >= state.TasksToComplete {
		state.Reset()
		e.saveState(ctx, state)
		e.logger.Info("pick-for-me earn-out complete", "user_id", userID)
		return &PickResult{State: state}, nil
	}

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := e.candidates(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		state.Reset()
		e.saveState(ctx, state)
		return &PickResult{State: state}, nil
	}

	now := e.now()
	exclude := map[uuid.UUID]struct{}{taskID: {}}
	for id := range state.Dismissed {
		exclude[id] = struct{}{}
	}

	chosen := e.scorer.PickTask(candidates, exclude, now)
	if chosen == nil {
		state.ResetDismissed()
		chosen = e.scorer.PickTask(candidates, map[uuid.UUID]struct{}{taskID: {}}, now)
	}
	if chosen == nil {
		chosen = e.scorer.PickTask(candidates, nil, now)
	}

	state.SetPicked(chosen.Task.ID())
	e.saveState(ctx, state)
	return e.result(chosen, state, now), nil
}

// ExitEscalation manually unlocks single-task mode (full reset).
func (e *Engine) ExitEscalation(ctx context.Context, userID uuid.UUID) error {
	state := e.loadState(ctx, userID)
	state.Reset()
	e.saveState(ctx, state)
	return nil
}

// CanUsePick reports whether the pick button should be offered: feature on,
// at least two pending tasks, and not currently escalated.
func (e *Engine) CanUsePick(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if !profile.Flags.PickForMe {
		return false, nil
	}

	pending, err := e.tasks.FindPending(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(pending) < 2 {
		return false, nil
	}

	state := e.loadState(ctx, userID)
	return state.Mode != domain.ModeEscalated, nil
}

// AllOverdue reports whether the user has pending tasks and every one of them
// is past its displayed due date.
func (e *Engine) AllOverdue(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	candidates, err := e.candidates(ctx, profile)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		return false, nil
	}

	now := e.now()
	for _, c := range candidates {
		if deadline.ClassifyUrgency(c.FakeDue, now) != deadline.UrgencyOverdue {
			return false, nil
		}
	}
	return true, nil
}

// State returns the current persisted state for UI rendering.
func (e *Engine) State(ctx context.Context, userID uuid.UUID) *domain.State {
	return e.loadState(ctx, userID)
}

func (e *Engine) candidates(ctx context.Context, profile *profiles.Profile) ([]Candidate, error) {
	pending, err := e.tasks.FindPending(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	candidates := make([]Candidate, 0, len(pending))
	for _, t := range pending {
		candidates = append(candidates, Candidate{
			Task:    t,
			FakeDue: deadline.ComputeFakeDueDate(t.RealDueDate(), profile.ReliabilityScore, now),
		})
	}
	return candidates, nil
}

// loadState falls back to a fresh in-memory state when storage is
// unavailable: a degraded un-persisted session beats a crash.
func (e *Engine) loadState(ctx context.Context, userID uuid.UUID) *domain.State {
	state, err := e.states.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			e.logger.Warn("pick state load failed, using fresh state",
				"user_id", userID, "error", err)
		}
		return domain.NewState(userID)
	}
	return state
}

func (e *Engine) saveState(ctx context.Context, state *domain.State) {
	if err := e.states.Save(ctx, state); err != nil {
		e.logger.Warn("pick state save failed, session degrades to in-memory",
			"user_id", state.UserID, "error", err)
	}
}

func (e *Engine) result(chosen *Candidate, state *domain.State, now time.Time) *PickResult {
	return &PickResult{
		Task:    chosen.Task,
		Reasons: e.scorer.Weigh(*chosen, now).Reasons,
		State:   state,
	}
}
