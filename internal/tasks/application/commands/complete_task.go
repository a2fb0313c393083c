package commands

import (
	"context"
	"time"

	estimation "github.com/chivvyhq/chivvy/internal/estimation/domain"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// PickerNotifier lets the picker's escalation state machine observe task
// completions without the tasks context importing the picker.
type PickerNotifier interface {
	NotifyCompleted(ctx context.Context, userID, taskID uuid.UUID) error
}

// CompleteTaskCommand marks a task done, optionally recording actual time
// spent.
type CompleteTaskCommand struct {
	TaskID        uuid.UUID
	UserID        uuid.UUID
	ActualMinutes *int
}

// CommandName returns the command name for logging and routing.
func (CompleteTaskCommand) CommandName() string { return "tasks.complete_task" }

// CompleteTaskResult carries what the UI needs to react: whether the real
// deadline was beaten and, when both estimate and actual exist, the
// estimation verdict.
type CompleteTaskResult struct {
	OnTime           bool
	Outcome          estimation.Outcome
	HasOutcome       bool
	EstimatedMinutes int
	ActualMinutes    int
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	picker     PickerNotifier
	now        func() time.Time
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler. Picker may be nil
// when the pick-for-me feature is not wired in.
func NewCompleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, picker PickerNotifier, now func() time.Time) *CompleteTaskHandler {
	if now == nil {
		now = time.Now
	}
	return &CompleteTaskHandler{taskRepo: taskRepo, outboxRepo: outboxRepo, picker: picker, now: now}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	t, err := h.taskRepo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != cmd.UserID {
		return nil, task.ErrNotOwner
	}

	if err := t.Complete(h.now().UTC(), cmd.ActualMinutes); err != nil {
		return nil, err
	}

	if err := h.taskRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	if err := persistEvents(ctx, h.outboxRepo, t.DomainEvents(), cmd.UserID); err != nil {
		return nil, err
	}
	t.ClearDomainEvents()

	result := &CompleteTaskResult{}
	if t.CompletedOnTime() != nil {
		result.OnTime = *t.CompletedOnTime()
	}
	if est, act := t.EstimatedMinutes(), t.ActualMinutes(); est != nil && act != nil {
		result.Outcome = estimation.Classify(*est, *act)
		result.HasOutcome = true
		result.EstimatedMinutes = *est
		result.ActualMinutes = *act
	}

	if h.picker != nil {
		if err := h.picker.NotifyCompleted(ctx, cmd.UserID, cmd.TaskID); err != nil {
			// Escalation bookkeeping must never block a completion.
			return result, nil
		}
	}

	return result, nil
}
