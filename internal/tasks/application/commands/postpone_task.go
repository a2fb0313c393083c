package commands

import (
	"context"
	"time"

	sharedDomain "github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// PostponeTaskCommand shields a task from notifications until the given
// time. The real due date does not move; the excuse only silences reminders.
type PostponeTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
	Until  time.Time
}

// CommandName returns the command name for logging and routing.
func (PostponeTaskCommand) CommandName() string { return "tasks.postpone_task" }

// PostponeTaskHandler handles the PostponeTaskCommand.
type PostponeTaskHandler struct {
	taskRepo      task.Repository
	postponements task.PostponementRepository
	outboxRepo    outbox.Repository
	now           func() time.Time
}

// NewPostponeTaskHandler creates a new PostponeTaskHandler.
func NewPostponeTaskHandler(taskRepo task.Repository, postponements task.PostponementRepository, outboxRepo outbox.Repository, now func() time.Time) *PostponeTaskHandler {
	if now == nil {
		now = time.Now
	}
	return &PostponeTaskHandler{
		taskRepo:      taskRepo,
		postponements: postponements,
		outboxRepo:    outboxRepo,
		now:           now,
	}
}

// Handle executes the PostponeTaskCommand.
func (h *PostponeTaskHandler) Handle(ctx context.Context, cmd PostponeTaskCommand) error {
	now := h.now().UTC()
	if !cmd.Until.After(now) {
		return task.ErrPastPostponement
	}

	t, err := h.taskRepo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return err
	}
	if t.UserID() != cmd.UserID {
		return task.ErrNotOwner
	}
	if t.IsCompleted() {
		return task.ErrTaskAlreadyComplete
	}

	err = h.postponements.Save(ctx, task.Postponement{
		TaskID:    cmd.TaskID,
		UserID:    cmd.UserID,
		Until:     cmd.Until,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	event := task.NewTaskPostponed(cmd.TaskID, cmd.UserID, cmd.Until)
	return persistEvents(ctx, h.outboxRepo, []sharedDomain.DomainEvent{event}, cmd.UserID)
}
