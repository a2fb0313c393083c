package commands

import (
	"context"

	notifications "github.com/chivvyhq/chivvy/internal/notifications/domain"
	sharedDomain "github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// DeleteTaskCommand removes a task and its notification history.
type DeleteTaskCommand struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// CommandName returns the command name for logging and routing.
func (DeleteTaskCommand) CommandName() string { return "tasks.delete_task" }

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   task.Repository
	notifyLog  notifications.LogRepository
	outboxRepo outbox.Repository
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler. The notification log
// may be nil when no notifier is configured.
func NewDeleteTaskHandler(taskRepo task.Repository, notifyLog notifications.LogRepository, outboxRepo outbox.Repository) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskRepo: taskRepo, notifyLog: notifyLog, outboxRepo: outboxRepo}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	t, err := h.taskRepo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return err
	}
	if t.UserID() != cmd.UserID {
		return task.ErrNotOwner
	}

	if err := h.taskRepo.Delete(ctx, cmd.TaskID); err != nil {
		return err
	}
	if h.notifyLog != nil {
		if err := h.notifyLog.PurgeForTask(ctx, cmd.TaskID); err != nil {
			return err
		}
	}

	event := task.NewTaskDeleted(cmd.TaskID, cmd.UserID)
	return persistEvents(ctx, h.outboxRepo, []sharedDomain.DomainEvent{event}, cmd.UserID)
}
