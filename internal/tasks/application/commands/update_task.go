package commands

import (
	"context"
	"time"

	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// UpdateTaskCommand edits task fields. Nil pointers leave a field untouched.
type UpdateTaskCommand struct {
	TaskID           uuid.UUID
	UserID           uuid.UUID
	Title            *string
	Description      *string
	Category         *string
	RealDueDate      *time.Time
	EstimatedMinutes *int
}

// CommandName returns the command name for logging and routing.
func (UpdateTaskCommand) CommandName() string { return "tasks.update_task" }

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository) *UpdateTaskHandler {
	return &UpdateTaskHandler{taskRepo: taskRepo, outboxRepo: outboxRepo}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	t, err := h.taskRepo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return err
	}
	if t.UserID() != cmd.UserID {
		return task.ErrNotOwner
	}

	if cmd.Title != nil {
		if err := t.SetTitle(*cmd.Title); err != nil {
			return err
		}
	}
	if cmd.Description != nil {
		t.SetDescription(*cmd.Description)
	}
	if cmd.Category != nil {
		t.SetCategory(*cmd.Category)
	}
	if cmd.RealDueDate != nil {
		if err := t.SetRealDueDate(*cmd.RealDueDate); err != nil {
			return err
		}
	}
	if cmd.EstimatedMinutes != nil {
		t.SetEstimatedMinutes(*cmd.EstimatedMinutes)
	}

	if err := h.taskRepo.Save(ctx, t); err != nil {
		return err
	}

	if err := persistEvents(ctx, h.outboxRepo, t.DomainEvents(), cmd.UserID); err != nil {
		return err
	}
	t.ClearDomainEvents()
	return nil
}
