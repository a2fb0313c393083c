// Package commands holds the write-side handlers for the tasks context.
// Every state change flows through here; domain events go to the outbox in
// the same handler.
package commands

import (
	"context"
	"time"

	sharedApplication "github.com/chivvyhq/chivvy/internal/shared/application"
	sharedDomain "github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// CreateTaskCommand contains the data needed to create a task. RealDueDate is
// the user's honest deadline; distortion happens on read, never on write.
type CreateTaskCommand struct {
	UserID           uuid.UUID
	Title            string
	Description      string
	Category         string
	RealDueDate      time.Time
	EstimatedMinutes int
}

// CommandName returns the command name for logging and routing.
func (CreateTaskCommand) CommandName() string { return "tasks.create_task" }

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
}

// NewCreateTaskHandler creates a new CreateTaskHandler. A nil outbox repo
// disables event publication (local mode).
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository) *CreateTaskHandler {
	return &CreateTaskHandler{taskRepo: taskRepo, outboxRepo: outboxRepo}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	t, err := task.NewTask(cmd.UserID, cmd.Title, cmd.RealDueDate)
	if err != nil {
		return nil, err
	}

	if cmd.Description != "" {
		t.SetDescription(cmd.Description)
	}
	if cmd.Category != "" {
		t.SetCategory(cmd.Category)
	}
	if cmd.EstimatedMinutes > 0 {
		t.SetEstimatedMinutes(cmd.EstimatedMinutes)
	}

	if err := h.taskRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	if err := persistEvents(ctx, h.outboxRepo, t.DomainEvents(), cmd.UserID); err != nil {
		return nil, err
	}
	t.ClearDomainEvents()

	return &CreateTaskResult{TaskID: t.ID()}, nil
}

// persistEvents stamps metadata on the events and writes them to the outbox.
// A nil repo means events are intentionally dropped (local mode).
func persistEvents(ctx context.Context, repo outbox.Repository, events []sharedDomain.DomainEvent, userID uuid.UUID) error {
	if repo == nil || len(events) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}
