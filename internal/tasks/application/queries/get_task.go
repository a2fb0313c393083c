package queries

import (
	"context"
	"time"

	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// GetTaskQuery fetches one task as its owner sees it.
type GetTaskQuery struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// QueryName returns the query name for logging and routing.
func (GetTaskQuery) QueryName() string { return "tasks.get_task" }

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo    task.Repository
	profileRepo profiles.Repository
	now         func() time.Time
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository, profileRepo profiles.Repository, now func() time.Time) *GetTaskHandler {
	if now == nil {
		now = time.Now
	}
	return &GetTaskHandler{taskRepo: taskRepo, profileRepo: profileRepo, now: now}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, q GetTaskQuery) (*TaskView, error) {
	t, err := h.taskRepo.FindByID(ctx, q.TaskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != q.UserID {
		return nil, task.ErrNotOwner
	}

	profile, err := h.profileRepo.Get(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	view := toView(t, profile.ReliabilityScore, h.now())
	return &view, nil
}
