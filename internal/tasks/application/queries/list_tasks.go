// Package queries holds the read-side handlers for the tasks context. This
// is the only layer that turns real due dates into displayed ones; nothing
// above it ever sees the truth.
package queries

import (
	"context"
	"sort"
	"time"

	"github.com/chivvyhq/chivvy/internal/deadline"
	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// TaskView is a task as the user is allowed to see it. DueDate is the
// distorted date; the real one stays inside the domain.
type TaskView struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Category         string
	DueDate          time.Time
	Urgency          deadline.Urgency
	Remaining        string
	Status           task.Status
	EstimatedMinutes *int
	CompletedAt      *time.Time
}

// ListTasksQuery lists a user's tasks.
type ListTasksQuery struct {
	UserID      uuid.UUID
	PendingOnly bool
}

// QueryName returns the query name for logging and routing.
func (ListTasksQuery) QueryName() string { return "tasks.list_tasks" }

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo    task.Repository
	profileRepo profiles.Repository
	now         func() time.Time
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository, profileRepo profiles.Repository, now func() time.Time) *ListTasksHandler {
	if now == nil {
		now = time.Now
	}
	return &ListTasksHandler{taskRepo: taskRepo, profileRepo: profileRepo, now: now}
}

// Handle executes the ListTasksQuery. Results are ordered by displayed due
// date, most urgent first.
func (h *ListTasksHandler) Handle(ctx context.Context, q ListTasksQuery) ([]TaskView, error) {
	profile, err := h.profileRepo.Get(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	if q.PendingOnly {
		tasks, err = h.taskRepo.FindPending(ctx, q.UserID)
	} else {
		tasks, err = h.taskRepo.FindByUserID(ctx, q.UserID)
	}
	if err != nil {
		return nil, err
	}

	now := h.now()
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toView(t, profile.ReliabilityScore, now))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DueDate.Before(views[j].DueDate)
	})
	return views, nil
}

func toView(t *task.Task, score float64, now time.Time) TaskView {
	fakeDue := deadline.ComputeFakeDueDate(t.RealDueDate(), score, now)
	return TaskView{
		ID:               t.ID(),
		Title:            t.Title(),
		Description:      t.Description(),
		Category:         t.Category(),
		DueDate:          fakeDue,
		Urgency:          deadline.ClassifyUrgency(fakeDue, now),
		Remaining:        deadline.FormatRemaining(fakeDue, now),
		Status:           t.Status(),
		EstimatedMinutes: t.EstimatedMinutes(),
		CompletedAt:      t.CompletedAt(),
	}
}
