package task

import (
	"time"

	"github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated   = "tasks.task.created"
	RoutingKeyCompleted = "tasks.task.completed"
	RoutingKeyPostponed = "tasks.task.postponed"
	RoutingKeyDeleted   = "tasks.task.deleted"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
	RealDue time.Time `json:"real_due_date"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID, userID uuid.UUID, title string, realDue time.Time) *TaskCreated {
	return &TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		UserID:    userID,
		Title:     title,
		RealDue:   realDue,
	}
}

// TaskCompleted is emitted when a task is completed. Estimated and actual
// minutes ride along so the estimation feedback loop can consume them off the
// bus without a second read.
type TaskCompleted struct {
	domain.BaseEvent
	UserID           uuid.UUID `json:"user_id"`
	OnTime           bool      `json:"on_time"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int      `json:"actual_minutes,omitempty"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID, userID uuid.UUID, onTime bool, estimated, actual *int) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent:        domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
		UserID:           userID,
		OnTime:           onTime,
		EstimatedMinutes: estimated,
		ActualMinutes:    actual,
	}
}

// TaskPostponed is emitted when the user excuses a task until a later time.
type TaskPostponed struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	Until  time.Time `json:"until"`
}

// NewTaskPostponed creates a TaskPostponed event.
func NewTaskPostponed(taskID, userID uuid.UUID, until time.Time) *TaskPostponed {
	return &TaskPostponed{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyPostponed),
		UserID:    userID,
		Until:     until,
	}
}

// TaskDeleted is emitted when a task is explicitly deleted.
type TaskDeleted struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID, userID uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
		UserID:    userID,
	}
}
