// Package task defines the Task aggregate. A task always carries its real,
// user-entered due date; the distorted date the user sees is derived at read
// time and never stored here.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/chivvyhq/chivvy/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrNoDueDate           = errors.New("task due date is required")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrNotOwner            = errors.New("task belongs to another user")
	ErrPastPostponement    = errors.New("postponed-until must be in the future")
)

// Status represents the task lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusCompleted
	StatusOverdue
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusOverdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// ParseStatus converts a persisted status string back to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "completed":
		return StatusCompleted
	case "overdue":
		return StatusOverdue
	default:
		return StatusPending
	}
}

// Task represents a unit of work with a real deadline.
type Task struct {
	domain.BaseAggregateRoot
	userID           uuid.UUID
	title            string
	description      string
	category         string
	realDueDate      time.Time
	status           Status
	completedAt      *time.Time
	completedOnTime  *bool
	estimatedMinutes *int
	actualMinutes    *int
}

// NewTask creates a new pending task.
func NewTask(userID uuid.UUID, title string, realDueDate time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if realDueDate.IsZero() {
		return nil, ErrNoDueDate
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		realDueDate:       realDueDate,
		status:            StatusPending,
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.userID, t.title, t.realDueDate))

	return t, nil
}

// Rehydrate rebuilds a task from persisted state.
func Rehydrate(
	id, userID uuid.UUID,
	title, description, category string,
	realDueDate time.Time,
	status Status,
	completedAt *time.Time,
	completedOnTime *bool,
	estimatedMinutes, actualMinutes *int,
	version int,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(id, createdAt, updatedAt), version),
		userID:           userID,
		title:            title,
		description:      description,
		category:         category,
		realDueDate:      realDueDate,
		status:           status,
		completedAt:      completedAt,
		completedOnTime:  completedOnTime,
		estimatedMinutes: estimatedMinutes,
		actualMinutes:    actualMinutes,
	}
}

func (t *Task) UserID() uuid.UUID      { return t.userID }
func (t *Task) Title() string          { return t.title }
func (t *Task) Description() string    { return t.description }
func (t *Task) Category() string       { return t.category }
func (t *Task) RealDueDate() time.Time { return t.realDueDate }
func (t *Task) Status() Status         { return t.status }
func (t *Task) CompletedAt() *time.Time { return t.completedAt }
func (t *Task) CompletedOnTime() *bool  { return t.completedOnTime }
func (t *Task) EstimatedMinutes() *int  { return t.estimatedMinutes }
func (t *Task) ActualMinutes() *int     { return t.actualMinutes }
func (t *Task) IsCompleted() bool       { return t.status == StatusCompleted }

// IsPending reports whether the task still needs doing. Overdue tasks remain
// pending for notification purposes.
func (t *Task) IsPending() bool {
	return t.status != StatusCompleted
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.Touch()
}

// SetCategory updates the task category.
func (t *Task) SetCategory(category string) {
	t.category = strings.TrimSpace(category)
	t.Touch()
}

// SetRealDueDate moves the authoritative deadline.
func (t *Task) SetRealDueDate(due time.Time) error {
	if due.IsZero() {
		return ErrNoDueDate
	}
	t.realDueDate = due
	t.Touch()
	return nil
}

// SetEstimatedMinutes records the user's effort estimate.
func (t *Task) SetEstimatedMinutes(minutes int) {
	t.estimatedMinutes = &minutes
	t.Touch()
}

// Complete marks the task completed at the given instant, recording whether
// it beat the REAL due date and, optionally, the actual minutes spent. The
// on-time flag is always measured against the real deadline: the fake one is
// a display artifact and must not leak into the accounting.
func (t *Task) Complete(now time.Time, actualMinutes *int) error {
	if t.IsCompleted() {
		return ErrTaskAlreadyComplete
	}

	onTime := !now.After(t.realDueDate)
	t.status = StatusCompleted
	t.completedAt = &now
	t.completedOnTime = &onTime
	if actualMinutes != nil {
		t.actualMinutes = actualMinutes
	}
	t.Touch()

	t.AddDomainEvent(NewTaskCompleted(t.ID(), t.userID, onTime, t.estimatedMinutes, t.actualMinutes))

	return nil
}

// MarkOverdue flips a pending task past its real due date to overdue status.
func (t *Task) MarkOverdue(now time.Time) {
	if t.status != StatusPending || now.Before(t.realDueDate) {
		return
	}
	t.status = StatusOverdue
	t.Touch()
}
