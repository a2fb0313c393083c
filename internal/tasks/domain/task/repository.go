package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for task persistence.
type Repository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	FindPending(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	// FindAllPending returns every user's pending tasks; the notifier pass
	// iterates this.
	FindAllPending(ctx context.Context) ([]*Task, error)
	// FindRecentlyCompleted returns the user's most recently completed tasks
	// that carry both an estimate and an actual duration, newest first.
	FindRecentlyCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Postponement is the user's "excuse": while Until is in the future the task
// is fully exempt from notification evaluation. It expires by time alone.
type Postponement struct {
	TaskID    uuid.UUID
	UserID    uuid.UUID
	Until     time.Time
	CreatedAt time.Time
}

// Active reports whether the postponement still shields the task.
func (p Postponement) Active(now time.Time) bool {
	return p.Until.After(now)
}

// PostponementRepository persists postponements.
type PostponementRepository interface {
	Save(ctx context.Context, p Postponement) error
	// ListActiveTaskIDs returns the set of task IDs currently postponed.
	ListActiveTaskIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error)
}
