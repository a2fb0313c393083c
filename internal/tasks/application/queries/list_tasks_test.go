package queries

import (
	"context"
	"testing"
	"time"

	"github.com/chivvyhq/chivvy/internal/deadline"
	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queryNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type stubTaskRepo struct {
	tasks []*task.Task
}

func (r *stubTaskRepo) Save(context.Context, *task.Task) error { return nil }
func (r *stubTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	for _, t := range r.tasks {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, task.ErrNoDueDate
}
func (r *stubTaskRepo) FindByUserID(context.Context, uuid.UUID) ([]*task.Task, error) {
	return r.tasks, nil
}
func (r *stubTaskRepo) FindPending(context.Context, uuid.UUID) ([]*task.Task, error) {
	var pending []*task.Task
	for _, t := range r.tasks {
		if t.IsPending() {
			pending = append(pending, t)
		}
	}
	return pending, nil
}
func (r *stubTaskRepo) FindAllPending(context.Context) ([]*task.Task, error) { return r.tasks, nil }
func (r *stubTaskRepo) FindRecentlyCompleted(context.Context, uuid.UUID, int) ([]*task.Task, error) {
	return nil, nil
}
func (r *stubTaskRepo) Delete(context.Context, uuid.UUID) error { return nil }

type stubProfileRepo struct {
	profile *profiles.Profile
}

func (r *stubProfileRepo) Get(context.Context, uuid.UUID) (*profiles.Profile, error) {
	return r.profile, nil
}
func (r *stubProfileRepo) Save(context.Context, *profiles.Profile) error { return nil }
func (r *stubProfileRepo) ListNotifiable(context.Context) ([]*profiles.Profile, error) {
	return []*profiles.Profile{r.profile}, nil
}

func TestListTasksHandler_Handle(t *testing.T) {
	userID := uuid.New()
	profile := profiles.NewProfile(userID, "user@example.com")
	profile.ReliabilityScore = 50

	realDue := queryNow.Add(5 * 24 * time.Hour)
	tk, err := task.NewTask(userID, "File taxes", realDue)
	require.NoError(t, err)

	handler := NewListTasksHandler(
		&stubTaskRepo{tasks: []*task.Task{tk}},
		&stubProfileRepo{profile: profile},
		func() time.Time { return queryNow },
	)

	views, err := handler.Handle(context.Background(), ListTasksQuery{UserID: userID, PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, "File taxes", view.Title)
	// Score 50 in the 4-7 day band shaves exactly 24 hours.
	assert.True(t, view.DueDate.Equal(realDue.Add(-24*time.Hour)),
		"list shows the distorted date, got %v", view.DueDate)
	assert.True(t, view.DueDate.Before(realDue), "displayed date never reveals the real one")
	assert.Equal(t, deadline.UrgencyLow, view.Urgency)
	assert.Equal(t, "4 days", view.Remaining)
}

func TestListTasksHandler_OrdersByDisplayedDueDate(t *testing.T) {
	userID := uuid.New()
	profile := profiles.NewProfile(userID, "user@example.com")

	far, err := task.NewTask(userID, "Far", queryNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	near, err := task.NewTask(userID, "Near", queryNow.Add(26*time.Hour))
	require.NoError(t, err)

	handler := NewListTasksHandler(
		&stubTaskRepo{tasks: []*task.Task{far, near}},
		&stubProfileRepo{profile: profile},
		func() time.Time { return queryNow },
	)

	views, err := handler.Handle(context.Background(), ListTasksQuery{UserID: userID})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Near", views[0].Title)
	assert.Equal(t, "Far", views[1].Title)
}

func TestGetTaskHandler_RejectsOtherUsers(t *testing.T) {
	userID := uuid.New()
	profile := profiles.NewProfile(userID, "user@example.com")

	tk, err := task.NewTask(userID, "Private", queryNow.Add(24*time.Hour))
	require.NoError(t, err)

	handler := NewGetTaskHandler(
		&stubTaskRepo{tasks: []*task.Task{tk}},
		&stubProfileRepo{profile: profile},
		func() time.Time { return queryNow },
	)

	_, err = handler.Handle(context.Background(), GetTaskQuery{TaskID: tk.ID(), UserID: uuid.New()})
	assert.ErrorIs(t, err, task.ErrNotOwner)
}
