package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()
	due := time.Now().Add(48 * time.Hour)

	t.Run("creates pending task with trimmed title", func(t *testing.T) {
		tk, err := NewTask(userID, "  Write report  ", due)
		require.NoError(t, err)

		assert.Equal(t, "Write report", tk.Title())
		assert.Equal(t, StatusPending, tk.Status())
		assert.Equal(t, due, tk.RealDueDate())
		assert.Nil(t, tk.CompletedAt())
		assert.Len(t, tk.DomainEvents(), 1)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewTask(userID, "   ", due)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("rejects zero due date", func(t *testing.T) {
		_, err := NewTask(userID, "Write report", time.Time{})
		assert.ErrorIs(t, err, ErrNoDueDate)
	})
}

func TestTaskComplete(t *testing.T) {
	userID := uuid.New()
	due := time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)

	t.Run("before the real due date is on time", func(t *testing.T) {
		tk, _ := NewTask(userID, "Write report", due)
		done := due.Add(-2 * time.Hour)

		minutes := 90
		require.NoError(t, tk.Complete(done, &minutes))

		assert.Equal(t, StatusCompleted, tk.Status())
		require.NotNil(t, tk.CompletedAt())
		assert.Equal(t, done, *tk.CompletedAt())
		require.NotNil(t, tk.CompletedOnTime())
		assert.True(t, *tk.CompletedOnTime())
		require.NotNil(t, tk.ActualMinutes())
		assert.Equal(t, 90, *tk.ActualMinutes())
	})

	t.Run("after the real due date is late even if the fake date was earlier", func(t *testing.T) {
		tk, _ := NewTask(userID, "Write report", due)

		require.NoError(t, tk.Complete(due.Add(time.Hour), nil))

		require.NotNil(t, tk.CompletedOnTime())
		assert.False(t, *tk.CompletedOnTime())
	})

	t.Run("completing twice fails", func(t *testing.T) {
		tk, _ := NewTask(userID, "Write report", due)
		require.NoError(t, tk.Complete(due, nil))
		assert.ErrorIs(t, tk.Complete(due, nil), ErrTaskAlreadyComplete)
	})
}

func TestTaskMarkOverdue(t *testing.T) {
	userID := uuid.New()
	due := time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)

	tk, _ := NewTask(userID, "Write report", due)

	tk.MarkOverdue(due.Add(-time.Hour))
	assert.Equal(t, StatusPending, tk.Status(), "not overdue before the due date")

	tk.MarkOverdue(due.Add(time.Hour))
	assert.Equal(t, StatusOverdue, tk.Status())
	assert.True(t, tk.IsPending(), "overdue tasks still need doing")

	require.NoError(t, tk.Complete(due.Add(2*time.Hour), nil))
	tk.MarkOverdue(due.Add(3 * time.Hour))
	assert.Equal(t, StatusCompleted, tk.Status(), "completed tasks stay completed")
}

func TestPostponementActive(t *testing.T) {
	now := time.Now()
	p := Postponement{TaskID: uuid.New(), Until: now.Add(time.Hour)}

	assert.True(t, p.Active(now))
	assert.False(t, p.Active(now.Add(2*time.Hour)))
}
