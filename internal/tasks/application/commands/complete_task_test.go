package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	estimation "github.com/chivvyhq/chivvy/internal/estimation/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	newPendingTask := func(t *testing.T, due time.Time, estimate int) *task.Task {
		t.Helper()
		tk, err := task.NewTask(userID, "Write report", due)
		require.NoError(t, err)
		if estimate > 0 {
			tk.SetEstimatedMinutes(estimate)
		}
		tk.ClearDomainEvents()
		return tk
	}

	t.Run("completes on time with estimation verdict", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		picker := new(mockPickerNotifier)
		handler := NewCompleteTaskHandler(taskRepo, outboxRepo, picker, clock)

		tk := newPendingTask(t, now.Add(24*time.Hour), 60)
		actual := 130

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", mock.Anything, tk).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		picker.On("NotifyCompleted", mock.Anything, userID, tk.ID()).Return(nil)

		result, err := handler.Handle(context.Background(), CompleteTaskCommand{
			TaskID:        tk.ID(),
			UserID:        userID,
			ActualMinutes: &actual,
		})

		require.NoError(t, err)
		assert.True(t, result.OnTime)
		assert.True(t, result.HasOutcome)
		assert.Equal(t, estimation.OutcomeOver3x, result.Outcome)
		assert.Equal(t, 60, result.EstimatedMinutes)
		assert.Equal(t, 130, result.ActualMinutes)

		taskRepo.AssertExpectations(t)
		picker.AssertExpectations(t)
	})

	t.Run("late completion is not on time", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewCompleteTaskHandler(taskRepo, nil, nil, clock)

		tk := newPendingTask(t, now.Add(-time.Hour), 0)

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", mock.Anything, tk).Return(nil)

		result, err := handler.Handle(context.Background(), CompleteTaskCommand{
			TaskID: tk.ID(),
			UserID: userID,
		})

		require.NoError(t, err)
		assert.False(t, result.OnTime)
		assert.False(t, result.HasOutcome, "no estimate means no verdict")
	})

	t.Run("rejects another user's task", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewCompleteTaskHandler(taskRepo, nil, nil, clock)

		tk := newPendingTask(t, now.Add(time.Hour), 0)

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)

		_, err := handler.Handle(context.Background(), CompleteTaskCommand{
			TaskID: tk.ID(),
			UserID: uuid.New(),
		})

		assert.ErrorIs(t, err, task.ErrNotOwner)
	})

	t.Run("rejects double completion", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		handler := NewCompleteTaskHandler(taskRepo, nil, nil, clock)

		tk := newPendingTask(t, now.Add(time.Hour), 0)
		require.NoError(t, tk.Complete(now, nil))

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)

		_, err := handler.Handle(context.Background(), CompleteTaskCommand{
			TaskID: tk.ID(),
			UserID: userID,
		})

		assert.ErrorIs(t, err, task.ErrTaskAlreadyComplete)
	})

	t.Run("picker failure does not fail the completion", func(t *testing.T) {
		taskRepo := new(mockTaskRepo)
		picker := new(mockPickerNotifier)
		handler := NewCompleteTaskHandler(taskRepo, nil, picker, clock)

		tk := newPendingTask(t, now.Add(time.Hour), 0)

		taskRepo.On("FindByID", mock.Anything, tk.ID()).Return(tk, nil)
		taskRepo.On("Save", mock.Anything, tk).Return(nil)
		picker.On("NotifyCompleted", mock.Anything, userID, tk.ID()).Return(errors.New("state store down"))

		result, err := handler.Handle(context.Background(), CompleteTaskCommand{
			TaskID: tk.ID(),
			UserID: userID,
		})

		require.NoError(t, err)
		assert.True(t, result.OnTime)
	})
}
