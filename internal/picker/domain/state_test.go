package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEarnOutThreshold(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{90, 1},
		{80, 1},
		{65, 2},
		{50, 2},
		{30, 3},
		{25, 3},
		{10, 4},
		{0, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EarnOutThreshold(tt.score), "score %.0f", tt.score)
	}
}

func TestStateTransitions(t *testing.T) {
	userID := uuid.New()

	t.Run("new state is idle", func(t *testing.T) {
		s := NewState(userID)
		assert.Equal(t, ModeIdle, s.Mode)
		assert.False(t, s.InSingleTaskMode())
		assert.Nil(t, s.PickedTaskID)
	})

	t.Run("escalate clears the dismissed set", func(t *testing.T) {
		s := NewState(userID)
		s.Dismiss(uuid.New())
		s.Dismiss(uuid.New())

		s.Escalate(3)

		assert.Equal(t, ModeEscalated, s.Mode)
		assert.True(t, s.InSingleTaskMode())
		assert.Equal(t, 3, s.TasksToComplete)
		assert.Zero(t, s.CompletionsSoFar)
		assert.Empty(t, s.Dismissed)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		s := NewState(userID)
		s.SetPicked(uuid.New())
		s.PickCount = 5
		s.Escalate(4)
		s.CompletionsSoFar = 2
		s.Dismiss(uuid.New())

		s.Reset()

		assert.Equal(t, ModeIdle, s.Mode)
		assert.Nil(t, s.PickedTaskID)
		assert.Zero(t, s.PickCount)
		assert.Zero(t, s.TasksToComplete)
		assert.Zero(t, s.CompletionsSoFar)
		assert.Empty(t, s.Dismissed)
	})
}
