package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T, title string, due time.Time) *task.Task {
	t.Helper()
	tk, err := task.NewTask(uuid.New(), title, due)
	require.NoError(t, err)
	return tk
}

func TestIsQuickWin(t *testing.T) {
	s := NewScorer(30, nil)

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"keyword match", "Call the dentist about that thing they said last time", true},
		{"keyword is case-insensitive", "EMAIL the landlord", true},
		{"short title", "Water the plants", true},
		{"long title without keyword", "Reorganize the entire garage including the shelving units", false},
		{"short but multi-clause", "Do taxes; file receipts", false},
		{"keyword inside multi-clause still disqualified", "Call mom; call dad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsQuickWin(tt.title))
		})
	}
}

func TestWeigh(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := NewScorer(30, rand.New(rand.NewSource(7)))

	t.Run("overdue quick win scores near the top", func(t *testing.T) {
		tk := newTestTask(t, "Pay rent", now.Add(time.Hour))
		w := s.Weigh(Candidate{Task: tk, FakeDue: now.Add(-time.Hour)}, now)

		// 0.35*1 + 0.20*0.1 + 0.25*0.8 + random*0.20
		assert.GreaterOrEqual(t, w.Value, 0.57)
		assert.LessOrEqual(t, w.Value, 0.77)
		assert.Contains(t, w.Reasons, "Due soon")
		assert.Contains(t, w.Reasons, "Quick win")
	})

	t.Run("distant non-quick-win scores near the bottom", func(t *testing.T) {
		tk := newTestTask(t, "Completely restructure the household filing system from scratch", now.Add(40*24*time.Hour))
		w := s.Weigh(Candidate{Task: tk, FakeDue: now.Add(30 * 24 * time.Hour)}, now)

		// 0.35*0.1 + 0.20*0.1 + 0.25*0.2 + random*0.20
		assert.GreaterOrEqual(t, w.Value, 0.105)
		assert.LessOrEqual(t, w.Value, 0.305)
		assert.NotContains(t, w.Reasons, "Due soon")
		assert.NotContains(t, w.Reasons, "Quick win")
	})

	t.Run("old tasks earn the waiting reason", func(t *testing.T) {
		createdAt := now.Add(-10 * 24 * time.Hour)
		tk := task.Rehydrate(
			uuid.New(), uuid.New(), "Pay rent", "", "",
			now.Add(time.Hour), task.StatusPending,
			nil, nil, nil, nil, 0, createdAt, createdAt,
		)
		w := s.Weigh(Candidate{Task: tk, FakeDue: now.Add(time.Hour)}, now)
		assert.Contains(t, w.Reasons, "Been waiting")
	})
}

func TestPickTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := NewScorer(30, rand.New(rand.NewSource(99)))

	t.Run("empty pool returns nil", func(t *testing.T) {
		assert.Nil(t, s.PickTask(nil, nil, now))
	})

	t.Run("single candidate returned without a draw", func(t *testing.T) {
		tk := newTestTask(t, "Only option", now.Add(time.Hour))
		got := s.PickTask([]Candidate{{Task: tk, FakeDue: now.Add(time.Hour)}}, nil, now)
		require.NotNil(t, got)
		assert.Equal(t, tk.ID(), got.Task.ID())
	})

	t.Run("excluded ids are skipped", func(t *testing.T) {
		a := newTestTask(t, "Task A", now.Add(time.Hour))
		b := newTestTask(t, "Task B", now.Add(time.Hour))
		candidates := []Candidate{
			{Task: a, FakeDue: now.Add(time.Hour)},
			{Task: b, FakeDue: now.Add(time.Hour)},
		}
		exclude := map[uuid.UUID]struct{}{a.ID(): {}}

		for range 20 {
			got := s.PickTask(candidates, exclude, now)
			require.NotNil(t, got)
			assert.Equal(t, b.ID(), got.Task.ID())
		}
	})

	t.Run("heavier weight wins a clear majority", func(t *testing.T) {
		urgent := newTestTask(t, "Send invoice", now.Add(3*time.Hour))
		distant := newTestTask(t, "Research venues; compare quotes; negotiate contract terms", now.Add(31*24*time.Hour))
		candidates := []Candidate{
			{Task: urgent, FakeDue: now.Add(2 * time.Hour)},
			{Task: distant, FakeDue: now.Add(30 * 24 * time.Hour)},
		}

		urgentWins := 0
		for range 100 {
			got := s.PickTask(candidates, nil, now)
			require.NotNil(t, got)
			if got.Task.ID() == urgent.ID() {
				urgentWins++
			}
		}
		assert.Greater(t, urgentWins, 60,
			"urgent quick win should be picked in a clear majority of %d trials", 100)
	})
}
