// Package domain models the pick-for-me session state and its escalation
// rules. The state machine is explicit: three named modes with a total
// transition table, instead of the tangle of boolean flags this feature tends
// to grow.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mode is the escalation state machine's current state.
type Mode string

const (
	// ModeIdle means no active pick.
	ModeIdle Mode = "idle"
	// ModeSinglePicked means one task has been picked and is awaiting action.
	ModeSinglePicked Mode = "single_picked"
	// ModeEscalated means the user asked to be re-picked without finishing
	// and is now locked into single-task flow until they earn out.
	ModeEscalated Mode = "escalated"
)

// State is the persisted per-user pick-for-me record. A single logical writer
// per user (their own session) is assumed; concurrent writers can lose
// updates and are not guarded against here.
type State struct {
	UserID          uuid.UUID            `json:"user_id"`
	Mode            Mode                 `json:"mode"`
	PickedTaskID    *uuid.UUID           `json:"picked_task_id,omitempty"`
	PickCount       int                  `json:"pick_count"`
	TasksToComplete int                  `json:"tasks_to_complete"`
	CompletionsSoFar int                 `json:"completions_so_far"`
	Dismissed       map[uuid.UUID]struct{} `json:"-"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewState returns the initial state for a user.
func NewState(userID uuid.UUID) *State {
	return &State{
		UserID:    userID,
		Mode:      ModeIdle,
		Dismissed: make(map[uuid.UUID]struct{}),
	}
}

// InSingleTaskMode reports whether the user is locked to one task.
func (s *State) InSingleTaskMode() bool {
	return s.Mode == ModeEscalated
}

// SetPicked records the currently picked task.
func (s *State) SetPicked(taskID uuid.UUID) {
	id := taskID
	s.PickedTaskID = &id
	s.UpdatedAt = time.Now().UTC()
}

// Escalate enters single-task mode with the given earn-out requirement.
// The dismissed set resets so the user starts the earn-out with a full pool.
func (s *State) Escalate(tasksToComplete int) {
	s.Mode = ModeEscalated
	s.TasksToComplete = tasksToComplete
	s.CompletionsSoFar = 0
	s.Dismissed = make(map[uuid.UUID]struct{})
	s.UpdatedAt = time.Now().UTC()
}

// Dismiss adds a task to the dismissed set.
func (s *State) Dismiss(taskID uuid.UUID) {
	if s.Dismissed == nil {
		s.Dismissed = make(map[uuid.UUID]struct{})
	}
	s.Dismissed[taskID] = struct{}{}
	s.UpdatedAt = time.Now().UTC()
}

// ResetDismissed clears the dismissed set (full-cycle exhaustion).
func (s *State) ResetDismissed() {
	s.Dismissed = make(map[uuid.UUID]struct{})
	s.UpdatedAt = time.Now().UTC()
}

// Reset returns the state to idle, clearing everything.
func (s *State) Reset() {
	s.Mode = ModeIdle
	s.PickedTaskID = nil
	s.PickCount = 0
	s.TasksToComplete = 0
	s.CompletionsSoFar = 0
	s.Dismissed = make(map[uuid.UUID]struct{})
	s.UpdatedAt = time.Now().UTC()
}

// EarnOutThreshold maps a reliability score to the number of completions
// required to exit escalated mode. Reliable users earn out fast.
func EarnOutThreshold(reliabilityScore float64) int {
	switch {
	case reliabilityScore >= 80:
		return 1
	case reliabilityScore >= 50:
		return 2
	case reliabilityScore >= 25:
		return 3
	default:
		return 4
	}
}
