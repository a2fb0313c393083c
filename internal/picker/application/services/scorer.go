// Package services implements pick-for-me: deterministic weight scoring with
// a random component, weighted random selection, and the escalation engine.
package services

import (
	"math/rand"
	"strings"
	"time"

	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
)

// Scoring weights. They must sum to 1.
const (
	deadlineWeight = 0.35
	ageWeight      = 0.20
	quickWinWeight = 0.25
	randomWeight   = 0.20
)

// quickWinKeywords mark tasks that are probably a single small action.
var quickWinKeywords = []string{
	"call", "email", "text", "check", "send", "reply", "book",
	"schedule", "confirm", "order", "pay", "sign", "cancel", "renew",
}

// DefaultQuickWinTitleLimit is the short-title threshold below which a task
// counts as a quick win. The source material used two different limits in
// different call sites; one configurable limit replaces both.
const DefaultQuickWinTitleLimit = 30

// Candidate pairs a task with its distorted due date, which is what the
// deadline proximity score measures against.
type Candidate struct {
	Task    *task.Task
	FakeDue time.Time
}

// Weight is a computed selection weight plus the human-readable reasons that
// crossed their thresholds. Reasons explain the pick in the UI; they play no
// part in selection.
type Weight struct {
	Value   float64
	Reasons []string
}

// Scorer computes task selection weights.
type Scorer struct {
	quickWinTitleLimit int
	rng                *rand.Rand
}

// NewScorer creates a scorer. A nil rng falls back to the global source; the
// limit falls back to DefaultQuickWinTitleLimit when non-positive.
func NewScorer(quickWinTitleLimit int, rng *rand.Rand) *Scorer {
	if quickWinTitleLimit <= 0 {
		quickWinTitleLimit = DefaultQuickWinTitleLimit
	}
	return &Scorer{quickWinTitleLimit: quickWinTitleLimit, rng: rng}
}

// IsQuickWin reports whether a task looks completable with minimal effort:
// a known low-effort keyword in the title, or a short single-clause title.
// Multi-clause titles (semicolons) never qualify, however short.
func (s *Scorer) IsQuickWin(title string) bool {
	if strings.Contains(title, ";") {
		return false
	}
	lower := strings.ToLower(title)
	for _, kw := range quickWinKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return len(title) < s.quickWinTitleLimit
}

// Weigh computes the selection weight for a candidate at the given instant.
func (s *Scorer) Weigh(c Candidate, now time.Time) Weight {
	deadline := deadlineScore(c.FakeDue, now)
	age := ageScore(c.Task.CreatedAt(), now)

	quickWin := 0.2
	isQuick := s.IsQuickWin(c.Task.Title())
	if isQuick {
		quickWin = 0.8
	}

	random := s.float64()

	w := Weight{
		Value: deadline*deadlineWeight +
			age*ageWeight +
			quickWin*quickWinWeight +
			random*randomWeight,
	}

	if deadline >= 0.7 {
		w.Reasons = append(w.Reasons, "Due soon")
	}
	if isQuick {
		w.Reasons = append(w.Reasons, "Quick win")
	}
	if age >= 0.6 {
		w.Reasons = append(w.Reasons, "Been waiting")
	}

	return w
}

func deadlineScore(fakeDue, now time.Time) float64 {
	remaining := fakeDue.Sub(now)
	switch {
	case remaining < 0:
		return 1
	case remaining < 24*time.Hour:
		return 0.9
	case remaining < 48*time.Hour:
		return 0.7
	case remaining < 7*24*time.Hour:
		return 0.5
	case remaining < 14*24*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

func ageScore(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age < 24*time.Hour:
		return 0.1
	case age < 3*24*time.Hour:
		return 0.3
	case age < 7*24*time.Hour:
		return 0.6
	case age < 14*24*time.Hour:
		return 0.8
	default:
		return 1
	}
}

func (s *Scorer) float64() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}
