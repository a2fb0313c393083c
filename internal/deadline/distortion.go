// Package deadline implements the deadline-distortion engine: the pure
// functions that map a task's real due date, the owner's reliability score,
// and the current time to the due date the user actually sees.
//
// The displayed ("fake") due date is never persisted. It is recomputed on
// every read so it can shift as "now" advances.
package deadline

import (
	"math"
	"time"
)

// Distortion bands, measured in days remaining until the real due date.
const (
	truthZoneDays  = 7.0
	softShaveDays  = 4.0
	ratioShaveDays = 2.0
	compressDays   = 1.0
)

// clampScore normalizes a reliability score into [0,100]. NaN and negative
// values collapse to 0 (maximum distortion) so a corrupt profile can never
// crash a scheduling pass.
func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ComputeFakeDueDate returns the due date shown to the user.
//
// The further out the real deadline, the more honest the result: beyond seven
// days the real date is returned untouched, and an already-overdue task is
// also reported truthfully. In between, lower reliability scores shave more
// time off. The result is deterministic for a given (realDue, score, now)
// triple, which is what makes it testable; callers must inject now.
func ComputeFakeDueDate(realDue time.Time, reliabilityScore float64, now time.Time) time.Time {
	score := clampScore(reliabilityScore)
	lieStrength := 1 - score/100

	remaining := realDue.Sub(now)
	daysRemaining := remaining.Hours() / 24

	var fake time.Time
	switch {
	case daysRemaining > truthZoneDays:
		return realDue
	case daysRemaining > softShaveDays:
		// Shave between 12h (fully reliable) and 36h.
		shave := time.Duration((0.5 + lieStrength) * float64(24*time.Hour))
		fake = realDue.Add(-shave)
	case daysRemaining > ratioShaveDays:
		// Shave 30-50% of the remaining time.
		shave := time.Duration((0.3 + 0.2*lieStrength) * float64(remaining))
		fake = realDue.Add(-shave)
	case daysRemaining > compressDays:
		// Compress the display to a 12-18h horizon from now.
		horizon := 12*time.Hour + time.Duration(score/100*float64(6*time.Hour))
		fake = now.Add(horizon)
	case daysRemaining > 0:
		// Final day: 1-6h horizon.
		horizon := 1*time.Hour + time.Duration(score/100*float64(5*time.Hour))
		fake = now.Add(horizon)
	default:
		// Already overdue. Lying would only confuse the accounting.
		return realDue
	}

	// The compression bands anchor on now, which for short horizons can land
	// past the real date. A lie is only allowed in the early direction.
	if fake.After(realDue) {
		fake = realDue
	}

	// Never show a past fake deadline for a task that is not actually late.
	if fake.Before(now) && realDue.After(now) {
		return now.Add(time.Hour)
	}
	return fake
}
