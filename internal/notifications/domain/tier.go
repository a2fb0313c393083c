// Package domain defines the notification tiers and the append-only send log
// that makes the hourly notifier pass idempotent.
package domain

import "time"

// Tier classifies how close a task's displayed due date is. Tiers are ordered
// by urgency; a task occupies exactly one tier at a time and moves through
// them monotonically as the deadline approaches.
type Tier string

const (
	TierNone    Tier = ""
	TierFourDay Tier = "4_day"
	TierOneDay  Tier = "1_day"
	TierDayOf   Tier = "day_of"
	TierOverdue Tier = "overdue"
)

// TierFor maps a displayed due date to its notification tier. Tiers are
// computed against the displayed (distorted) date, never the real one, so the
// reminders reinforce the lie.
func TierFor(fakeDue, now time.Time) Tier {
	remaining := fakeDue.Sub(now)
	switch {
	case remaining < 0:
		return TierOverdue
	case remaining < 24*time.Hour:
		return TierDayOf
	case remaining < 2*24*time.Hour:
		return TierOneDay
	case remaining < 5*24*time.Hour:
		return TierFourDay
	default:
		return TierNone
	}
}

// OneShot reports whether a tier fires at most once per task. The advance
// tiers are one-shot; the near tiers repeat on a cooldown instead.
func (t Tier) OneShot() bool {
	return t == TierFourDay || t == TierOneDay
}

// Cooldown returns the minimum gap between repeat sends for a repeating tier.
// Overdue nags hourly, day-of every three hours. One-shot tiers return zero.
func (t Tier) Cooldown(overdue, dayOf time.Duration) time.Duration {
	switch t {
	case TierOverdue:
		return overdue
	case TierDayOf:
		return dayOf
	default:
		return 0
	}
}

// EmailEligible reports whether the tier may go out over email. Only the
// one-shot advance tiers use email; the repeating tiers would flood an inbox.
func (t Tier) EmailEligible() bool {
	return t.OneShot()
}
