package deadline

import "time"

// Urgency buckets a due date by hours remaining. Both the UI and the
// notification tier selection derive from this one table; the thresholds must
// not be duplicated elsewhere.
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyLow
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
	UrgencyOverdue
)

func (u Urgency) String() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyCritical:
		return "critical"
	case UrgencyHigh:
		return "high"
	case UrgencyMedium:
		return "medium"
	case UrgencyLow:
		return "low"
	default:
		return "none"
	}
}

// Urgency classification boundaries in hours remaining.
const (
	criticalHours = 4
	highHours     = 24
	mediumHours   = 72
	lowHours      = 168
)

// ClassifyUrgency maps a due instant to an urgency bucket. A due date exactly
// at a boundary falls into the calmer bucket (exactly 4h remaining is high,
// not critical).
func ClassifyUrgency(due, now time.Time) Urgency {
	hours := due.Sub(now).Hours()
	switch {
	case hours < 0:
		return UrgencyOverdue
	case hours < criticalHours:
		return UrgencyCritical
	case hours < highHours:
		return UrgencyHigh
	case hours < mediumHours:
		return UrgencyMedium
	case hours < lowHours:
		return UrgencyLow
	default:
		return UrgencyNone
	}
}
