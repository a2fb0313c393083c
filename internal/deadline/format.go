package deadline

import (
	"fmt"
	"time"
)

// FormatRemaining renders the time until due using the largest nonzero unit
// among days, hours, and minutes. A past due date renders as the bare word
// "overdue"; call FormatOverdueBy for the graduated variant.
func FormatRemaining(due, now time.Time) string {
	remaining := due.Sub(now)
	if remaining < 0 {
		return "overdue"
	}

	days := int(remaining.Hours() / 24)
	if days > 0 {
		return pluralize(days, "day")
	}
	hours := int(remaining.Hours())
	if hours > 0 {
		return pluralize(hours, "hour")
	}
	minutes := int(remaining.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return pluralize(minutes, "minute")
}

// FormatOverdueBy renders how late a task is at day granularity, falling back
// to hours inside the first day. Callers that only need a boolean-style
// "overdue" marker should use FormatRemaining.
func FormatOverdueBy(due, now time.Time) string {
	late := now.Sub(due)
	if late < 0 {
		return FormatRemaining(due, now)
	}

	days := int(late.Hours() / 24)
	if days > 0 {
		return pluralize(days, "day") + " overdue"
	}
	hours := int(late.Hours())
	if hours < 1 {
		hours = 1
	}
	return pluralize(hours, "hour") + " overdue"
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
