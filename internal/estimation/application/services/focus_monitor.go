// Package services implements the live estimation feedback engines: the
// focus-session alert monitor and the longer-horizon calibration window.
package services

import (
	"time"

	"github.com/google/uuid"
)

// AlertKind distinguishes the two alert families a focus session can raise.
type AlertKind string

const (
	AlertMilestone AlertKind = "milestone"
	AlertOverage   AlertKind = "overage"
)

// Alert is a single fired threshold.
type Alert struct {
	Kind AlertKind
	// Minutes is the elapsed-time threshold for milestone alerts.
	Minutes int
	// Ratio is the estimate-overage threshold for overage alerts.
	Ratio float64
}

// Elapsed-time milestones in minutes, and overage ratios, each fired once per
// session in strictly increasing order.
var (
	milestoneMinutes = []int{30, 60, 120, 180}
	overageRatios    = []float64{1.5, 2, 3}
)

// FocusMonitor tracks alert watermarks for one user's active focus session.
// The caller polls Check on a coarse interval; the watermarks guarantee each
// threshold fires at most once and never re-fires a lower threshold after a
// higher one. Not safe for concurrent use; one session has one poller.
type FocusMonitor struct {
	taskID             uuid.UUID
	startedAt          time.Time
	estimatedMinutes   int
	milestones         bool
	overages           bool
	milestoneWatermark int     // highest milestone minutes already fired
	overageWatermark   float64 // highest overage ratio already fired
}

// NewFocusMonitor starts monitoring a focus session on the given task with
// both alert families enabled. estimatedMinutes of zero disables overage
// alerts.
func NewFocusMonitor(taskID uuid.UUID, startedAt time.Time, estimatedMinutes int) *FocusMonitor {
	return &FocusMonitor{
		taskID:           taskID,
		startedAt:        startedAt,
		estimatedMinutes: estimatedMinutes,
		milestones:       true,
		overages:         true,
	}
}

// SetAlertKinds selects which alert families the session raises. A disabled
// family never fires, never advances its watermark, and never consumes the
// single alert slot an eligible family could use.
func (m *FocusMonitor) SetAlertKinds(milestones, overages bool) {
	m.milestones = milestones
	m.overages = overages
}

// TaskID returns the focused task.
func (m *FocusMonitor) TaskID() uuid.UUID { return m.taskID }

// SwitchTask resets all watermarks and begins tracking a new task.
func (m *FocusMonitor) SwitchTask(taskID uuid.UUID, startedAt time.Time, estimatedMinutes int) {
	m.taskID = taskID
	m.startedAt = startedAt
	m.estimatedMinutes = estimatedMinutes
	m.milestoneWatermark = 0
	m.overageWatermark = 0
}

// Check evaluates the session at the given instant and returns at most one
// alert. When a milestone and an overage are both newly eligible the
// milestone wins.
func (m *FocusMonitor) Check(now time.Time) *Alert {
	elapsed := now.Sub(m.startedAt)
	if elapsed < 0 {
		return nil
	}
	elapsedMinutes := int(elapsed.Minutes())

	if m.milestones {
		if a := m.checkMilestone(elapsedMinutes); a != nil {
			return a
		}
	}
	if m.overages {
		return m.checkOverage(elapsedMinutes)
	}
	return nil
}

func (m *FocusMonitor) checkMilestone(elapsedMinutes int) *Alert {
	for i := len(milestoneMinutes) - 1; i >= 0; i-- {
		threshold := milestoneMinutes[i]
		if elapsedMinutes >= threshold && threshold > m.milestoneWatermark {
			m.milestoneWatermark = threshold
			return &Alert{Kind: AlertMilestone, Minutes: threshold}
		}
	}
	return nil
}

func (m *FocusMonitor) checkOverage(elapsedMinutes int) *Alert {
	if m.estimatedMinutes <= 0 {
		return nil
	}
	ratio := float64(elapsedMinutes) / float64(m.estimatedMinutes)
	for i := len(overageRatios) - 1; i >= 0; i-- {
		threshold := overageRatios[i]
		if ratio >= threshold && threshold > m.overageWatermark {
			m.overageWatermark = threshold
			return &Alert{Kind: AlertOverage, Ratio: threshold}
		}
	}
	return nil
}
