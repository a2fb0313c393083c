package services

import (
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// CalibrationWindowSize bounds how many recent observations feed the trend.
const CalibrationWindowSize = 10

// calibrationMinObservations is the floor below which no trend is surfaced.
const calibrationMinObservations = 3

// observation pairs a task with its actual/estimated ratio.
type observation struct {
	taskID uuid.UUID
	ratio  float64
}

// CalibrationWindow maintains the rolling window of estimate-accuracy
// observations for one user.
type CalibrationWindow struct {
	observations []observation
}

// NewCalibrationWindow creates an empty window.
func NewCalibrationWindow() *CalibrationWindow {
	return &CalibrationWindow{}
}

// Observe records a completed task's actual/estimated ratio, evicting the
// oldest entry once the window is full. Non-positive ratios are ignored.
func (w *CalibrationWindow) Observe(taskID uuid.UUID, ratio float64) {
	if ratio <= 0 {
		return
	}
	w.observations = append(w.observations, observation{taskID: taskID, ratio: ratio})
	if len(w.observations) > CalibrationWindowSize {
		w.observations = w.observations[len(w.observations)-CalibrationWindowSize:]
	}
}

// SeedFromTasks replays historical completions into the window so the trend
// survives process restarts. Tasks are expected newest-first, as the
// repositories return them; they are observed oldest-first so eviction keeps
// the most recent ones.
func (w *CalibrationWindow) SeedFromTasks(tasks []*task.Task) {
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		est, act := t.EstimatedMinutes(), t.ActualMinutes()
		if est == nil || act == nil || *est <= 0 {
			continue
		}
		w.Observe(t.ID(), float64(*act)/float64(*est))
	}
}

// Count returns how many observations the window holds.
func (w *CalibrationWindow) Count() int {
	return len(w.observations)
}

// Accuracy returns the calibration score as a percentage in [0,100] and
// whether enough observations exist to surface it. Each observation scores
// min(ratio, 1/ratio), so over- and under-estimating are penalized alike.
func (w *CalibrationWindow) Accuracy() (float64, bool) {
	if len(w.observations) < calibrationMinObservations {
		return 0, false
	}

	var total float64
	for _, obs := range w.observations {
		score := obs.ratio
		if inv := 1 / obs.ratio; inv < score {
			score = inv
		}
		total += score
	}
	return total / float64(len(w.observations)) * 100, true
}
