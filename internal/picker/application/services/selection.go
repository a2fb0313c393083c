package services

import (
	"time"

	"github.com/google/uuid"
)

// PickTask performs weighted random selection over the candidates, skipping
// excluded IDs. Returns nil when no candidate survives the filter; a single
// survivor is returned without a draw.
func (s *Scorer) PickTask(candidates []Candidate, exclude map[uuid.UUID]struct{}, now time.Time) *Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := exclude[c.Task.ID()]; skip {
			continue
		}
		eligible = append(eligible, c)
	}

	switch len(eligible) {
	case 0:
		return nil
	case 1:
		return &eligible[0]
	}

	weights := make([]float64, len(eligible))
	var total float64
	for i, c := range eligible {
		weights[i] = s.Weigh(c, now).Value
		total += weights[i]
	}
	if total <= 0 {
		return &eligible[0]
	}

	// Cumulative walk with a single draw.
	draw := s.float64() * total
	var cum float64
	for i := range eligible {
		cum += weights[i]
		if draw < cum {
			return &eligible[i]
		}
	}
	return &eligible[len(eligible)-1]
}
