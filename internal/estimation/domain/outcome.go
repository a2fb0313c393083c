// Package domain classifies how a recorded actual duration compares to the
// user's estimate.
package domain

import "math"

// Outcome is the discrete relationship between actual and estimated time.
type Outcome string

const (
	OutcomeWayUnder Outcome = "way_under"
	OutcomeUnder    Outcome = "under"
	OutcomeSpotOn   Outcome = "spot_on"
	OutcomeOver15x  Outcome = "over_1_5x"
	OutcomeOver2x   Outcome = "over_2x"
	OutcomeOver3x   Outcome = "over_3x"
)

// Classification bands over ratio = actual/estimated. Boundaries are
// inclusive on the calm side: a ratio of exactly 0.9 is spot_on, exactly 1.5
// is over_1_5x.
const (
	wayUnderMax = 0.5
	underMax    = 0.9 // exclusive
	spotOnMax   = 1.1
	over15xMax  = 1.5
	over2xMax   = 2.0
)

// Classify buckets the actual/estimated ratio. A non-positive estimate yields
// spot_on since there is nothing meaningful to compare against.
func Classify(estimatedMinutes, actualMinutes int) Outcome {
	if estimatedMinutes <= 0 || actualMinutes < 0 {
		return OutcomeSpotOn
	}

	ratio := float64(actualMinutes) / float64(estimatedMinutes)
	switch {
	case ratio <= wayUnderMax:
		return OutcomeWayUnder
	case ratio < underMax:
		return OutcomeUnder
	case ratio <= spotOnMax:
		return OutcomeSpotOn
	case ratio <= over15xMax:
		return OutcomeOver15x
	case ratio <= over2xMax:
		return OutcomeOver2x
	default:
		return OutcomeOver3x
	}
}

// PercentDiff returns the signed percentage difference between actual and
// estimated time, rounded to the nearest whole percent, for display.
func PercentDiff(estimatedMinutes, actualMinutes int) int {
	if estimatedMinutes <= 0 {
		return 0
	}
	ratio := float64(actualMinutes) / float64(estimatedMinutes)
	return int(math.Round((ratio - 1) * 100))
}
