package deadline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestComputeFakeDueDate_TruthZone(t *testing.T) {
	realDue := baseNow.Add(10 * 24 * time.Hour)

	for _, score := range []float64{0, 25, 50, 75, 100} {
		fake := ComputeFakeDueDate(realDue, score, baseNow)
		assert.Equal(t, realDue, fake, "score %.0f should not distort beyond 7 days", score)
	}
}

func TestComputeFakeDueDate_Overdue(t *testing.T) {
	realDue := baseNow.Add(-3 * time.Hour)

	fake := ComputeFakeDueDate(realDue, 0, baseNow)
	assert.Equal(t, realDue, fake, "overdue tasks are reported truthfully")
}

func TestComputeFakeDueDate_SoftShaveBand(t *testing.T) {
	t.Run("fully reliable shaves 12h", func(t *testing.T) {
		realDue := baseNow.Add(6 * 24 * time.Hour)
		fake := ComputeFakeDueDate(realDue, 100, baseNow)
		assert.Equal(t, realDue.Add(-12*time.Hour), fake)
	})

	t.Run("fully unreliable shaves 36h", func(t *testing.T) {
		realDue := baseNow.Add(6 * 24 * time.Hour)
		fake := ComputeFakeDueDate(realDue, 0, baseNow)
		assert.Equal(t, realDue.Add(-36*time.Hour), fake)
	})

	t.Run("reliability 50 four days out shaves exactly one day", func(t *testing.T) {
		// Task created 10 days out; on day 6 there are 4 days remaining,
		// which still lands in the 4-7 day band boundary arithmetic.
		realDue := baseNow.Add(10 * 24 * time.Hour)
		day6 := baseNow.Add(6*24*time.Hour - time.Minute)
		fake := ComputeFakeDueDate(realDue, 50, day6)
		assert.Equal(t, realDue.Add(-24*time.Hour), fake)
	})
}

func TestComputeFakeDueDate_RatioShaveBand(t *testing.T) {
	realDue := baseNow.Add(3 * 24 * time.Hour)
	remaining := realDue.Sub(baseNow)

	t.Run("fully reliable shaves 30 percent", func(t *testing.T) {
		fake := ComputeFakeDueDate(realDue, 100, baseNow)
		want := realDue.Add(-time.Duration(0.3 * float64(remaining)))
		assert.Equal(t, want, fake)
	})

	t.Run("fully unreliable shaves 50 percent", func(t *testing.T) {
		fake := ComputeFakeDueDate(realDue, 0, baseNow)
		want := realDue.Add(-time.Duration(0.5 * float64(remaining)))
		assert.Equal(t, want, fake)
	})
}

func TestComputeFakeDueDate_CompressionBands(t *testing.T) {
	t.Run("1-2 day band shows 12-18h horizon", func(t *testing.T) {
		realDue := baseNow.Add(36 * time.Hour)

		assert.Equal(t, baseNow.Add(12*time.Hour), ComputeFakeDueDate(realDue, 0, baseNow))
		assert.Equal(t, baseNow.Add(18*time.Hour), ComputeFakeDueDate(realDue, 100, baseNow))
		assert.Equal(t, baseNow.Add(15*time.Hour), ComputeFakeDueDate(realDue, 50, baseNow))
	})

	t.Run("final day shows 1-6h horizon", func(t *testing.T) {
		realDue := baseNow.Add(18 * time.Hour)

		assert.Equal(t, baseNow.Add(1*time.Hour), ComputeFakeDueDate(realDue, 0, baseNow))
		assert.Equal(t, baseNow.Add(6*time.Hour), ComputeFakeDueDate(realDue, 100, baseNow))
	})

	t.Run("horizon caps at the real due date", func(t *testing.T) {
		// Due in 2h: a 50-score horizon of 3.5h would overshoot the real date.
		realDue := baseNow.Add(2 * time.Hour)

		assert.Equal(t, realDue, ComputeFakeDueDate(realDue, 50, baseNow))
		assert.Equal(t, realDue, ComputeFakeDueDate(realDue, 100, baseNow))
		assert.Equal(t, baseNow.Add(1*time.Hour), ComputeFakeDueDate(realDue, 0, baseNow))
	})
}

func TestComputeFakeDueDate_NeverLaterThanReal(t *testing.T) {
	// The lie only ever moves a future deadline earlier.
	horizons := []time.Duration{
		2 * time.Hour,
		30 * time.Hour,
		3 * 24 * time.Hour,
		6 * 24 * time.Hour,
		20 * 24 * time.Hour,
	}
	for _, h := range horizons {
		realDue := baseNow.Add(h)
		for score := 0.0; score <= 100; score += 10 {
			fake := ComputeFakeDueDate(realDue, score, baseNow)
			assert.False(t, fake.After(realDue),
				"horizon %s score %.0f produced a fake date after the real one", h, score)
		}
	}
}

func TestComputeFakeDueDate_MonotonicInReliability(t *testing.T) {
	// Within the 4-7 day band a lower score never yields a later fake date.
	realDue := baseNow.Add(5 * 24 * time.Hour)

	prev := ComputeFakeDueDate(realDue, 0, baseNow)
	for score := 5.0; score <= 100; score += 5 {
		fake := ComputeFakeDueDate(realDue, score, baseNow)
		require.False(t, fake.Before(prev),
			"score %.0f produced an earlier fake date than score %.0f", score, score-5)
		prev = fake
	}
}

func TestComputeFakeDueDate_ClampsToFuture(t *testing.T) {
	// A near-due task with an aggressive shave must not display as already
	// missed while the real deadline is still ahead.
	realDue := baseNow.Add(30 * time.Minute)
	fake := ComputeFakeDueDate(realDue, 0, baseNow)
	assert.False(t, fake.Before(baseNow), "fake date must not be in the past")
}

func TestComputeFakeDueDate_InvalidScore(t *testing.T) {
	realDue := baseNow.Add(6 * 24 * time.Hour)

	nan := ComputeFakeDueDate(realDue, math.NaN(), baseNow)
	zero := ComputeFakeDueDate(realDue, 0, baseNow)
	assert.Equal(t, zero, nan, "NaN score degrades to maximum distortion")

	over := ComputeFakeDueDate(realDue, 250, baseNow)
	hundred := ComputeFakeDueDate(realDue, 100, baseNow)
	assert.Equal(t, hundred, over)
}
