package messages

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectInterpolatesTitle(t *testing.T) {
	s := NewSelector(WithRand(rand.New(rand.NewSource(1))))

	msg := s.Select(ContextDayOf, domain.ThemeHinged, "File taxes")
	assert.Contains(t, msg.Body, "File taxes")
	assert.NotEmpty(t, msg.Title)
}

func TestSelectUnhingedShouts(t *testing.T) {
	s := NewSelector(WithRand(rand.New(rand.NewSource(1))))

	msg := s.Select(ContextOverdue, domain.ThemeUnhinged, "file taxes")
	assert.Equal(t, strings.ToUpper(msg.Title), msg.Title)
	assert.Equal(t, strings.ToUpper(msg.Body), msg.Body)
	assert.Contains(t, msg.Body, "FILE TAXES")
}

func TestSelectUnknownContextFallsBack(t *testing.T) {
	s := NewSelector()

	msg := s.Select(Context("nope"), domain.ThemeHinged, "File taxes")
	assert.Equal(t, "Reminder", msg.Title)
	assert.Contains(t, msg.Body, "File taxes")
}

func TestSelectDrawsFromWholePool(t *testing.T) {
	s := NewSelector(WithRand(rand.New(rand.NewSource(42))))

	seen := map[string]bool{}
	for range 100 {
		msg := s.Select(ContextPick, domain.ThemeHinged, "X")
		seen[msg.Title] = true
	}
	assert.Greater(t, len(seen), 1, "selection should vary across draws")
}

func TestWithPoolReplacesContent(t *testing.T) {
	s := NewSelector(WithPool(ContextDayOf, []string{"Custom"}, []string{"Do %s now"}))

	msg := s.Select(ContextDayOf, domain.ThemeHinged, "it")
	require.Equal(t, "Custom", msg.Title)
	assert.Equal(t, "Do it now", msg.Body)
}
