// Package messages selects notification copy from swappable content tables.
// The tables are data; the only logic specified here is the selection
// contract: pick randomly from the pool for a context, substitute the task
// title, and shout when the theme is unhinged.
package messages

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/chivvyhq/chivvy/internal/profiles/domain"
)

// Context keys a content pool. Notification tiers, estimation outcomes, focus
// milestones, and picker moods all route through the same selector.
type Context string

const (
	ContextFourDay Context = "4_day"
	ContextOneDay  Context = "1_day"
	ContextDayOf   Context = "day_of"
	ContextOverdue Context = "overdue"

	ContextWayUnder Context = "way_under"
	ContextUnder    Context = "under"
	ContextSpotOn   Context = "spot_on"
	ContextOver15x  Context = "over_1_5x"
	ContextOver2x   Context = "over_2x"
	ContextOver3x   Context = "over_3x"

	ContextMilestone   Context = "milestone"
	ContextOverage     Context = "overage"
	ContextPick        Context = "pick"
	ContextAllOverdue  Context = "all_overdue"
	ContextEscalation  Context = "escalation"
	ContextCalibGood   Context = "calibration_positive"
	ContextCalibBad    Context = "calibration_negative"
)

// Message is a rendered title/body pair ready for a transport.
type Message struct {
	Title string
	Body  string
}

// template is one entry in a content pool. %s placeholders receive the task
// title.
type template struct {
	Title string
	Body  string
}

// Selector chooses copy from a catalog. The random source is injectable so
// tests can pin the draw.
type Selector struct {
	catalog map[Context][]template
	rng     *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) { s.rng = rng }
}

// WithPool replaces the content pool for a context.
func WithPool(ctx Context, titles []string, bodies []string) Option {
	return func(s *Selector) {
		pool := make([]template, 0, len(titles))
		for i, title := range titles {
			body := ""
			if i < len(bodies) {
				body = bodies[i]
			}
			pool = append(pool, template{Title: title, Body: body})
		}
		s.catalog[ctx] = pool
	}
}

// NewSelector creates a selector over the default catalog.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{catalog: defaultCatalog()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select picks a message for the context, interpolating the task title and
// applying the theme's case transform.
func (s *Selector) Select(ctx Context, theme domain.Theme, taskTitle string) Message {
	pool, ok := s.catalog[ctx]
	if !ok || len(pool) == 0 {
		// Unknown context still produces something usable.
		return s.themed(theme, Message{
			Title: "Reminder",
			Body:  fmt.Sprintf("Don't forget: %s", taskTitle),
		})
	}

	tpl := pool[s.intn(len(pool))]
	return s.themed(theme, Message{
		Title: interpolate(tpl.Title, taskTitle),
		Body:  interpolate(tpl.Body, taskTitle),
	})
}

func (s *Selector) themed(theme domain.Theme, m Message) Message {
	if theme == domain.ThemeUnhinged {
		m.Title = strings.ToUpper(m.Title)
		m.Body = strings.ToUpper(m.Body)
	}
	return m
}

func (s *Selector) intn(n int) int {
	if n <= 1 {
		return 0
	}
	if s.rng != nil {
		return s.rng.Intn(n)
	}
	return rand.Intn(n)
}

func interpolate(tpl, taskTitle string) string {
	if strings.Contains(tpl, "%s") {
		return fmt.Sprintf(tpl, taskTitle)
	}
	return tpl
}
