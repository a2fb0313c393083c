// Package services implements the notifier pass: the hourly batch that walks
// every pending task, classifies it into a tier against its displayed due
// date, and dispatches at most one notification per task+tier+channel.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chivvyhq/chivvy/internal/deadline"
	"github.com/chivvyhq/chivvy/internal/messages"
	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	profiles "github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/chivvyhq/chivvy/pkg/observability"
	"github.com/google/uuid"
)

// EmailTransport delivers a message to an email address.
type EmailTransport interface {
	Send(ctx context.Context, to string, msg messages.Message) error
}

// PushTransport delivers a message to one browser push subscription.
type PushTransport interface {
	Send(ctx context.Context, sub *domain.PushSubscription, msg messages.Message) error
}

// DispatchLocker serializes a single dispatch across notifier instances.
// TryLock returns false when another instance holds the key.
type DispatchLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NoopLocker always grants the lock. Single-instance deployments need no
// coordination; the send log alone keeps the pass idempotent.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

// SchedulerConfig tunes the pass.
type SchedulerConfig struct {
	OverdueCooldown time.Duration
	DayOfCooldown   time.Duration
	DispatchLockTTL time.Duration
}

// Scheduler runs notifier passes. It owns no timer; the caller invokes Run on
// whatever cadence it likes, and the send log guarantees that re-running a
// pass never double-sends.
type Scheduler struct {
	tasks         task.Repository
	postponements task.PostponementRepository
	profiles      profiles.Repository
	log           domain.LogRepository
	subscriptions domain.SubscriptionRepository
	email         EmailTransport
	push          PushTransport
	selector      *messages.Selector
	locker        DispatchLocker
	cfg           SchedulerConfig
	logger        *slog.Logger
	metrics       observability.Metrics
	now           func() time.Time
}

// NewScheduler wires a notifier pass. Nil locker, logger, metrics, and now
// get safe defaults.
func NewScheduler(
	tasks task.Repository,
	postponements task.PostponementRepository,
	profileRepo profiles.Repository,
	log domain.LogRepository,
	subscriptions domain.SubscriptionRepository,
	email EmailTransport,
	push PushTransport,
	selector *messages.Selector,
	locker DispatchLocker,
	cfg SchedulerConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
	now func() time.Time,
) *Scheduler {
	if locker == nil {
		locker = NoopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if now == nil {
		now = time.Now
	}
	if cfg.OverdueCooldown <= 0 {
		cfg.OverdueCooldown = time.Hour
	}
	if cfg.DayOfCooldown <= 0 {
		cfg.DayOfCooldown = 3 * time.Hour
	}
	if cfg.DispatchLockTTL <= 0 {
		cfg.DispatchLockTTL = 5 * time.Minute
	}
	return &Scheduler{
		tasks:         tasks,
		postponements: postponements,
		profiles:      profileRepo,
		log:           log,
		subscriptions: subscriptions,
		email:         email,
		push:          push,
		selector:      selector,
		locker:        locker,
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
		now:           now,
	}
}

// PassStats summarizes one pass for logging and health reporting.
type PassStats struct {
	Evaluated int
	Sent      int
	Deduped   int
	Cooldown  int
	Failed    int
	Skipped   int
}

// Run executes one notifier pass. A failure on one task never aborts the
// pass; it is logged, counted, and the walk continues.
func (s *Scheduler) Run(ctx context.Context) (PassStats, error) {
	start := s.now()
	var stats PassStats

	pending, err := s.tasks.FindAllPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("load pending tasks: %w", err)
	}

	postponed, err := s.postponements.ListActiveTaskIDs(ctx, start)
	if err != nil {
		// A broken excuse table should not silence every reminder.
		s.logger.Warn("postponement lookup failed, treating none as active", "error", err)
		postponed = nil
	}

	profileCache := make(map[uuid.UUID]*profiles.Profile)
	subsCache := make(map[uuid.UUID]bool)

	for _, t := range pending {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if _, ok := postponed[t.ID()]; ok {
			stats.Skipped++
			continue
		}

		profile, ok := profileCache[t.UserID()]
		if !ok {
			var err error
			profile, err = s.profiles.Get(ctx, t.UserID())
			if err != nil {
				s.logger.Warn("profile lookup failed, skipping task",
					"task_id", t.ID(), "user_id", t.UserID(), "error", err)
				stats.Skipped++
				continue
			}
			profileCache[t.UserID()] = profile
		}
		if !profile.Notifiable() {
			stats.Skipped++
			continue
		}

		stats.Evaluated++
		s.evaluateTask(ctx, t, profile, subsCache, &stats)
	}

	s.metrics.Timing(observability.MetricSchedulerPassDuration, s.now().Sub(start))
	s.logger.Info("notifier pass complete",
		"evaluated", stats.Evaluated,
		"sent", stats.Sent,
		"deduped", stats.Deduped,
		"cooldown", stats.Cooldown,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

func (s *Scheduler) evaluateTask(ctx context.Context, t *task.Task, profile *profiles.Profile, subsCache map[uuid.UUID]bool, stats *PassStats) {
	now := s.now()

	// Flip the task to overdue status once the real deadline passes. The
	// notification tier below is computed from the displayed date, which is
	// always at or before the real one, so the nagging started earlier.
	if t.Status() == task.StatusPending && now.After(t.RealDueDate()) {
		t.MarkOverdue(now)
		if err := s.tasks.Save(ctx, t); err != nil {
			s.logger.Warn("overdue status save failed", "task_id", t.ID(), "error", err)
		}
	}

	fakeDue := deadline.ComputeFakeDueDate(t.RealDueDate(), profile.ReliabilityScore, now)
	tier := domain.TierFor(fakeDue, now)
	if tier == domain.TierNone {
		return
	}

	// A channel the profile cannot actually receive on is a skip, not a
	// failure: nagging every pass about a missing email address fixes
	// nothing.
	if profile.Channels.WantsBrowser() {
		if s.hasSubscriptions(ctx, profile.UserID, subsCache) {
			s.dispatch(ctx, t, profile, tier, domain.ChannelBrowser, stats)
		} else {
			stats.Skipped++
		}
	}
	if profile.Channels.WantsEmail() && tier.EmailEligible() {
		if profile.HasValidEmail() {
			s.dispatch(ctx, t, profile, tier, domain.ChannelEmail, stats)
		} else {
			stats.Skipped++
		}
	}
}

func (s *Scheduler) hasSubscriptions(ctx context.Context, userID uuid.UUID, cache map[uuid.UUID]bool) bool {
	if has, ok := cache[userID]; ok {
		return has
	}
	subs, err := s.subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		// Let the send path hit the same error and report it as a failure.
		cache[userID] = true
		return true
	}
	cache[userID] = len(subs) > 0
	return cache[userID]
}

func (s *Scheduler) dispatch(ctx context.Context, t *task.Task, profile *profiles.Profile, tier domain.Tier, channel domain.Channel, stats *PassStats) {
	now := s.now()

	if tier.OneShot() {
		sent, err := s.log.Exists(ctx, t.ID(), tier, channel)
		if err != nil {
			s.fail(t, tier, channel, stats, fmt.Errorf("dedupe check: %w", err))
			return
		}
		if sent {
			stats.Deduped++
			s.metrics.Counter(observability.MetricNotificationsDeduped, 1,
				observability.T("tier", string(tier)), observability.T("channel", string(channel)))
			return
		}
	} else {
		last, found, err := s.log.MostRecent(ctx, t.ID(), tier)
		if err != nil {
			s.fail(t, tier, channel, stats, fmt.Errorf("cooldown check: %w", err))
			return
		}
		cooldown := tier.Cooldown(s.cfg.OverdueCooldown, s.cfg.DayOfCooldown)
		if found && now.Sub(last) < cooldown {
			stats.Cooldown++
			s.metrics.Counter(observability.MetricNotificationsCooldown, 1,
				observability.T("tier", string(tier)), observability.T("channel", string(channel)))
			return
		}
	}

	lockKey := fmt.Sprintf("notify:%s:%s:%s", t.ID(), tier, channel)
	held, err := s.locker.TryLock(ctx, lockKey, s.cfg.DispatchLockTTL)
	if err != nil {
		s.fail(t, tier, channel, stats, fmt.Errorf("dispatch lock: %w", err))
		return
	}
	if !held {
		// Another instance is already delivering this one.
		stats.Skipped++
		return
	}

	msg := s.selector.Select(messages.Context(tier), profile.Theme, t.Title())

	if err := s.send(ctx, profile, channel, msg); err != nil {
		// No log entry on failure: the next pass retries.
		s.fail(t, tier, channel, stats, err)
		return
	}

	if err := s.log.Append(ctx, domain.NewLogEntry(t.ID(), t.UserID(), tier, channel, now)); err != nil {
		// The send went out but the record did not; the next pass may
		// repeat it. Better a duplicate nag than a silent gap.
		s.logger.Error("send log append failed", "task_id", t.ID(), "tier", tier, "channel", channel, "error", err)
	}

	stats.Sent++
	s.metrics.Counter(observability.MetricNotificationsSent, 1,
		observability.T("tier", string(tier)), observability.T("channel", string(channel)))
	s.logger.Info("notification sent",
		"task_id", t.ID(), "user_id", t.UserID(), "tier", tier, "channel", channel)
}

func (s *Scheduler) send(ctx context.Context, profile *profiles.Profile, channel domain.Channel, msg messages.Message) error {
	switch channel {
	case domain.ChannelEmail:
		if !profile.HasValidEmail() {
			return fmt.Errorf("profile %s has no deliverable email address", profile.UserID)
		}
		return s.email.Send(ctx, profile.Email, msg)
	case domain.ChannelBrowser:
		subs, err := s.subscriptions.FindByUserID(ctx, profile.UserID)
		if err != nil {
			return fmt.Errorf("load push subscriptions: %w", err)
		}
		if len(subs) == 0 {
			return fmt.Errorf("profile %s has no push subscriptions", profile.UserID)
		}
		var lastErr error
		delivered := false
		for _, sub := range subs {
			if err := s.push.Send(ctx, sub, msg); err != nil {
				lastErr = err
				continue
			}
			delivered = true
		}
		if !delivered {
			return fmt.Errorf("all push endpoints failed: %w", lastErr)
		}
		return nil
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

func (s *Scheduler) fail(t *task.Task, tier domain.Tier, channel domain.Channel, stats *PassStats, err error) {
	stats.Failed++
	s.metrics.Counter(observability.MetricNotificationsFailed, 1,
		observability.T("tier", string(tier)), observability.T("channel", string(channel)))
	s.logger.Warn("notification dispatch failed",
		"task_id", t.ID(), "tier", tier, "channel", channel, "error", err)
}
