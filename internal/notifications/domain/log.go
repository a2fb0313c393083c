package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Channel is the transport a notification went out over.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelBrowser Channel = "browser"
)

// LogEntry records one successful send. The log is append-only and is the
// sole dedupe/cooldown authority: an entry is written only after the
// transport confirms delivery, so a failed send is retried on the next pass.
type LogEntry struct {
	ID      uuid.UUID
	TaskID  uuid.UUID
	UserID  uuid.UUID
	Tier    Tier
	Channel Channel
	SentAt  time.Time
}

// NewLogEntry records a send that just succeeded.
func NewLogEntry(taskID, userID uuid.UUID, tier Tier, channel Channel, sentAt time.Time) *LogEntry {
	return &LogEntry{
		ID:      uuid.New(),
		TaskID:  taskID,
		UserID:  userID,
		Tier:    tier,
		Channel: channel,
		SentAt:  sentAt,
	}
}

// LogRepository is the persistence contract for the send log.
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	// Exists reports whether any entry matches task+tier+channel. Used for
	// one-shot dedupe.
	Exists(ctx context.Context, taskID uuid.UUID, tier Tier, channel Channel) (bool, error)
	// MostRecent returns the latest send time for task+tier on any channel,
	// or ok=false when none exists. Cooldowns are keyed by task and tier
	// alone: a send on one channel quiets every channel.
	MostRecent(ctx context.Context, taskID uuid.UUID, tier Tier) (time.Time, bool, error)
	// PurgeForTask removes all entries for a task, typically on deletion.
	PurgeForTask(ctx context.Context, taskID uuid.UUID) error
}
