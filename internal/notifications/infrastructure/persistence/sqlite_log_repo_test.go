package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupLogDB(t *testing.T) *sql.DB {
	t.Helper()

	dbConn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	_, err = dbConn.Exec(`
		CREATE TABLE notification_log (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			tier TEXT NOT NULL,
			channel TEXT NOT NULL,
			sent_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	_, err = dbConn.Exec(`CREATE INDEX idx_notification_log_dedupe ON notification_log (task_id, tier, channel)`)
	require.NoError(t, err)

	return dbConn
}

func TestSQLiteLogRepositoryDedupe(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteLogRepository(setupLogDB(t))

	taskID := uuid.New()
	userID := uuid.New()
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	exists, err := repo.Exists(ctx, taskID, domain.TierFourDay, domain.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Append(ctx, domain.NewLogEntry(taskID, userID, domain.TierFourDay, domain.ChannelEmail, sentAt)))

	exists, err = repo.Exists(ctx, taskID, domain.TierFourDay, domain.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, exists)

	// A different channel for the same tier is a separate send.
	exists, err = repo.Exists(ctx, taskID, domain.TierFourDay, domain.ChannelBrowser)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteLogRepositoryMostRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteLogRepository(setupLogDB(t))

	taskID := uuid.New()
	userID := uuid.New()

	_, found, err := repo.MostRecent(ctx, taskID, domain.TierOverdue)
	require.NoError(t, err)
	assert.False(t, found)

	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)
	require.NoError(t, repo.Append(ctx, domain.NewLogEntry(taskID, userID, domain.TierOverdue, domain.ChannelBrowser, first)))
	require.NoError(t, repo.Append(ctx, domain.NewLogEntry(taskID, userID, domain.TierOverdue, domain.ChannelEmail, second)))

	// The cooldown key ignores channel: the email send is the latest.
	got, found, err := repo.MostRecent(ctx, taskID, domain.TierOverdue)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.Equal(second))
}

func TestSQLiteLogRepositoryPurgeForTask(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteLogRepository(setupLogDB(t))

	taskID := uuid.New()
	otherTask := uuid.New()
	userID := uuid.New()
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, domain.NewLogEntry(taskID, userID, domain.TierOneDay, domain.ChannelEmail, sentAt)))
	require.NoError(t, repo.Append(ctx, domain.NewLogEntry(otherTask, userID, domain.TierOneDay, domain.ChannelEmail, sentAt)))

	require.NoError(t, repo.PurgeForTask(ctx, taskID))

	exists, err := repo.Exists(ctx, taskID, domain.TierOneDay, domain.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.Exists(ctx, otherTask, domain.TierOneDay, domain.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, exists)
}
