package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.IsLocal())
	assert.Equal(t, time.Hour, cfg.NotifierInterval)
	assert.Equal(t, time.Hour, cfg.OverdueCooldown)
	assert.Equal(t, 3*time.Hour, cfg.DayOfCooldown)
	assert.Equal(t, 30, cfg.QuickWinTitleLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CHIVVY_MODE", "server")
	t.Setenv("NOTIFIER_INTERVAL", "30m")
	t.Setenv("NOTIFY_OVERDUE_COOLDOWN", "2h")
	t.Setenv("QUICK_WIN_TITLE_LIMIT", "25")
	t.Setenv("OUTBOX_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, 30*time.Minute, cfg.NotifierInterval)
	assert.Equal(t, 2*time.Hour, cfg.OverdueCooldown)
	assert.Equal(t, 25, cfg.QuickWinTitleLimit)
	assert.False(t, cfg.OutboxEnabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("NOTIFIER_INTERVAL", "not-a-duration")
	t.Setenv("OUTBOX_BATCH_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.NotifierInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
}
