// The notifier daemon runs the hourly notification pass and relays outbox
// events to the broker. It always runs in server mode.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chivvyhq/chivvy/internal/app"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/locking"
	"github.com/chivvyhq/chivvy/pkg/config"
	"github.com/chivvyhq/chivvy/pkg/observability"
)

// passLockKey serializes notifier passes across instances.
const passLockKey = "notifier:pass"

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting chivvy notifier")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Mode = "server"

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Outbox relay plus periodic cleanup of published rows.
	if cfg.OutboxEnabled && container.OutboxProcessor != nil {
		go container.OutboxProcessor.Start(ctx)

		cleanupTicker := time.NewTicker(cfg.OutboxCleanupInterval)
		defer cleanupTicker.Stop()
		go func() {
			retention := time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour
			for {
				select {
				case <-ctx.Done():
					return
				case <-cleanupTicker.C:
					deleted, err := container.OutboxRepo.DeleteOld(ctx, retention)
					if err != nil {
						logger.Error("outbox cleanup failed", "error", err)
						continue
					}
					if deleted > 0 {
						logger.Info("outbox cleanup completed", "deleted", deleted)
					}
				}
			}
		}()
	}

	if cfg.NotifierHealthAddr != "" {
		startHealthServer(ctx, container, cfg.NotifierHealthAddr, logger)
	}

	// A locker shared with other notifier instances; nil Redis means this is
	// the only instance and passes run unguarded.
	var passLocker *locking.RedisLocker
	if container.RedisClient != nil {
		passLocker = locking.NewRedisLocker(container.RedisClient, "chivvy:lock:")
	}

	runPass := func() {
		if passLocker != nil {
			ok, err := passLocker.TryLock(ctx, passLockKey, cfg.NotifierPassLockTTL)
			if err != nil {
				logger.Error("pass lock failed", "error", err)
				return
			}
			if !ok {
				logger.Info("another notifier instance holds the pass lock, skipping")
				return
			}
			defer func() {
				if err := passLocker.Release(ctx, passLockKey); err != nil {
					logger.Warn("pass lock release failed", "error", err)
				}
			}()
		}

		stats, err := container.NotificationScheduler.Run(ctx)
		if err != nil {
			logger.Error("notification pass failed", "error", err)
			return
		}
		logger.Info("notification pass complete",
			"evaluated", stats.Evaluated,
			"sent", stats.Sent,
			"deduped", stats.Deduped,
			"cooldown", stats.Cooldown,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
		)
	}

	logger.Info("notifier running", "interval", cfg.NotifierInterval)
	runPass()

	ticker := time.NewTicker(cfg.NotifierInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("notifier stopped")
			return
		case <-ticker.C:
			runPass()
		}
	}
}

func startHealthServer(ctx context.Context, container *app.Container, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := container.DB.Ping(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "not_ready", "error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
