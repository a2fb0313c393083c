package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chivvyhq/chivvy/adapter/cli"
	"github.com/chivvyhq/chivvy/adapter/cli/pick"
	cliSettings "github.com/chivvyhq/chivvy/adapter/cli/settings"
	"github.com/chivvyhq/chivvy/adapter/cli/task"
	"github.com/chivvyhq/chivvy/internal/app"
	"github.com/chivvyhq/chivvy/pkg/config"
	"github.com/chivvyhq/chivvy/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Server mode: relay outbox rows while the command runs. The notifier
	// daemon picks up whatever is left when the process exits.
	if container.OutboxProcessor != nil && cfg.OutboxEnabled {
		go container.OutboxProcessor.Start(ctx)
	}

	cliApp := cli.NewApp(
		container.CreateTaskHandler,
		container.UpdateTaskHandler,
		container.CompleteTaskHandler,
		container.PostponeTaskHandler,
		container.DeleteTaskHandler,
		container.ListTasksHandler,
		container.GetTaskHandler,
		container.PickerEngine,
		container.SettingsService,
		container.MessageSelector,
		container.CalibrationWindow,
	)
	cliApp.SetFocusPollInterval(cfg.FocusPollInterval)

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Error("invalid CHIVVY_USER_ID", "error", err)
		os.Exit(1)
	}
	cliApp.SetCurrentUserID(userID)

	cli.SetApp(cliApp)

	cli.AddCommand(task.Cmd)
	cli.AddCommand(pick.Cmd)
	cli.AddCommand(cliSettings.Cmd)

	cli.ExecuteContext(ctx)
}
