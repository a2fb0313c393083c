// Package app wires the application together: storage, transports, services,
// and handlers, selected by run mode. Local mode runs entirely against an
// embedded SQLite file; server mode adds Postgres, Redis, and RabbitMQ.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	estimationServices "github.com/chivvyhq/chivvy/internal/estimation/application/services"
	"github.com/chivvyhq/chivvy/internal/messages"
	notifyServices "github.com/chivvyhq/chivvy/internal/notifications/application/services"
	notifyDomain "github.com/chivvyhq/chivvy/internal/notifications/domain"
	notifyPersistence "github.com/chivvyhq/chivvy/internal/notifications/infrastructure/persistence"
	"github.com/chivvyhq/chivvy/internal/notifications/infrastructure/transport"
	pickerServices "github.com/chivvyhq/chivvy/internal/picker/application/services"
	pickerDomain "github.com/chivvyhq/chivvy/internal/picker/domain"
	pickerPersistence "github.com/chivvyhq/chivvy/internal/picker/infrastructure/persistence"
	"github.com/chivvyhq/chivvy/internal/profiles/application/settings"
	profilesDomain "github.com/chivvyhq/chivvy/internal/profiles/domain"
	profilesPersistence "github.com/chivvyhq/chivvy/internal/profiles/infrastructure/persistence"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/eventbus"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/locking"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/migrations"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	taskPersistence "github.com/chivvyhq/chivvy/internal/tasks/infrastructure/persistence"
	"github.com/chivvyhq/chivvy/pkg/config"
	"github.com/chivvyhq/chivvy/pkg/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite" // register the sqlite driver
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Storage. Exactly one of DB and SQLiteDB is set, per run mode.
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	RedisClient *redis.Client

	// Repositories
	TaskRepo            task.Repository
	PostponementRepo    task.PostponementRepository
	ProfileRepo         profilesDomain.Repository
	NotificationLogRepo notifyDomain.LogRepository
	SubscriptionRepo    notifyDomain.SubscriptionRepository
	PickStateRepo       pickerDomain.StateRepository
	OutboxRepo          outbox.Repository

	// Publishers
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Services
	MessageSelector       *messages.Selector
	SettingsService       *settings.Service
	PickerEngine          *pickerServices.Engine
	NotificationScheduler *notifyServices.Scheduler
	CalibrationWindow     *estimationServices.CalibrationWindow

	// Task Command Handlers
	CreateTaskHandler   *commands.CreateTaskHandler
	UpdateTaskHandler   *commands.UpdateTaskHandler
	CompleteTaskHandler *commands.CompleteTaskHandler
	PostponeTaskHandler *commands.PostponeTaskHandler
	DeleteTaskHandler   *commands.DeleteTaskHandler

	// Task Query Handlers
	ListTasksHandler *queries.ListTasksHandler
	GetTaskHandler   *queries.GetTaskHandler
}

// pickerNotifier adapts the pick-for-me engine to the completion hook the
// task commands expect. The pick result is for interactive callers; the hook
// only cares that the engine observed the completion.
type pickerNotifier struct {
	engine *pickerServices.Engine
}

func (n pickerNotifier) NotifyCompleted(ctx context.Context, userID, taskID uuid.UUID) error {
	_, err := n.engine.NotifyCompleted(ctx, userID, taskID)
	return err
}

// NewContainer creates and wires all dependencies for the configured mode.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
	}

	var err error
	if cfg.IsLocal() {
		err = c.initLocal(ctx)
	} else {
		err = c.initServer(ctx)
	}
	if err != nil {
		c.Close()
		return nil, err
	}

	c.MessageSelector = messages.NewSelector()
	c.SettingsService = settings.NewService(c.ProfileRepo)
	c.CalibrationWindow = estimationServices.NewCalibrationWindow()

	scorer := pickerServices.NewScorer(cfg.QuickWinTitleLimit, nil)
	c.PickerEngine = pickerServices.NewEngine(c.PickStateRepo, c.TaskRepo, c.ProfileRepo, scorer, logger, nil)

	c.NotificationScheduler = notifyServices.NewScheduler(
		c.TaskRepo,
		c.PostponementRepo,
		c.ProfileRepo,
		c.NotificationLogRepo,
		c.SubscriptionRepo,
		c.emailTransport(),
		transport.NewBreakerPush(transport.NewWebPush(nil)),
		c.MessageSelector,
		c.dispatchLocker(),
		notifyServices.SchedulerConfig{
			OverdueCooldown: cfg.OverdueCooldown,
			DayOfCooldown:   cfg.DayOfCooldown,
		},
		logger,
		c.Metrics,
		nil,
	)

	// Command handlers. A nil outbox repo in local mode disables event
	// publication without any handler knowing about modes.
	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, pickerNotifier{engine: c.PickerEngine}, nil)
	c.PostponeTaskHandler = commands.NewPostponeTaskHandler(c.TaskRepo, c.PostponementRepo, c.OutboxRepo, nil)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.NotificationLogRepo, c.OutboxRepo)

	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo, c.ProfileRepo, nil)
	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo, c.ProfileRepo, nil)

	if err := c.ensureProfile(ctx); err != nil {
		c.Close()
		return nil, err
	}

	// Each CLI invocation is its own process, so the estimate-accuracy trend
	// has to be rebuilt from completed tasks rather than kept in memory.
	if err := c.seedCalibration(ctx); err != nil {
		c.Logger.Warn("could not rebuild calibration window", "error", err)
	}

	return c, nil
}

func (c *Container) seedCalibration(ctx context.Context) error {
	userID, err := uuid.Parse(c.Config.UserID)
	if err != nil {
		return err
	}
	completed, err := c.TaskRepo.FindRecentlyCompleted(ctx, userID, estimationServices.CalibrationWindowSize)
	if err != nil {
		return err
	}
	c.CalibrationWindow.SeedFromTasks(completed)
	return nil
}

// initLocal opens the embedded SQLite store, runs migrations, and wires the
// sqlite repositories. No broker, no outbox, noop publisher.
func (c *Container) initLocal(ctx context.Context) error {
	path := c.Config.SQLitePath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dbConn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single writer keeps modernc's sqlite happy under concurrency.
	dbConn.SetMaxOpenConns(1)

	if err := migrations.RunSQLiteMigrations(ctx, dbConn); err != nil {
		dbConn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.SQLiteDB = dbConn
	c.Logger.Info("opened local database", "path", path)

	c.TaskRepo = taskPersistence.NewSQLiteTaskRepository(dbConn)
	c.PostponementRepo = taskPersistence.NewSQLitePostponementRepository(dbConn)
	c.ProfileRepo = profilesPersistence.NewSQLiteProfileRepository(dbConn)
	c.NotificationLogRepo = notifyPersistence.NewSQLiteLogRepository(dbConn)
	c.SubscriptionRepo = notifyPersistence.NewSQLiteSubscriptionRepository(dbConn)
	c.PickStateRepo = pickerPersistence.NewSQLiteStateRepository(dbConn)

	c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
	return nil
}

// initServer connects Postgres, Redis, and RabbitMQ and wires the postgres
// repositories plus the outbox.
func (c *Container) initServer(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.DB = pool
	c.Logger.Info("connected to database")

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if c.Config.RedisURL != "" {
		opt, err := redis.ParseURL(c.Config.RedisURL)
		if err != nil {
			if !c.Config.IsDevelopment() {
				return fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			c.Logger.Warn("invalid Redis URL, dispatch locking disabled", "error", err)
		} else {
			client := redis.NewClient(opt)
			if err := client.Ping(ctx).Err(); err != nil {
				if !c.Config.IsDevelopment() {
					return fmt.Errorf("failed to connect to Redis: %w", err)
				}
				c.Logger.Warn("Redis not available, dispatch locking disabled", "error", err)
			} else {
				c.RedisClient = client
				c.Logger.Info("connected to Redis")
			}
		}
	}

	c.TaskRepo = taskPersistence.NewPostgresTaskRepository(pool)
	c.PostponementRepo = taskPersistence.NewPostgresPostponementRepository(pool)
	c.ProfileRepo = profilesPersistence.NewPostgresProfileRepository(pool)
	c.NotificationLogRepo = notifyPersistence.NewPostgresLogRepository(pool)
	c.SubscriptionRepo = notifyPersistence.NewPostgresSubscriptionRepository(pool)
	c.PickStateRepo = pickerPersistence.NewPostgresStateRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher")
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
	} else {
		c.EventPublisher = publisher
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: c.Config.OutboxPollInterval,
		BatchSize:    c.Config.OutboxBatchSize,
		MaxRetries:   c.Config.OutboxMaxRetries,
	}, c.Logger)

	return nil
}

func (c *Container) emailTransport() notifyServices.EmailTransport {
	host, portStr, err := net.SplitHostPort(c.Config.SMTPAddr)
	if err != nil {
		host = c.Config.SMTPAddr
		portStr = "25"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 25
	}
	return transport.NewBreakerEmail(transport.NewSMTPEmail(transport.SMTPConfig{
		Host:     host,
		Port:     port,
		Username: c.Config.SMTPUser,
		Password: c.Config.SMTPPass,
		From:     c.Config.SMTPFrom,
	}))
}

func (c *Container) dispatchLocker() notifyServices.DispatchLocker {
	if c.RedisClient == nil {
		return nil
	}
	return locking.NewRedisLocker(c.RedisClient, "chivvy:lock:")
}

// ensureProfile creates the configured user's profile on first run so every
// read path has a reliability score and feature flags to work with.
func (c *Container) ensureProfile(ctx context.Context) error {
	userID, err := uuid.Parse(c.Config.UserID)
	if err != nil {
		return fmt.Errorf("invalid CHIVVY_USER_ID: %w", err)
	}
	_, err = c.ProfileRepo.Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, profilesDomain.ErrProfileNotFound) {
		return err
	}
	c.Logger.Info("creating default profile", "user_id", userID)
	return c.ProfileRepo.Save(ctx, profilesDomain.NewProfile(userID, ""))
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing sqlite database", "error", err)
		}
	}
}
