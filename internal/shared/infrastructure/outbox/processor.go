package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig tunes the drain loop.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
}

// DefaultProcessorConfig returns the defaults used by both binaries.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval: time.Second,
		BatchSize:    100,
		MaxRetries:   5,
	}
}

// Processor polls the outbox and forwards events to the publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewProcessor creates an outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 5
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine. Idempotent.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
}

// Stop gracefully stops the processor and waits for the loop to exit.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.Drain(ctx)
		}
	}
}

// Drain publishes one batch of pending messages. Exported so tests and the
// notifier can drain synchronously without the ticker.
func (p *Processor) Drain(ctx context.Context) {
	msgs, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("outbox poll failed", "error", err)
		return
	}

	for _, msg := range msgs {
		if !msg.CanRetry(p.config.MaxRetries) {
			continue
		}

		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				p.logger.Error("outbox mark-failed failed", "id", msg.ID, "error", markErr)
			}
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("outbox mark-published failed", "id", msg.ID, "error", err)
		}
	}
}
