package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Handler processes one event payload. A non-nil return triggers the worker's
// fixed-interval retry; after the attempts are spent the message is
// dead-lettered.
type Handler func(ctx context.Context, payload []byte) error

type ConsumerWorkerConfig struct {
	PollInterval time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int
}

type ConsumerWorker struct {
	logger     *slog.Logger
	consumer   Consumer
	handlers   map[string]Handler
	deadLetter Publisher
	cfg        ConsumerWorkerConfig
}

func NewConsumerWorker(logger *slog.Logger, consumer Consumer, handlers map[string]Handler, deadLetter Publisher, cfg ConsumerWorkerConfig) *ConsumerWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &ConsumerWorker{
		logger:     logger,
		consumer:   consumer,
		handlers:   handlers,
		deadLetter: deadLetter,
		cfg:        cfg,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "eventbus.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs, err := w.consumer.Poll(ctx, 50)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		handler, ok := w.handlers[msg.Topic]
		if !ok {
			w.logger.WarnContext(ctx, "no handler for topic",
				"module", "eventbus.consumer_worker",
				"topic", msg.Topic,
			)
			continue
		}
		w.handleWithRetry(ctx, msg, handler)
	}
	return nil
}

func (w *ConsumerWorker) handleWithRetry(ctx context.Context, msg Message, handler Handler) {
	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		lastErr = handler(ctx, msg.Payload)
		if lastErr == nil {
			return
		}
		w.logger.WarnContext(ctx, "event handling failed",
			"module", "eventbus.consumer_worker",
			"layer", "adapter",
			"operation", "handle",
			"outcome", "failure",
			"topic", msg.Topic,
			"attempt", attempt,
			"error", lastErr,
		)
		if attempt == w.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.RetryDelay):
		}
	}
	if w.deadLetter != nil {
		if dlqErr := w.deadLetter.Publish(ctx, msg.Topic+DeadLetterTopicSuffix, msg.Payload, ""); dlqErr != nil {
			w.logger.ErrorContext(ctx, "dead-letter publish failed",
				"module", "eventbus.consumer_worker",
				"topic", msg.Topic,
				"error", dlqErr,
			)
			return
		}
	}
	w.logger.ErrorContext(ctx, "event dead-lettered",
		"module", "eventbus.consumer_worker",
		"layer", "adapter",
		"operation", "handle",
		"outcome", "dead_letter",
		"topic", msg.Topic,
		"attempts", w.cfg.MaxAttempts,
		"error", lastErr,
	)
}
