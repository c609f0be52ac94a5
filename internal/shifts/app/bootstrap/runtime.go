package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guardpoint/workforce/internal/eventbus"
	httpadapter "github.com/guardpoint/workforce/internal/shifts/adapters/http"
	"github.com/guardpoint/workforce/internal/shifts/adapters/postgres"
	"github.com/guardpoint/workforce/internal/shifts/adapters/security"
	"github.com/guardpoint/workforce/internal/shifts/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	outbox     *eventbus.OutboxWorker
	consumer   *eventbus.ConsumerWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	verifier, err := security.NewTokenVerifier(cfg.JWTSecret)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	repos := postgres.NewRepositories(db)
	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:   cfg.ServiceID,
			EventDedupTTL: cfg.EventDedupTTL,
		},
		Logger:      logger,
		Shifts:      repos.Shifts,
		Assignments: repos.Assignments,
		Personnel:   repos.Personnel,
		Templates:   repos.Templates,
		SyncAudit:   repos.SyncAudit,
		EventDedup:  repos.EventDedup,
	})

	handler := httpadapter.NewHandler(service, verifier)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	consumedTopics := []string{
		eventbus.EventCheckedIn,
		eventbus.EventCheckedOut,
		eventbus.EventUserCreated,
		eventbus.EventUserUpdated,
		eventbus.EventUserDeleted,
		eventbus.EventContractActivated,
		eventbus.EventDeactivateGuard,
		eventbus.EventDeactivateManager,
	}

	publisher := eventbus.Publisher(eventbus.NewLoggingPublisher(logger))
	consumerAdapter := eventbus.Consumer(eventbus.NewNoopConsumer())
	var closers []io.Closer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventbus.NewKafkaPublisher(cfg.KafkaBrokers, nil)
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}

		kafkaConsumer, conErr := eventbus.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, consumedTopics)
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumerAdapter = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	}
	outbox := eventbus.NewOutboxWorker(logger, repos.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	consumer := eventbus.NewConsumerWorker(logger, consumerAdapter, map[string]eventbus.Handler{
		eventbus.EventCheckedIn:         service.HandleCheckedIn,
		eventbus.EventCheckedOut:        service.HandleCheckedOut,
		eventbus.EventUserCreated:       service.HandleUserUpserted,
		eventbus.EventUserUpdated:       service.HandleUserUpserted,
		eventbus.EventUserDeleted:       service.HandleUserDeleted,
		eventbus.EventContractActivated: service.HandleContractActivated,
		eventbus.EventDeactivateGuard:   service.HandleDeactivateGuard,
		eventbus.EventDeactivateManager: service.HandleDeactivateManager,
	}, publisher, eventbus.ConsumerWorkerConfig{
		PollInterval: cfg.ConsumerPollInterval,
		RetryDelay:   cfg.ConsumerRetryDelay,
		MaxAttempts:  cfg.ConsumerMaxAttempts,
	})

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		outbox:     outbox,
		consumer:   consumer,
		cleanupFn: func(ctx context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}
