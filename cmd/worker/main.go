package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/adapter/postgres"
	"github.com/carenow/queue-notify/internal/adapter/provider"
	"github.com/carenow/queue-notify/internal/adapter/queue"
	"github.com/carenow/queue-notify/internal/adapter/ws"
	"github.com/carenow/queue-notify/internal/app"
	"github.com/carenow/queue-notify/pkg/config"
	"github.com/carenow/queue-notify/pkg/logger"
	"github.com/carenow/queue-notify/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, "queue-notify-worker", cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else {
		defer func() { _ = tp.Shutdown(ctx) }()
	}

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	queueRepo := postgres.NewQueueRepo(db)
	preferenceRepo := postgres.NewPreferenceRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	pushProvider := provider.NewFCMProvider(cfg.PushGatewayURL)
	wsHub := ws.NewHub()

	producer := queue.NewProducer(cfg.KafkaBrokers)
	defer func() { _ = producer.Close() }()

	evaluator := app.NewEvaluator(queueRepo, preferenceRepo, notificationRepo, producer, log)
	dispatcher := app.NewDispatcher(notificationRepo, preferenceRepo, pushProvider, wsHub, log)

	reminders := app.NewReminderScheduler(log, cfg.ReminderInterval)
	go reminders.Run(ctx)

	consumer := queue.NewConsumer(queue.ConsumerConfig{
		Brokers:      cfg.KafkaBrokers,
		Group:        cfg.KafkaConsumerGroup,
		DispatchRate: cfg.DispatchRate,
		Logger:       log,
	})

	go func() {
		log.Info("starting kafka consumer",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("group", cfg.KafkaConsumerGroup),
		)
		if err := consumer.Start(ctx, evaluator.HandleAdvance, dispatcher.Dispatch); err != nil {
			if ctx.Err() == nil {
				log.Error("consumer stopped unexpectedly", zap.Error(err))
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := consumer.Stop(shutdownCtx); err != nil {
		log.Error("consumer shutdown error", zap.Error(err))
	}

	log.Info("worker stopped")
}
