package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	httpAdapter "github.com/carenow/queue-notify/internal/adapter/http"
	"github.com/carenow/queue-notify/internal/adapter/postgres"
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

	tp, err := tracing.InitTracer(ctx, "queue-notify-api", cfg.JaegerEndpoint)
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

	runMigrations(cfg.DatabaseURL, log)

	queueRepo := postgres.NewQueueRepo(db)
	preferenceRepo := postgres.NewPreferenceRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	producer := queue.NewProducer(cfg.KafkaBrokers)
	defer func() { _ = producer.Close() }()
	wsHub := ws.NewHub()

	queueService := app.NewQueueService(queueRepo, producer, wsHub, log)
	preferenceService := app.NewPreferenceService(preferenceRepo, log)
	inboxService := app.NewInboxService(notificationRepo)
	metricsCollector := app.NewMetricsCollector(notificationRepo)

	queueHandler := httpAdapter.NewQueueHandler(queueService)
	preferenceHandler := httpAdapter.NewPreferenceHandler(preferenceService)
	inboxHandler := httpAdapter.NewInboxHandler(inboxService)
	healthHandler := httpAdapter.NewHealthHandler(db, cfg.KafkaBrokers)
	metricsHandler := httpAdapter.NewMetricsHandler(metricsCollector)
	wsHandler := httpAdapter.NewWebSocketHandler(wsHub)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		QueueHandler:      queueHandler,
		InboxHandler:      inboxHandler,
		PreferenceHandler: preferenceHandler,
		HealthHandler:     healthHandler,
		MetricsHandler:    metricsHandler,
		WebSocketHandler:  wsHandler,
		Logger:            log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting http server", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func runMigrations(databaseURL string, log *zap.Logger) {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		log.Warn("failed to create migrator", zap.Error(err))
		return
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Warn("migration failed", zap.Error(err))
		return
	}

	log.Info("database migrations applied")
}
