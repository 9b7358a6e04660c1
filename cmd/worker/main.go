package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/messaging"
	"github.com/joao-fontenele/restaurant-pos/internal/money"
	"github.com/joao-fontenele/restaurant-pos/internal/server"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
	"github.com/joao-fontenele/restaurant-pos/internal/worker"
)

const (
	kafkaGroup = "notification-worker"
	amqpQueue  = "pos.notifications"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8085")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.EventTransport == "" {
		logger.Error("KAFKA_BROKERS or EVENT_TRANSPORT=amqp with AMQP_URL is required")
		os.Exit(1)
	}

	if cfg.EmailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	providers, err := telemetry.Setup(ctx, "worker", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	group := kafkaGroup
	if cfg.EventTransport == config.TransportAMQP {
		group = amqpQueue
	}

	subscriber, err := messaging.NewSubscriber(cfg, group, domain.TopicOrderDelivered, domain.TopicInventoryLowStock)
	if err != nil {
		logger.Error("failed to create subscriber", "error", err)
		os.Exit(1)
	}
	defer func() { _ = subscriber.Close() }()

	notificationHandler, err := worker.NewNotificationHandler(
		cfg.EmailServiceURL,
		cfg.ManagerEmail,
		money.NewFormatter(cfg.CurrencyCode),
		telemetry.NewHTTPClient(10*time.Second),
		logger,
	)
	if err != nil {
		logger.Error("failed to create notification handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", providers.MetricsHandler)
	go func() {
		if err := server.Run(ctx, logger, "worker metrics", cfg.Port, mux); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("starting notification worker", "transport", cfg.EventTransport, "group", group)

	if err := subscriber.Consume(ctx, notificationHandler.Handle); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
