package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/internal/messaging"
	"github.com/joao-fontenele/restaurant-pos/internal/orders"
	"github.com/joao-fontenele/restaurant-pos/internal/server"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8081")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	providers, err := telemetry.Setup(ctx, "orders", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	db, err := telemetry.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	publisher, err := messaging.NewPublisher(cfg)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer func() { _ = publisher.Close() }()
	} else {
		logger.Warn("no event transport configured, order events are disabled")
	}

	svc, err := orders.NewService(orders.NewOrderRepository(db), publisher, cfg.TaxRate, logger)
	if err != nil {
		logger.Error("failed to create orders service", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	orders.NewHandler(svc, logger).Register(mux)
	mux.Handle("GET /metrics", providers.MetricsHandler)

	if err := server.Run(ctx, logger, "orders", cfg.Port, telemetry.InstrumentServer(mux, "orders")); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
