package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/joao-fontenele/restaurant-pos/internal/billing"
	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/internal/server"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8083")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	if cfg.OrdersServiceURL == "" {
		logger.Error("ORDERS_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	providers, err := telemetry.Setup(ctx, "billing", cfg.ServiceVersion)
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

	ordersClient := billing.NewOrdersClient(cfg.OrdersServiceURL, telemetry.NewHTTPClient(10*time.Second))

	svc, err := billing.NewService(billing.NewBillRepository(db), ordersClient, logger)
	if err != nil {
		logger.Error("failed to create billing service", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	billing.NewHandler(svc, logger).Register(mux)
	mux.Handle("GET /metrics", providers.MetricsHandler)

	if err := server.Run(ctx, logger, "billing", cfg.Port, telemetry.InstrumentServer(mux, "billing")); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
