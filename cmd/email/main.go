package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/internal/email"
	"github.com/joao-fontenele/restaurant-pos/internal/server"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8084")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	providers, err := telemetry.Setup(ctx, "email", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	mux := http.NewServeMux()
	email.NewHandler(logger).Register(mux)
	mux.Handle("GET /metrics", providers.MetricsHandler)

	if err := server.Run(ctx, logger, "email", cfg.Port, telemetry.InstrumentServer(mux, "email")); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
