package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/internal/gateway"
	"github.com/joao-fontenele/restaurant-pos/internal/server"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8080")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	backends := map[string]string{
		"ORDERS_SERVICE_URL":       cfg.OrdersServiceURL,
		"BILLING_SERVICE_URL":      cfg.BillingServiceURL,
		"INVENTORY_SERVICE_URL":    cfg.InventoryServiceURL,
		"RESERVATIONS_SERVICE_URL": cfg.ReservationServiceURL,
		"STAFF_SERVICE_URL":        cfg.StaffServiceURL,
	}
	for name, url := range backends {
		if url == "" {
			logger.Error(name + " is required")
			os.Exit(1)
		}
	}

	providers, err := telemetry.Setup(ctx, "gateway", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	httpClient := telemetry.NewHTTPClient(10 * time.Second)

	handler := gateway.NewHandler(gateway.Backends{
		Orders:       gateway.NewServiceProxy("orders", cfg.OrdersServiceURL, httpClient),
		Billing:      gateway.NewServiceProxy("billing", cfg.BillingServiceURL, httpClient),
		Inventory:    gateway.NewServiceProxy("inventory", cfg.InventoryServiceURL, httpClient),
		Reservations: gateway.NewServiceProxy("reservations", cfg.ReservationServiceURL, httpClient),
		Staff:        gateway.NewServiceProxy("staff", cfg.StaffServiceURL, httpClient),
	}, logger)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("GET /metrics", providers.MetricsHandler)

	if err := server.Run(ctx, logger, "gateway", cfg.Port, telemetry.InstrumentServer(mux, "gateway")); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
