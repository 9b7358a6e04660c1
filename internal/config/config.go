// Package config reads service settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	TransportKafka = "kafka"
	TransportAMQP  = "amqp"
)

var DefaultTaxRate = decimal.RequireFromString("0.16")

type Config struct {
	Port                  string
	PostgresURL           string
	KafkaBrokers          []string
	AMQPURL               string
	EventTransport        string
	TaxRate               decimal.Decimal
	CurrencyCode          string
	OrdersServiceURL      string
	BillingServiceURL     string
	InventoryServiceURL   string
	ReservationServiceURL string
	StaffServiceURL       string
	EmailServiceURL       string
	ManagerEmail          string
	ServiceVersion        string
}

// Load builds a Config with defaultPort used when PORT is unset.
func Load(defaultPort string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:                  getenv("PORT", defaultPort),
		PostgresURL:           os.Getenv("POSTGRES_URL"),
		AMQPURL:               os.Getenv("AMQP_URL"),
		EventTransport:        strings.ToLower(os.Getenv("EVENT_TRANSPORT")),
		CurrencyCode:          getenv("CURRENCY_CODE", "KES"),
		OrdersServiceURL:      os.Getenv("ORDERS_SERVICE_URL"),
		BillingServiceURL:     os.Getenv("BILLING_SERVICE_URL"),
		InventoryServiceURL:   os.Getenv("INVENTORY_SERVICE_URL"),
		ReservationServiceURL: os.Getenv("RESERVATIONS_SERVICE_URL"),
		StaffServiceURL:       os.Getenv("STAFF_SERVICE_URL"),
		EmailServiceURL:       os.Getenv("EMAIL_SERVICE_URL"),
		ManagerEmail:          getenv("MANAGER_EMAIL", "manager@example.com"),
		ServiceVersion:        getenv("SERVICE_VERSION", "0.1.0"),
		TaxRate:               DefaultTaxRate,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if raw := os.Getenv("TAX_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse TAX_RATE %q: %w", raw, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("TAX_RATE must not be negative, got %s", raw)
		}
		cfg.TaxRate = rate
	}

	switch cfg.EventTransport {
	case "":
		if len(cfg.KafkaBrokers) > 0 {
			cfg.EventTransport = TransportKafka
		}
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("EVENT_TRANSPORT=kafka requires KAFKA_BROKERS")
		}
	case TransportAMQP:
		if cfg.AMQPURL == "" {
			return nil, errors.New("EVENT_TRANSPORT=amqp requires AMQP_URL")
		}
	default:
		return nil, fmt.Errorf("unknown EVENT_TRANSPORT %q", cfg.EventTransport)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
