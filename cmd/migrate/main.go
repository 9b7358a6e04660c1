package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joao-fontenele/restaurant-pos/internal/config"
	"github.com/joao-fontenele/restaurant-pos/migrations"
)

const usage = "usage: migrate [-source file://DIR] <up|down [N]|goto VERSION|force VERSION|version>"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	source := flag.String("source", os.Getenv("MIGRATIONS_PATH"), "migration source URL; the embedded schema when empty")
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		logger.Error(usage)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	var m *migrate.Migrate
	if *source != "" {
		m, err = migrate.New(*source, cfg.PostgresURL)
	} else {
		m, err = migrations.New(cfg.PostgresURL)
	}
	if err != nil {
		logger.Error("failed to create migrate instance", "error", err)
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	if err := run(logger, m, args); err != nil {
		logger.Error("migration failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, m *migrate.Migrate, args []string) error {
	switch command := args[0]; command {
	case "up":
		return report(logger, m.Up(), "migrations applied")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := positiveArg(args[1])
			if err != nil {
				return err
			}
			steps = n
		}
		return report(logger, m.Steps(-steps), "migrations rolled back", "steps", steps)

	case "goto":
		if len(args) < 2 {
			return errors.New("goto needs a VERSION")
		}
		version, err := positiveArg(args[1])
		if err != nil {
			return err
		}
		return report(logger, m.Migrate(uint(version)), "migrated to version", "version", version)

	case "force":
		if len(args) < 2 {
			return errors.New("force needs a VERSION")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := m.Force(version); err != nil {
			return err
		}
		logger.Info("migration version forced", "version", version)
		return nil

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied yet")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("current migration version", "version", version, "dirty", dirty)
		return nil

	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}
}

// report treats ErrNoChange as success.
func report(logger *slog.Logger, err error, msg string, attrs ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no change")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(msg, attrs...)
	return nil
}

func positiveArg(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive number, got %q", raw)
	}
	return n, nil
}
