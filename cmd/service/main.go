package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitlab.com/symplylade/portfolio-api/internal/catalog"
	"gitlab.com/symplylade/portfolio-api/internal/config"
	"gitlab.com/symplylade/portfolio-api/internal/logging"
	"gitlab.com/symplylade/portfolio-api/internal/notify"
	"gitlab.com/symplylade/portfolio-api/internal/service"
	"gitlab.com/symplylade/portfolio-api/internal/storage"
)

// Usage example on the command line:
// > PORT=8000 DB_USER=lade DB_PWD=secret SMTP_EMAIL=me@example.com SMTP_PASSWORD=app-pwd GIN_MODE=release go run main.go
// > DB_DRIVER=sqlite DB_PATH=portfolio.db GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("could not load configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	if err := run(cfg); err != nil {
		logging.Fatal("portfolio api stopped", "error", err)
	}
}

// run wires the service and serves HTTP until the server fails. The store is
// closed on every return path.
func run(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	projects, err := catalog.Load(cfg.ProjectsFile)
	if err != nil {
		return fmt.Errorf("load project catalog: %w", err)
	}

	notifier := notify.NewSMTPNotifier(cfg.SMTP)
	router := service.New(store, notifier, projects).SetupHttpRouter(cfg.RequestLogging())

	slog.Info("portfolio api listening", "address", cfg.Address())
	if err := router.Run(cfg.Address()); err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}
