package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gitlab.com/symplylade/portfolio-api/internal/config"
	"gitlab.com/symplylade/portfolio-api/internal/logging"
	"gitlab.com/symplylade/portfolio-api/internal/storage"
)

// Usage example on the command line:
// > DB_HOST=localhost:3306 DB_USER=lade DB_PWD=secret go run main.go
// > DB_DRIVER=pgx DB_HOST=localhost:5432 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "", "an sql file to execute instead of creating the default schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("could not load configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	if err := run(context.Background(), cfg, *filePtr); err != nil {
		logging.Fatal("migration failed", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, file string) error {
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if file == "" {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		slog.Info("schema is up to date", "driver", cfg.Database.Driver)
		return nil
	}

	readFile, err := os.Open(file) // nosemgrep
	if err != nil {
		return fmt.Errorf("open sql file: %w", err)
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	statements := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			if _, err := store.DB().ExecContext(ctx, builder.String()); err != nil {
				return fmt.Errorf("statement %d: %w", statements+1, err)
			}
			builder = strings.Builder{}
			statements++
		}
	}
	if err := fileScanner.Err(); err != nil {
		return fmt.Errorf("read sql file: %w", err)
	}
	slog.Info("sql file executed", "file", file, "statements", statements)
	return nil
}
