package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/migrations"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	dryRun := flag.Bool("dry-run", false, "Print pending migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		logger.Fatalw("Failed to create schema_migrations", "error", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT name FROM schema_migrations`); err != nil {
		logger.Fatalw("Failed to read applied migrations", "error", err)
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	files, err := migrations.Files()
	if err != nil {
		logger.Fatalw("Failed to list migrations", "error", err)
	}

	pending := 0
	for _, name := range files {
		if done[name] {
			logger.Debugw("Skipping applied migration", "name", name)
			continue
		}
		pending++

		content, err := migrations.Content.ReadFile(name)
		if err != nil {
			logger.Fatalw("Failed to read migration", "name", name, "error", err)
		}

		if *dryRun {
			fmt.Printf("-- %s\n%s\n", name, content)
			continue
		}

		logger.Infow("Applying migration", "name", name)
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			logger.Fatalw("Failed to begin migration", "name", name, "error", err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			logger.Fatalw("Failed to apply migration", "name", name, "error", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			logger.Fatalw("Failed to record migration", "name", name, "error", err)
		}
		if err := tx.Commit(); err != nil {
			logger.Fatalw("Failed to commit migration", "name", name, "error", err)
		}
	}

	logger.Infow("Migration completed", "pending", pending, "dry_run", *dryRun)
}
