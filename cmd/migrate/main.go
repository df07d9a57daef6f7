// Command migrate applies the database schema. The DDL is idempotent, so
// running it repeatedly is safe.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rjdelrosario/gastos/internal/logger"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

func main() {
	log := logger.New()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.New(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Msg("Schema is up to date")
}
