// Command dbcheck verifies that the configured database is reachable and
// reports how many listings it holds.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/shared"
	"estate_dashboard/internal/storage"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := check(ctx, cfg); err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database check failed")
	}
}

func check(ctx context.Context, cfg shared.Config) error {
	st, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cities, err := st.Repo.ListCities(ctx)
	if err != nil {
		return err
	}
	n, err := st.Repo.CountListings(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Str("driver", cfg.DBDriver).
		Int("cities", len(cities)).
		Int("listings", n).
		Msg("database connection successful")
	return nil
}
