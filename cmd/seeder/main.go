package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/app"
	"estate_dashboard/internal/bootstrap"
	"estate_dashboard/internal/shared"
	"estate_dashboard/internal/storage"
)

func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
}

func run(cfg shared.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("driver", cfg.DBDriver).
		Int("listings", cfg.SeedListings).
		Msg("seeder starting")

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	// 2) the cache only needs to see invalidations
	cache, closeCache := bootstrap.Cache(ctx, cfg)
	defer closeCache()

	seeder := app.NewSeedService(st.Repo, cache, nil)

	start := time.Now()
	ref, err := seeder.SeedReference(ctx, app.DefaultCities, app.DefaultEquipment)
	if err != nil {
		return err
	}
	log.Info().
		Int("cities", len(ref.CityIDs)).
		Int("equipment", len(ref.EquipmentIDs)).
		Msg("reference data ok")

	n, err := seeder.SeedListings(ctx, ref, cfg.SeedListings)
	if err != nil {
		return err
	}
	total, err := st.Repo.CountListings(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("inserted", n).
		Int("total", total).
		Dur("took", time.Since(start)).
		Msg("seeding completed")
	return nil
}
