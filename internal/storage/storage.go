// Package storage picks the repository implementation for a configured driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/domain"
	"estate_dashboard/internal/shared"
	"estate_dashboard/internal/storage/gormstore"
	mysqlrepo "estate_dashboard/internal/storage/mysql"
)

// Store is an opened repository and the function that releases it.
type Store struct {
	Repo  domain.ListingRepository
	Close func() error
}

// Open connects to the configured database, verifies the connection and
// brings the schema up to date.
func Open(ctx context.Context, cfg shared.Config) (Store, error) {
	switch cfg.DBDriver {
	case shared.DriverMySQL:
		return openMySQL(ctx, cfg)
	case shared.DriverPostgres, shared.DriverSQLite:
		db, err := gormstore.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpen)
		if err != nil {
			return Store{}, err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")
		return Store{Repo: gormstore.New(db), Close: func() error { return gormstore.Close(db) }}, nil
	default:
		return Store{}, fmt.Errorf("storage: unsupported driver %q", cfg.DBDriver)
	}
}

func openMySQL(ctx context.Context, cfg shared.Config) (Store, error) {
	db, err := sql.Open("mysql", cfg.DatabaseURL)
	if err != nil {
		return Store{}, fmt.Errorf("storage: sql.Open: %w", err)
	}
	if cfg.DBMaxOpen > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpen)
		db.SetMaxIdleConns(cfg.DBMaxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return Store{}, fmt.Errorf("storage: ping: %w", err)
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return Store{}, fmt.Errorf("storage: migrate: %w", err)
	}
	log.Info().Str("driver", shared.DriverMySQL).Msg("database connection ok")
	return Store{Repo: mysqlrepo.New(db), Close: db.Close}, nil
}
