package gormstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// zerologWriter routes gorm's logger output into the global zerolog logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Debug().Str("component", "gorm").Msgf(format, args...)
}

// Open connects to PostgreSQL or SQLite and runs AutoMigrate for every model.
func Open(ctx context.Context, driver, dsn string, maxOpen int) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(zerologWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: get database object: %w", err)
	}
	if driver == DriverSQLite {
		// a single connection keeps in-memory databases alive and serialises writers
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gormstore: ping: %w", err)
	}
	if driver == DriverSQLite {
		if err := checkForeignKeys(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	if err := db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return db, nil
}

// sqliteDSN turns on foreign key enforcement for every connection the driver
// opens unless the DSN already sets it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func checkForeignKeys(ctx context.Context, db *gorm.DB) error {
	var on int
	if err := db.WithContext(ctx).Raw("PRAGMA foreign_keys").Scan(&on).Error; err != nil {
		return fmt.Errorf("gormstore: read foreign_keys pragma: %w", err)
	}
	if on != 1 {
		return fmt.Errorf("gormstore: sqlite foreign keys are disabled by the DSN")
	}
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gormstore: get database object: %w", err)
	}
	return sqlDB.Close()
}
