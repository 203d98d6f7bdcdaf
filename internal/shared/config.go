package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

type Config struct {
	AppEnv       string
	LogLevel     string
	HTTPAddr     string
	MetricsAddr  string
	DatabaseURL  string
	DBDriver     string
	DBMaxOpen    int
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	ExportRPS    float64
	SeedListings int

	RequestTimeout time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	return fromEnv()
}

func fromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}
	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DBDriver:     env("DB_DRIVER", DriverMySQL),
		DBMaxOpen:    atoi("DB_MAX_OPEN_CONNS", 10),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		ExportRPS:    atof("EXPORT_RPS", 2),
		SeedListings: atoi("SEED_LISTINGS", 100),

		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

// Validate reports settings the binaries cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER %q: want mysql, postgres or sqlite", c.DBDriver)
	}
	if c.ExportRPS <= 0 {
		return fmt.Errorf("EXPORT_RPS must be positive, got %v", c.ExportRPS)
	}
	if c.SeedListings < 0 {
		return fmt.Errorf("SEED_LISTINGS must not be negative, got %d", c.SeedListings)
	}
	return nil
}

// CacheEnabled reports whether an external cache is configured.
func (c Config) CacheEnabled() bool { return c.RedisAddr != "" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
