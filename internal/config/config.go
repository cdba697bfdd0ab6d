package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"crowdfund-escrow/internal/config/configs"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	// StorageDriver selects the ledger store: "postgres" or "sqlite".
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// SQLite configures the embedded store. Environment variables prefixed
	// with SQLITE_ will populate this struct.
	SQLite configs.SQLite `envPrefix:"SQLITE_"`

	// Auth configures bearer token verification. Environment variables
	// prefixed with AUTH_ will populate this struct.
	Auth configs.Auth `envPrefix:"AUTH_"`

	// Clock selects the time oracle. Environment variables prefixed with
	// CLOCK_ will populate this struct.
	Clock configs.Clock `envPrefix:"CLOCK_"`

	// Asset points at the token service. Environment variables prefixed
	// with ASSET_ will populate this struct.
	Asset configs.Asset `envPrefix:"ASSET_"`

	// Metrics configures the Prometheus endpoint. Environment variables
	// prefixed with METRICS_ will populate this struct.
	Metrics configs.Metrics `envPrefix:"METRICS_"`
}

// Load reads configuration from environment variables into a Config. The
// given dotenv files are loaded first when they exist; variables already
// set in the environment win. If parsing fails, an error is returned. All
// fields are loaded with their specified defaults when no environment
// variable is provided.
func Load(dotenv ...string) (Config, error) {
	var cfg Config
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", file, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}
