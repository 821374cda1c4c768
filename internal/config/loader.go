// Package config loads environment driven settings for the marketplace
// service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// StorageKind selects which storage adapter the factory constructs.
type StorageKind string

const (
	// StorageMemory is the in-memory adapter, the default for local runs.
	StorageMemory StorageKind = "memory"
	// StorageSQLite is the embedded database adapter.
	StorageSQLite StorageKind = "sqlite"
)

// Config captures environment driven configuration values for the
// marketplace service.
type Config struct {
	HTTPPort   int           `env:"MARKETPLACE_HTTP_PORT" envDefault:"8080"`
	Storage    StorageKind   `env:"MARKETPLACE_STORAGE"`
	SQLiteDSN  string        `env:"MARKETPLACE_SQLITE_DSN"`
	SessionTTL time.Duration `env:"MARKETPLACE_SESSION_TTL" envDefault:"24h"`
	SeedDemo   bool          `env:"MARKETPLACE_SEED_DEMO" envDefault:"false"`
}

// Load parses configuration from the current process environment, applying
// defaults for optional fields and validating the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("MARKETPLACE_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("MARKETPLACE_SESSION_TTL must be positive: %s", c.SessionTTL)
	}

	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case "":
		// A configured DSN implies the sqlite adapter.
		if c.SQLiteDSN != "" {
			c.Storage = StorageSQLite
		} else {
			c.Storage = StorageMemory
		}
	default:
		return fmt.Errorf("MARKETPLACE_STORAGE must be %q or %q, got %q", StorageMemory, StorageSQLite, c.Storage)
	}

	if c.Storage == StorageSQLite && c.SQLiteDSN == "" {
		return fmt.Errorf("MARKETPLACE_SQLITE_DSN is required when MARKETPLACE_STORAGE=%s", StorageSQLite)
	}
	return nil
}
