// Package factory constructs the storage adapter selected by configuration.
// It exists outside package storage so the port has no dependency on its
// adapters.
package factory

import (
	"context"
	"fmt"

	"github.com/example/cpd-marketplace/internal/config"
	"github.com/example/cpd-marketplace/internal/storage"
	"github.com/example/cpd-marketplace/internal/storage/memory"
	"github.com/example/cpd-marketplace/internal/storage/sqlite"
)

// Open builds the adapter named by the configuration. The SQLite adapter is
// migrated before it is returned; the memory adapter is ready immediately.
// The returned store is built once at process start and injected into every
// consumer.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.StorageMemory, "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Storage)
	}
}
