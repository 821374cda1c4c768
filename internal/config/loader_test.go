package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"MARKETPLACE_HTTP_PORT",
			"MARKETPLACE_STORAGE",
			"MARKETPLACE_SQLITE_DSN",
			"MARKETPLACE_SESSION_TTL",
			"MARKETPLACE_SEED_DEMO",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Storage != StorageMemory {
			t.Fatalf("expected memory storage by default, got %q", cfg.Storage)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.SeedDemo {
			t.Fatalf("expected demo seeding to default off")
		}
	})

	t.Run("configured DSN implies the sqlite adapter", func(t *testing.T) {
		t.Setenv("MARKETPLACE_SQLITE_DSN", "file:/tmp/marketplace.db")
		if err := os.Unsetenv("MARKETPLACE_STORAGE"); err != nil {
			t.Fatalf("failed to unset MARKETPLACE_STORAGE: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage != StorageSQLite {
			t.Fatalf("expected sqlite storage, got %q", cfg.Storage)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("MARKETPLACE_HTTP_PORT", "9090")
		t.Setenv("MARKETPLACE_STORAGE", "sqlite")
		t.Setenv("MARKETPLACE_SQLITE_DSN", "file:/tmp/marketplace.db")
		t.Setenv("MARKETPLACE_SESSION_TTL", "8h")
		t.Setenv("MARKETPLACE_SEED_DEMO", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("expected session TTL 8h, got %s", cfg.SessionTTL)
		}
		if !cfg.SeedDemo {
			t.Fatalf("expected demo seeding on")
		}
	})

	t.Run("rejects sqlite storage without a DSN", func(t *testing.T) {
		t.Setenv("MARKETPLACE_STORAGE", "sqlite")
		if err := os.Unsetenv("MARKETPLACE_SQLITE_DSN"); err != nil {
			t.Fatalf("failed to unset MARKETPLACE_SQLITE_DSN: %v", err)
		}

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when sqlite storage has no DSN")
		}
	})

	t.Run("rejects unknown storage kinds", func(t *testing.T) {
		t.Setenv("MARKETPLACE_STORAGE", "postgres")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown storage kind")
		}
	})

	t.Run("rejects out of range ports", func(t *testing.T) {
		t.Setenv("MARKETPLACE_HTTP_PORT", "70000")
		if err := os.Unsetenv("MARKETPLACE_STORAGE"); err != nil {
			t.Fatalf("failed to unset MARKETPLACE_STORAGE: %v", err)
		}

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for out of range port")
		}
	})
}
