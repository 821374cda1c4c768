package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage/memory"
	"github.com/example/cpd-marketplace/internal/storage/sqlite"
)

// AuthHarness bundles a deterministic auth service with its backing store,
// clock, and token generator so session tests control every input.
type AuthHarness struct {
	Store   *memory.Store
	Service *auth.Service
	Clock   *Clock
	Tokens  *TokenGenerator
}

// NewAuthHarness constructs an auth service over a fresh in-memory store.
// The clock starts at ReferenceTime and tokens follow the "token-N" sequence.
func NewAuthHarness(tb testing.TB, sessionTTL time.Duration) *AuthHarness {
	tb.Helper()

	clock := NewClock(time.Time{})
	tokens := NewTokenGenerator("token")
	store := memory.NewWithClock(clock.NowFunc())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(store, store, sessionTTL, logger).
		WithClock(clock.NowFunc()).
		WithTokenGenerator(tokens.NextFunc())

	return &AuthHarness{
		Store:   store,
		Service: service,
		Clock:   clock,
		Tokens:  tokens,
	}
}

// NewSQLiteHarness opens a migrated throwaway database for adapter tests. The
// store is closed automatically when the test finishes.
func NewSQLiteHarness(tb testing.TB) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "marketplace.db")
	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
