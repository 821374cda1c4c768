// Package sqlite implements the storage port on an embedded SQLite database
// via the pure-Go modernc.org/sqlite driver. It is the adapter selected by
// the factory when a DSN is configured; nested collections are persisted as
// JSON text columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/cpd-marketplace/internal/storage"
)

// Store is the SQLite storage adapter.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database identified by the DSN.
func Open(dsn string) (*Store, error) {
	return OpenWithClock(dsn, time.Now)
}

// OpenWithClock connects using the supplied time source.
func OpenWithClock(dsn string, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{db: db, now: now}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Seed loads the demonstration dataset.
func (s *Store) Seed(ctx context.Context) error {
	return storage.SeedDemoData(ctx, s)
}

var _ storage.Store = (*Store)(nil)
var _ storage.Seeder = (*Store)(nil)

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapConstraintError translates driver uniqueness violations onto the port's
// sentinel errors.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return storage.ErrAlreadyExists
	case strings.Contains(msg, "course_enrollments.user_id"):
		return storage.ErrAlreadyEnrolled
	case strings.Contains(msg, "sessions.token"):
		return storage.ErrAlreadyExists
	}
	return err
}

func encodeJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(raw string, target any) error {
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

// Timestamps are stored as second-precision RFC3339 text. The fixed width
// keeps lexicographic comparison in SQL consistent with time order.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time: %w", err)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func notFoundOn(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
