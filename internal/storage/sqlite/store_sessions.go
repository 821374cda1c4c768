package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

// CreateSession persists a freshly issued session token.
func (s *Store) CreateSession(ctx context.Context, session storage.Session) (storage.Session, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, session.UserID).Scan(&exists); err != nil {
		return storage.Session{}, notFoundOn(err)
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.UserID, session.Token, formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt), formatNullableTime(session.RevokedAt),
	)
	if err != nil {
		return storage.Session{}, mapConstraintError(err)
	}
	if session.ID, err = result.LastInsertId(); err != nil {
		return storage.Session{}, fmt.Errorf("session insert id: %w", err)
	}
	return session, nil
}

// GetSessionByToken retrieves a session by its opaque token.
func (s *Store) GetSessionByToken(ctx context.Context, token string) (storage.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at, revoked_at
		FROM sessions WHERE token = ?`, token)
	session, err := scanSession(row)
	if err != nil {
		return storage.Session{}, notFoundOn(err)
	}
	return session, nil
}

// RevokeSession stamps the session as revoked.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (storage.Session, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE token = ?`,
		formatTime(revokedAt), token)
	if err != nil {
		return storage.Session{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Session{}, err
	}
	if affected == 0 {
		return storage.Session{}, storage.ErrNotFound
	}
	return s.GetSessionByToken(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry predates the reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, formatTime(reference))
	return err
}

func scanSession(row userRowScanner) (storage.Session, error) {
	var (
		session   storage.Session
		expiresAt string
		createdAt string
		revokedAt sql.NullString
	)
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &revokedAt)
	if err != nil {
		return storage.Session{}, err
	}
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return storage.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.Session{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt); err != nil {
		return storage.Session{}, err
	}
	return session, nil
}
