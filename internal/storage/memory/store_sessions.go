package memory

import (
	"context"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- SessionStore implementation ---

// CreateSession stores an issued session and assigns its identifier.
func (s *Store) CreateSession(ctx context.Context, session storage.Session) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return storage.Session{}, storage.ErrNotFound
	}

	s.counters.session++
	session.ID = s.counters.session
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	s.sessions[session.ID] = session
	return session, nil
}

// GetSessionByToken retrieves a session by its opaque token.
func (s *Store) GetSessionByToken(ctx context.Context, token string) (storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return storage.Session{}, storage.ErrNotFound
}

// RevokeSession stamps the revocation instant on the session holding the
// token.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.Token != token {
			continue
		}
		session.RevokedAt = &revokedAt
		s.sessions[id] = session
		return session, nil
	}
	return storage.Session{}, storage.ErrNotFound
}

// DeleteExpiredSessions drops sessions whose expiry precedes the reference
// instant.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, id)
		}
	}
	return nil
}
