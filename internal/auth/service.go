package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cpd-marketplace/internal/logging"
	"github.com/example/cpd-marketplace/internal/storage"
)

var (
	// ErrUnauthorized is returned when no active session backs a request.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrSessionExpired is returned when the presented session has lapsed.
	ErrSessionExpired = errors.New("auth: session expired")
	// ErrSessionRevoked is returned when the presented session was revoked.
	ErrSessionRevoked = errors.New("auth: session revoked")
)

// AccountStore exposes the user lookups the auth service requires.
type AccountStore interface {
	GetUser(ctx context.Context, id int64) (storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (storage.User, error)
	SetUserPresence(ctx context.Context, id int64, online bool) error
}

// Principal identifies the authenticated caller attached to a request.
type Principal struct {
	UserID   int64
	Username string
	Role     storage.Role
}

// LoginResult carries the outcome of a successful login.
type LoginResult struct {
	User    storage.User
	Session storage.Session
}

// Service coordinates login, logout, and session validation.
type Service struct {
	accounts       AccountStore
	sessions       storage.SessionStore
	verifyPassword func(hashedPassword, password string) error
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewService constructs a Service with the provided dependencies. Nil
// optional dependencies fall back to production defaults.
func NewService(accounts AccountStore, sessions storage.SessionStore, sessionTTL time.Duration, logger *slog.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:       accounts,
		sessions:       sessions,
		verifyPassword: VerifyPassword,
		tokenGenerator: uuid.NewString,
		now:            time.Now,
		sessionTTL:     sessionTTL,
		logger:         logger,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithTokenGenerator overrides the token source. Intended for tests.
func (s *Service) WithTokenGenerator(gen func() string) *Service {
	if gen != nil {
		s.tokenGenerator = gen
	}
	return s
}

func (s *Service) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}
	pairs := append([]any{"service", "AuthService", "operation", operation}, attrs...)
	return logger.With(pairs...)
}

// Login validates credentials and issues a new session token. Expired
// sessions are pruned as a side effect of each successful login.
func (s *Service) Login(ctx context.Context, username, password string) (result LoginResult, err error) {
	username = strings.TrimSpace(username)

	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || password == "" {
		err = storage.ErrInvalidCredentials
		return
	}

	var user storage.User
	user, err = s.accounts.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = storage.ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(user.PasswordHash, password); err != nil {
		err = storage.ErrInvalidCredentials
		return
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	var session storage.Session
	session, err = s.sessions.CreateSession(ctx, storage.Session{
		UserID:    user.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return
	}

	if err = s.accounts.SetUserPresence(ctx, user.ID, true); err != nil {
		return
	}

	result = LoginResult{User: user, Session: session}
	return
}

// Logout revokes the session and marks the user offline.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Logout", "token_provided", token != "")

	if token == "" {
		return ErrUnauthorized
	}

	session, err := s.sessions.RevokeSession(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = ErrUnauthorized
		}
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.accounts.SetUserPresence(ctx, session.UserID, false); err != nil {
		logger.ErrorContext(ctx, "failed to mark user offline", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("user_id", session.UserID).InfoContext(ctx, "logout succeeded")
	return nil
}

// ValidateSession verifies that the token corresponds to an active session
// and resolves its principal.
func (s *Service) ValidateSession(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return Principal{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return Principal{}, ErrSessionExpired
	}

	user, err := s.accounts.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}

	return Principal{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// ErrorKind maps auth and storage errors to a stable logging label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	}
	return storage.ErrorKind(err)
}
