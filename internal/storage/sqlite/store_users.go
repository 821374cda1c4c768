package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage"
)

const userColumns = `id, username, email, display_name, role, profession, bio,
	organization, location, password_hash, privacy, online, last_seen_at,
	created_at, updated_at`

type userRowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row userRowScanner) (storage.User, error) {
	var (
		user       storage.User
		privacyRaw string
		online     int
		lastSeen   sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.Profession,
		&user.Bio,
		&user.Organization,
		&user.Location,
		&user.PasswordHash,
		&privacyRaw,
		&online,
		&lastSeen,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.User{}, err
	}

	if err := decodeJSON(privacyRaw, &user.Privacy); err != nil {
		return storage.User{}, err
	}
	user.Online = online != 0
	if lastSeen.Valid {
		if user.LastSeenAt, err = parseTime(lastSeen.String); err != nil {
			return storage.User{}, err
		}
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return storage.User{}, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (storage.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return storage.User{}, notFoundOn(err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (storage.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username)
	user, err := scanUser(row)
	if err != nil {
		return storage.User{}, notFoundOn(err)
	}
	return user, nil
}

// CreateUser validates input, hashes the password, and inserts the account.
func (s *Store) CreateUser(ctx context.Context, input storage.UserInput) (storage.User, error) {
	if err := storage.ValidateUserInput(input); err != nil {
		return storage.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return storage.User{}, err
	}

	role := input.Role
	if role == "" {
		role = storage.RoleUser
	}
	privacy, err := encodeJSON(storage.PrivacySettings{
		ShowProfession:   true,
		ShowOrganization: true,
		ShowLocation:     true,
		AllowMessages:    true,
	})
	if err != nil {
		return storage.User{}, err
	}

	now := formatTime(s.now())
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, display_name, role, profession, bio,
			organization, location, password_hash, privacy, online, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		input.Username, input.Email, input.DisplayName, role, input.Profession,
		input.Bio, input.Organization, input.Location, hash, privacy, now, now,
	)
	if err != nil {
		return storage.User{}, mapConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateUser merges the non-nil fields of the update into the stored record.
func (s *Store) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (storage.User, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
		user, err := scanUser(row)
		if err != nil {
			return notFoundOn(err)
		}

		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.DisplayName != nil {
			user.DisplayName = *update.DisplayName
		}
		if update.Profession != nil {
			user.Profession = *update.Profession
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if update.Organization != nil {
			user.Organization = *update.Organization
		}
		if update.Location != nil {
			user.Location = *update.Location
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET email = ?, display_name = ?, profession = ?, bio = ?,
				organization = ?, location = ?, updated_at = ?
			WHERE id = ?`,
			user.Email, user.DisplayName, user.Profession, user.Bio,
			user.Organization, user.Location, formatTime(s.now()), id,
		)
		return err
	})
	if err != nil {
		return storage.User{}, err
	}
	return s.GetUser(ctx, id)
}

// UpdatePrivacySettings merges the non-nil toggles into the privacy column.
func (s *Store) UpdatePrivacySettings(ctx context.Context, id int64, update storage.PrivacyUpdate) (storage.User, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
		user, err := scanUser(row)
		if err != nil {
			return notFoundOn(err)
		}

		if update.ShowEmail != nil {
			user.Privacy.ShowEmail = *update.ShowEmail
		}
		if update.ShowProfession != nil {
			user.Privacy.ShowProfession = *update.ShowProfession
		}
		if update.ShowOrganization != nil {
			user.Privacy.ShowOrganization = *update.ShowOrganization
		}
		if update.ShowLocation != nil {
			user.Privacy.ShowLocation = *update.ShowLocation
		}
		if update.AllowMessages != nil {
			user.Privacy.AllowMessages = *update.AllowMessages
		}

		privacy, err := encodeJSON(user.Privacy)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE users SET privacy = ?, updated_at = ? WHERE id = ?`,
			privacy, formatTime(s.now()), id)
		return err
	})
	if err != nil {
		return storage.User{}, err
	}
	return s.GetUser(ctx, id)
}

// ChangePassword verifies the current password before storing a hash of the
// replacement.
func (s *Store) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var hash string
		err := tx.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, id).Scan(&hash)
		if err != nil {
			return notFoundOn(err)
		}

		if err := auth.VerifyPassword(hash, currentPassword); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return storage.ErrInvalidCredentials
			}
			return err
		}

		if len(newPassword) < 8 {
			return &storage.ValidationError{FieldErrors: map[string]string{"new_password": "password must be at least 8 characters"}}
		}

		newHash, err := auth.HashPassword(newPassword)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
			newHash, formatTime(s.now()), id)
		return err
	})
}

// SetUserPresence records whether the user is online.
func (s *Store) SetUserPresence(ctx context.Context, id int64, online bool) error {
	onlineValue := 0
	lastSeen := any(nil)
	if online {
		onlineValue = 1
	} else {
		lastSeen = formatTime(s.now())
	}

	var result sql.Result
	var err error
	if online {
		result, err = s.db.ExecContext(ctx, `UPDATE users SET online = ? WHERE id = ?`, onlineValue, id)
	} else {
		result, err = s.db.ExecContext(ctx, `UPDATE users SET online = ?, last_seen_at = ? WHERE id = ?`, onlineValue, lastSeen, id)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListResourcePersons returns instructor accounts sorted by display name.
func (s *Store) ListResourcePersons(ctx context.Context) ([]storage.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY display_name, id`,
		storage.RoleResourcePerson)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]storage.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
