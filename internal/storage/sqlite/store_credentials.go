package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cpd-marketplace/internal/storage"
)

const credentialColumns = `id, user_id, title, issuer, number, issued_on,
	expires_on, status, created_at, updated_at`

func scanCredential(row userRowScanner) (storage.Credential, error) {
	var (
		credential storage.Credential
		issuedOn   string
		expiresOn  sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(
		&credential.ID, &credential.UserID, &credential.Title, &credential.Issuer,
		&credential.Number, &issuedOn, &expiresOn, &credential.Status,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return storage.Credential{}, err
	}
	if credential.IssuedOn, err = parseTime(issuedOn); err != nil {
		return storage.Credential{}, err
	}
	if credential.ExpiresOn, err = parseNullableTime(expiresOn); err != nil {
		return storage.Credential{}, err
	}
	if credential.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.Credential{}, err
	}
	if credential.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return storage.Credential{}, err
	}
	return credential, nil
}

// ListCredentials returns a user's credentials, most recently issued first.
func (s *Store) ListCredentials(ctx context.Context, userID int64) ([]storage.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE user_id = ?
		ORDER BY issued_on DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credentials := make([]storage.Credential, 0)
	for rows.Next() {
		credential, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, credential)
	}
	return credentials, rows.Err()
}

// GetCredential retrieves a credential by ID.
func (s *Store) GetCredential(ctx context.Context, id int64) (storage.Credential, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	credential, err := scanCredential(row)
	if err != nil {
		return storage.Credential{}, notFoundOn(err)
	}
	return credential, nil
}

// CreateCredential records a certification or license for a user.
func (s *Store) CreateCredential(ctx context.Context, input storage.CredentialInput) (storage.Credential, error) {
	if err := storage.ValidateCredentialInput(input); err != nil {
		return storage.Credential{}, err
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, input.UserID).Scan(&exists); err != nil {
		return storage.Credential{}, notFoundOn(err)
	}

	status := input.Status
	if status == "" {
		status = storage.CredentialActive
	}

	now := formatTime(s.now())
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, title, issuer, number, issued_on, expires_on, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.UserID, input.Title, input.Issuer, input.Number,
		formatTime(input.IssuedOn), formatNullableTime(input.ExpiresOn),
		status, now, now,
	)
	if err != nil {
		return storage.Credential{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.Credential{}, fmt.Errorf("credential insert id: %w", err)
	}
	return s.GetCredential(ctx, id)
}

// UpdateCredential merges the non-nil fields of the update into the record.
func (s *Store) UpdateCredential(ctx context.Context, id int64, update storage.CredentialUpdate) (storage.Credential, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
		credential, err := scanCredential(row)
		if err != nil {
			return notFoundOn(err)
		}

		if update.Title != nil {
			credential.Title = *update.Title
		}
		if update.Issuer != nil {
			credential.Issuer = *update.Issuer
		}
		if update.Number != nil {
			credential.Number = *update.Number
		}
		if update.IssuedOn != nil {
			credential.IssuedOn = *update.IssuedOn
		}
		if update.ExpiresOn != nil {
			credential.ExpiresOn = update.ExpiresOn
		}
		if update.Status != nil {
			credential.Status = *update.Status
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credentials SET title = ?, issuer = ?, number = ?, issued_on = ?,
				expires_on = ?, status = ?, updated_at = ?
			WHERE id = ?`,
			credential.Title, credential.Issuer, credential.Number,
			formatTime(credential.IssuedOn), formatNullableTime(credential.ExpiresOn),
			credential.Status, formatTime(s.now()), id,
		)
		return err
	})
	if err != nil {
		return storage.Credential{}, err
	}
	return s.GetCredential(ctx, id)
}

// DeleteCredential removes a credential record.
func (s *Store) DeleteCredential(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
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
