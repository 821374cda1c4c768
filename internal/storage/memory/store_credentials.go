package memory

import (
	"context"
	"sort"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- CredentialStore implementation ---

// ListCredentials returns a user's credentials, most recently issued first.
func (s *Store) ListCredentials(ctx context.Context, userID int64) ([]storage.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credentials := make([]storage.Credential, 0)
	for _, credential := range s.credentials {
		if credential.UserID == userID {
			credentials = append(credentials, credential)
		}
	}

	sort.Slice(credentials, func(i, j int) bool {
		if credentials[i].IssuedOn.Equal(credentials[j].IssuedOn) {
			return credentials[i].ID > credentials[j].ID
		}
		return credentials[i].IssuedOn.After(credentials[j].IssuedOn)
	})
	return credentials, nil
}

// GetCredential retrieves a credential by ID.
func (s *Store) GetCredential(ctx context.Context, id int64) (storage.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.credentials[id]
	if !ok {
		return storage.Credential{}, storage.ErrNotFound
	}
	return credential, nil
}

// CreateCredential validates and stores a credential for an existing user.
func (s *Store) CreateCredential(ctx context.Context, input storage.CredentialInput) (storage.Credential, error) {
	if err := storage.ValidateCredentialInput(input); err != nil {
		return storage.Credential{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[input.UserID]; !ok {
		return storage.Credential{}, storage.ErrNotFound
	}

	status := input.Status
	if status == "" {
		status = storage.CredentialActive
	}

	now := s.now()
	s.counters.credential++
	credential := storage.Credential{
		ID:        s.counters.credential,
		UserID:    input.UserID,
		Title:     input.Title,
		Issuer:    input.Issuer,
		Number:    input.Number,
		IssuedOn:  input.IssuedOn,
		ExpiresOn: input.ExpiresOn,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.credentials[credential.ID] = credential
	return credential, nil
}

// UpdateCredential merges the non-nil fields of the update into the stored
// record.
func (s *Store) UpdateCredential(ctx context.Context, id int64, update storage.CredentialUpdate) (storage.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, ok := s.credentials[id]
	if !ok {
		return storage.Credential{}, storage.ErrNotFound
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
	credential.UpdatedAt = s.now()

	s.credentials[id] = credential
	return credential, nil
}

// DeleteCredential removes a credential. Credentials are the only entity
// supporting hard deletion.
func (s *Store) DeleteCredential(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.credentials, id)
	return nil
}
