package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

type credentialStore interface {
	ListCredentials(ctx context.Context, userID int64) ([]storage.Credential, error)
	GetCredential(ctx context.Context, id int64) (storage.Credential, error)
	CreateCredential(ctx context.Context, input storage.CredentialInput) (storage.Credential, error)
	UpdateCredential(ctx context.Context, id int64, update storage.CredentialUpdate) (storage.Credential, error)
	DeleteCredential(ctx context.Context, id int64) error
}

// CredentialHandler serves the principal's professional credential records.
type CredentialHandler struct {
	store     credentialStore
	responder responder
	logger    *slog.Logger
}

func NewCredentialHandler(store credentialStore, logger *slog.Logger) *CredentialHandler {
	base := defaultLogger(logger)
	return &CredentialHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *CredentialHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CredentialHandler", operation, attrs...)
}

// List handles GET /credentials for the principal.
func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	credentials, err := h.store.ListCredentials(r.Context(), principal.UserID)
	if err != nil {
		h.log(r.Context(), "List", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list credentials", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]credentialDTO, 0, len(credentials))
	for _, credential := range credentials {
		dtos = append(dtos, toCredentialDTO(credential))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create handles POST /credentials for the principal.
func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	issuedOn, err := time.Parse(time.RFC3339, req.IssuedOn)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	expiresOn, err := parseOptionalTime(req.ExpiresOn)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "user_id", principal.UserID, "title", req.Title)
	credential, err := h.store.CreateCredential(r.Context(), storage.CredentialInput{
		UserID:    principal.UserID,
		Title:     req.Title,
		Issuer:    req.Issuer,
		Number:    req.Number,
		IssuedOn:  issuedOn,
		ExpiresOn: expiresOn,
		Status:    storage.CredentialStatus(req.Status),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create credential", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("credential_id", credential.ID).InfoContext(r.Context(), "credential created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCredentialDTO(credential))
}

// Get handles GET /credentials/{id}.
func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	credential, ok := h.ownedCredential(w, r, "Get")
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCredentialDTO(credential))
}

// Update handles PUT /credentials/{id}: a partial merge.
func (h *CredentialHandler) Update(w http.ResponseWriter, r *http.Request) {
	credential, ok := h.ownedCredential(w, r, "Update")
	if !ok {
		return
	}

	var req credentialUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	update := storage.CredentialUpdate{
		Title:  req.Title,
		Issuer: req.Issuer,
		Number: req.Number,
	}
	if req.IssuedOn != nil {
		issuedOn, err := time.Parse(time.RFC3339, *req.IssuedOn)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		update.IssuedOn = &issuedOn
	}
	if req.ExpiresOn != nil {
		expiresOn, err := parseOptionalTime(req.ExpiresOn)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		update.ExpiresOn = expiresOn
	}
	if req.Status != nil {
		status := storage.CredentialStatus(*req.Status)
		update.Status = &status
	}

	updated, err := h.store.UpdateCredential(r.Context(), credential.ID, update)
	if err != nil {
		h.log(r.Context(), "Update", "credential_id", credential.ID).ErrorContext(r.Context(), "failed to update credential", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCredentialDTO(updated))
}

// Delete handles DELETE /credentials/{id}.
func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	credential, ok := h.ownedCredential(w, r, "Delete")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Delete", "credential_id", credential.ID)
	if err := h.store.DeleteCredential(r.Context(), credential.ID); err != nil {
		logger.ErrorContext(r.Context(), "failed to delete credential", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "credential deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ownedCredential resolves the path identifier and checks the principal owns
// the record.
func (h *CredentialHandler) ownedCredential(w http.ResponseWriter, r *http.Request, operation string) (storage.Credential, bool) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return storage.Credential{}, false
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return storage.Credential{}, false
	}

	credential, err := h.store.GetCredential(r.Context(), id)
	if err != nil {
		h.log(r.Context(), operation, "credential_id", id).ErrorContext(r.Context(), "failed to get credential", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return storage.Credential{}, false
	}
	if credential.UserID != principal.UserID {
		h.log(r.Context(), operation, "credential_id", id, "error_kind", "forbidden").ErrorContext(r.Context(), "principal does not own credential")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "you may only manage your own credentials",
		})
		return storage.Credential{}, false
	}
	return credential, true
}

type credentialRequest struct {
	Title     string  `json:"title"`
	Issuer    string  `json:"issuer"`
	Number    string  `json:"number"`
	IssuedOn  string  `json:"issued_on"`
	ExpiresOn *string `json:"expires_on"`
	Status    string  `json:"status"`
}

type credentialUpdateRequest struct {
	Title     *string `json:"title"`
	Issuer    *string `json:"issuer"`
	Number    *string `json:"number"`
	IssuedOn  *string `json:"issued_on"`
	ExpiresOn *string `json:"expires_on"`
	Status    *string `json:"status"`
}

type credentialDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Issuer    string `json:"issuer"`
	Number    string `json:"number,omitempty"`
	IssuedOn  string `json:"issued_on"`
	ExpiresOn string `json:"expires_on,omitempty"`
	Status    string `json:"status"`
}

func toCredentialDTO(credential storage.Credential) credentialDTO {
	dto := credentialDTO{
		ID:       credential.ID,
		Title:    credential.Title,
		Issuer:   credential.Issuer,
		Number:   credential.Number,
		IssuedOn: credential.IssuedOn.UTC().Format(time.RFC3339),
		Status:   string(credential.Status),
	}
	if credential.ExpiresOn != nil {
		dto.ExpiresOn = credential.ExpiresOn.UTC().Format(time.RFC3339)
	}
	return dto
}
