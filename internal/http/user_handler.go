package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

type userStore interface {
	GetUser(ctx context.Context, id int64) (storage.User, error)
	CreateUser(ctx context.Context, input storage.UserInput) (storage.User, error)
	UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (storage.User, error)
	UpdatePrivacySettings(ctx context.Context, id int64, update storage.PrivacyUpdate) (storage.User, error)
	ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	ListResourcePersons(ctx context.Context) ([]storage.User, error)
	ListRegistrationsForUser(ctx context.Context, userID int64) ([]storage.EventRegistration, error)
	ListEnrollmentsForUser(ctx context.Context, userID int64) ([]storage.CourseEnrollment, error)
}

// UserHandler serves account registration, profiles, and per-user listings.
type UserHandler struct {
	store     userStore
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(store userStore, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// List handles GET /users: the resource person directory.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListResourcePersons(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list resource persons", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toPublicUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create handles POST /users: account registration.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "username", req.Username)
	user, err := h.store.CreateUser(r.Context(), storage.UserInput{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Password:     req.Password,
		Role:         storage.Role(req.Role),
		Profession:   req.Profession,
		Bio:          req.Bio,
		Organization: req.Organization,
		Location:     req.Location,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create user", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "user created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toUserDTO(user))
}

// Get handles GET /users/{id}. The requesting principal sees their own full
// profile; anyone else sees only fields the privacy settings expose.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "user_id", id).ErrorContext(r.Context(), "failed to get user", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if principal, ok := PrincipalFromContext(r.Context()); ok && principal.UserID == id {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPublicUserDTO(user))
}

// Update handles PUT /users/{id}: a partial profile update for the principal.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSelf(w, r, "Update")
	if !ok {
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, storage.UserUpdate{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Profession:   req.Profession,
		Bio:          req.Bio,
		Organization: req.Organization,
		Location:     req.Location,
	})
	if err != nil {
		h.log(r.Context(), "Update", "user_id", id).ErrorContext(r.Context(), "failed to update user", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// UpdatePrivacy handles PUT /users/{id}/privacy.
func (h *UserHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSelf(w, r, "UpdatePrivacy")
	if !ok {
		return
	}

	var req privacyUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.store.UpdatePrivacySettings(r.Context(), id, storage.PrivacyUpdate{
		ShowEmail:        req.ShowEmail,
		ShowProfession:   req.ShowProfession,
		ShowOrganization: req.ShowOrganization,
		ShowLocation:     req.ShowLocation,
		AllowMessages:    req.AllowMessages,
	})
	if err != nil {
		h.log(r.Context(), "UpdatePrivacy", "user_id", id).ErrorContext(r.Context(), "failed to update privacy settings", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// UpdatePassword handles PUT /users/{id}/password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSelf(w, r, "UpdatePassword")
	if !ok {
		return
	}

	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdatePassword", "user_id", id)
	if err := h.store.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		logger.ErrorContext(r.Context(), "failed to change password", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password changed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListRegistrations handles GET /users/{id}/registrations.
func (h *UserHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSelf(w, r, "ListRegistrations")
	if !ok {
		return
	}

	registrations, err := h.store.ListRegistrationsForUser(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "ListRegistrations", "user_id", id).ErrorContext(r.Context(), "failed to list registrations", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]registrationDTO, 0, len(registrations))
	for _, registration := range registrations {
		dtos = append(dtos, toRegistrationDTO(registration))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// ListEnrollments handles GET /users/{id}/enrollments.
func (h *UserHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireSelf(w, r, "ListEnrollments")
	if !ok {
		return
	}

	enrollments, err := h.store.ListEnrollmentsForUser(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "ListEnrollments", "user_id", id).ErrorContext(r.Context(), "failed to list enrollments", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]enrollmentDTO, 0, len(enrollments))
	for _, enrollment := range enrollments {
		dtos = append(dtos, toEnrollmentDTO(enrollment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// requireSelf resolves the path identifier and rejects requests whose
// principal does not own the resource.
func (h *UserHandler) requireSelf(w http.ResponseWriter, r *http.Request, operation string) (int64, bool) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return 0, false
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.UserID != id {
		h.log(r.Context(), operation, "user_id", id, "error_kind", "forbidden").ErrorContext(r.Context(), "principal does not own resource")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "you may only manage your own account",
		})
		return 0, false
	}
	return id, true
}

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Profession   string `json:"profession"`
	Bio          string `json:"bio"`
	Organization string `json:"organization"`
	Location     string `json:"location"`
}

type profileUpdateRequest struct {
	Email        *string `json:"email"`
	DisplayName  *string `json:"display_name"`
	Profession   *string `json:"profession"`
	Bio          *string `json:"bio"`
	Organization *string `json:"organization"`
	Location     *string `json:"location"`
}

type privacyUpdateRequest struct {
	ShowEmail        *bool `json:"show_email"`
	ShowProfession   *bool `json:"show_profession"`
	ShowOrganization *bool `json:"show_organization"`
	ShowLocation     *bool `json:"show_location"`
	AllowMessages    *bool `json:"allow_messages"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userDTO struct {
	ID           int64                    `json:"id"`
	Username     string                   `json:"username"`
	Email        string                   `json:"email,omitempty"`
	DisplayName  string                   `json:"display_name"`
	Role         string                   `json:"role"`
	Profession   string                   `json:"profession,omitempty"`
	Bio          string                   `json:"bio,omitempty"`
	Organization string                   `json:"organization,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Privacy      *storage.PrivacySettings `json:"privacy,omitempty"`
	Online       bool                     `json:"online"`
	LastSeenAt   string                   `json:"last_seen_at,omitempty"`
}

// toUserDTO renders the owner's view, privacy settings included.
func toUserDTO(user storage.User) userDTO {
	privacy := user.Privacy
	dto := userDTO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         string(user.Role),
		Profession:   user.Profession,
		Bio:          user.Bio,
		Organization: user.Organization,
		Location:     user.Location,
		Privacy:      &privacy,
		Online:       user.Online,
	}
	if !user.LastSeenAt.IsZero() {
		dto.LastSeenAt = user.LastSeenAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

// toPublicUserDTO renders the view other users see: fields are dropped when
// the owner's privacy settings hide them.
func toPublicUserDTO(user storage.User) userDTO {
	dto := userDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Bio:         user.Bio,
		Online:      user.Online,
	}
	if user.Privacy.ShowEmail {
		dto.Email = user.Email
	}
	if user.Privacy.ShowProfession {
		dto.Profession = user.Profession
	}
	if user.Privacy.ShowOrganization {
		dto.Organization = user.Organization
	}
	if user.Privacy.ShowLocation {
		dto.Location = user.Location
	}
	if !user.LastSeenAt.IsZero() {
		dto.LastSeenAt = user.LastSeenAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

type registrationDTO struct {
	ID           int64   `json:"id"`
	EventID      int64   `json:"event_id"`
	TicketTypeID int64   `json:"ticket_type_id"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"total_price"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

func toRegistrationDTO(registration storage.EventRegistration) registrationDTO {
	return registrationDTO{
		ID:           registration.ID,
		EventID:      registration.EventID,
		TicketTypeID: registration.TicketTypeID,
		Quantity:     registration.Quantity,
		TotalPrice:   registration.TotalPrice,
		Status:       string(registration.Status),
		CreatedAt:    registration.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type enrollmentDTO struct {
	ID               int64    `json:"id"`
	CourseID         int64    `json:"course_id"`
	Progress         int      `json:"progress"`
	Status           string   `json:"status"`
	CompletedLessons []string `json:"completed_lessons"`
	LastAccessedAt   string   `json:"last_accessed_at,omitempty"`
	EnrolledAt       string   `json:"enrolled_at"`
}

func toEnrollmentDTO(enrollment storage.CourseEnrollment) enrollmentDTO {
	dto := enrollmentDTO{
		ID:               enrollment.ID,
		CourseID:         enrollment.CourseID,
		Progress:         enrollment.Progress,
		Status:           string(enrollment.Status),
		CompletedLessons: enrollment.CompletedLessons,
		EnrolledAt:       enrollment.EnrolledAt.UTC().Format(time.RFC3339Nano),
	}
	if !enrollment.LastAccessedAt.IsZero() {
		dto.LastAccessedAt = enrollment.LastAccessedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
