package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

type cpdStore interface {
	GetCpdSummary(ctx context.Context, userID int64) (storage.CpdSummary, error)
	ListCpdActivities(ctx context.Context, userID int64, filter storage.CpdActivityFilter) ([]storage.CpdActivity, error)
	CreateCpdActivity(ctx context.Context, userID int64, input storage.CpdActivityInput) (storage.CpdActivity, error)
	VerifyCpdActivity(ctx context.Context, id int64, status storage.VerificationStatus) (storage.CpdActivity, error)
}

// CpdHandler serves continuing-education credit tracking for the principal.
type CpdHandler struct {
	store     cpdStore
	responder responder
	logger    *slog.Logger
}

func NewCpdHandler(store cpdStore, logger *slog.Logger) *CpdHandler {
	base := defaultLogger(logger)
	return &CpdHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *CpdHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CpdHandler", operation, attrs...)
}

// Summary handles GET /cpd/summary: verified points against the annual
// requirements, per category.
func (h *CpdHandler) Summary(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	summary, err := h.store.GetCpdSummary(r.Context(), principal.UserID)
	if err != nil {
		h.log(r.Context(), "Summary", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to get CPD summary", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCpdSummaryDTO(summary))
}

// ListActivities handles GET /cpd/activities with filter query parameters.
func (h *CpdHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	query := r.URL.Query()
	filter := storage.CpdActivityFilter{
		Year:   strings.TrimSpace(query.Get("year")),
		Search: strings.TrimSpace(query.Get("search")),
	}
	if raw := query.Get("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		filter.CategoryID = categoryID
	}

	activities, err := h.store.ListCpdActivities(r.Context(), principal.UserID, filter)
	if err != nil {
		h.log(r.Context(), "ListActivities", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list CPD activities", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]cpdActivityDTO, 0, len(activities))
	for _, activity := range activities {
		dtos = append(dtos, toCpdActivityDTO(activity))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// CreateActivity handles POST /cpd/activities.
func (h *CpdHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req cpdActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateActivity", "user_id", principal.UserID, "title", req.Title)
	activity, err := h.store.CreateCpdActivity(r.Context(), principal.UserID, storage.CpdActivityInput{
		Title:      req.Title,
		Provider:   req.Provider,
		Points:     req.Points,
		CategoryID: req.CategoryID,
		Date:       date,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create CPD activity", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("activity_id", activity.ID).InfoContext(r.Context(), "CPD activity logged")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCpdActivityDTO(activity))
}

// Verify handles POST /cpd/activities/{id}/verification. Restricted to
// resource persons, who review submitted activities.
func (h *CpdHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.Role != storage.RoleResourcePerson {
		h.log(r.Context(), "Verify", "error_kind", "forbidden").ErrorContext(r.Context(), "non resource person attempted activity verification")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "only resource persons may verify activities",
		})
		return
	}

	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	status := storage.VerificationStatus(req.Status)
	if status != storage.VerificationVerified && status != storage.VerificationRejected {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Verify", "activity_id", id, "actor_id", principal.UserID, "status", req.Status)
	activity, err := h.store.VerifyCpdActivity(r.Context(), id, status)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to verify CPD activity", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "CPD activity reviewed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCpdActivityDTO(activity))
}

type cpdActivityRequest struct {
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	Points     int    `json:"points"`
	CategoryID int64  `json:"category_id"`
	Date       string `json:"date"`
}

type verificationRequest struct {
	Status string `json:"status"`
}

type cpdActivityDTO struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	Points     int    `json:"points"`
	CategoryID int64  `json:"category_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

func toCpdActivityDTO(activity storage.CpdActivity) cpdActivityDTO {
	return cpdActivityDTO{
		ID:         activity.ID,
		Title:      activity.Title,
		Provider:   activity.Provider,
		Points:     activity.Points,
		CategoryID: activity.CategoryID,
		Date:       activity.Date.UTC().Format(time.RFC3339),
		Status:     string(activity.Status),
	}
}

type cpdSummaryDTO struct {
	TotalEarned   int                     `json:"total_earned"`
	TotalRequired int                     `json:"total_required"`
	Categories    []cpdCategorySummaryDTO `json:"categories"`
}

type cpdCategorySummaryDTO struct {
	CategoryID     int64  `json:"category_id"`
	Name           string `json:"name"`
	EarnedPoints   int    `json:"earned_points"`
	RequiredPoints int    `json:"required_points"`
}

func toCpdSummaryDTO(summary storage.CpdSummary) cpdSummaryDTO {
	dto := cpdSummaryDTO{
		TotalEarned:   summary.TotalEarned,
		TotalRequired: summary.TotalRequired,
	}
	for _, category := range summary.Categories {
		dto.Categories = append(dto.Categories, cpdCategorySummaryDTO{
			CategoryID:     category.Category.ID,
			Name:           category.Category.Name,
			EarnedPoints:   category.EarnedPoints,
			RequiredPoints: category.Category.RequiredPoints,
		})
	}
	return dto
}
