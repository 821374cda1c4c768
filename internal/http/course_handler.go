package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/cpd-marketplace/internal/storage"
)

type courseStore interface {
	ListCourses(ctx context.Context, filter storage.CourseFilter) ([]storage.Course, error)
	GetCourse(ctx context.Context, id int64) (storage.Course, error)
	GetCourseForUser(ctx context.Context, id, userID int64) (storage.CourseDetail, error)
	CreateCourse(ctx context.Context, input storage.CourseInput) (storage.Course, error)
	EnrollInCourse(ctx context.Context, userID, courseID int64) (storage.CourseEnrollment, error)
	UpdateCourseProgress(ctx context.Context, userID, courseID int64, completedLessons []string) (storage.CourseEnrollment, error)
}

// CourseHandler serves the self-paced course catalog and enrollments.
type CourseHandler struct {
	store     courseStore
	responder responder
	logger    *slog.Logger
}

func NewCourseHandler(store courseStore, logger *slog.Logger) *CourseHandler {
	base := defaultLogger(logger)
	return &CourseHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *CourseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CourseHandler", operation, attrs...)
}

// List handles GET /courses with optional filter query parameters.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := courseFilterFromQuery(r)

	courses, err := h.store.ListCourses(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list courses", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		dtos = append(dtos, toCourseDTO(course))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Get handles GET /courses/{id}. An authenticated caller with an enrollment
// additionally receives their progress; anonymous callers get the course
// alone.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	if principal, ok := PrincipalFromContext(r.Context()); ok {
		detail, err := h.store.GetCourseForUser(r.Context(), id, principal.UserID)
		if err != nil {
			h.log(r.Context(), "Get", "course_id", id).ErrorContext(r.Context(), "failed to get course", "error", err, "error_kind", storage.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseDetailDTO(detail))
		return
	}

	course, err := h.store.GetCourse(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "course_id", id).ErrorContext(r.Context(), "failed to get course", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCourseDTO(course))
}

// Create handles POST /courses. Restricted to resource persons.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.Role != storage.RoleResourcePerson {
		h.log(r.Context(), "Create", "error_kind", "forbidden").ErrorContext(r.Context(), "non resource person attempted course creation")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "only resource persons may create courses",
		})
		return
	}

	var req courseCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "title", req.Title, "actor_id", principal.UserID)
	course, err := h.store.CreateCourse(r.Context(), storage.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  storage.Difficulty(req.Difficulty),
		Instructor:  req.Instructor,
		Price:       req.Price,
		CpdPoints:   req.CpdPoints,
		Curriculum:  req.Curriculum,
		Tags:        req.Tags,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create course", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("course_id", course.ID).InfoContext(r.Context(), "course created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCourseDTO(course))
}

// Enroll handles POST /courses/{id}/enrollments for the principal.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "Enroll", "course_id", id, "user_id", principal.UserID)
	enrollment, err := h.store.EnrollInCourse(r.Context(), principal.UserID, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to enroll in course", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("enrollment_id", enrollment.ID).InfoContext(r.Context(), "enrollment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEnrollmentDTO(enrollment))
}

// UpdateProgress handles PUT /courses/{id}/progress for the principal.
func (h *CourseHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req progressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateProgress", "course_id", id, "user_id", principal.UserID)
	enrollment, err := h.store.UpdateCourseProgress(r.Context(), principal.UserID, id, req.CompletedLessons)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update course progress", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEnrollmentDTO(enrollment))
}

func courseFilterFromQuery(r *http.Request) storage.CourseFilter {
	query := r.URL.Query()
	filter := storage.CourseFilter{
		Search:    strings.TrimSpace(query.Get("search")),
		CpdPoints: storage.CpdBucket(query.Get("cpd_points")),
	}
	for _, value := range query["category"] {
		if value != "" {
			filter.Categories = append(filter.Categories, value)
		}
	}
	for _, value := range query["difficulty"] {
		if value != "" {
			filter.Difficulties = append(filter.Difficulties, storage.Difficulty(value))
		}
	}
	return filter
}

type courseCreateRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Difficulty  string                 `json:"difficulty"`
	Instructor  string                 `json:"instructor"`
	Price       float64                `json:"price"`
	CpdPoints   int                    `json:"cpd_points"`
	Curriculum  []storage.CourseModule `json:"curriculum"`
	Tags        []string               `json:"tags"`
}

type progressUpdateRequest struct {
	CompletedLessons []string `json:"completed_lessons"`
}

type courseDTO struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Difficulty  string                 `json:"difficulty"`
	Instructor  string                 `json:"instructor"`
	Price       float64                `json:"price"`
	CpdPoints   int                    `json:"cpd_points"`
	ModuleCount int                    `json:"module_count"`
	LessonCount int                    `json:"lesson_count"`
	Curriculum  []storage.CourseModule `json:"curriculum"`
	Tags        []string               `json:"tags"`
	Progress    *progressDTO           `json:"progress,omitempty"`
}

type progressDTO struct {
	Status       string `json:"status"`
	Percentage   int    `json:"percentage"`
	LastAccessed string `json:"last_accessed"`
}

func toCourseDTO(course storage.Course) courseDTO {
	return courseDTO{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
		Difficulty:  string(course.Difficulty),
		Instructor:  course.Instructor,
		Price:       course.Price,
		CpdPoints:   course.CpdPoints,
		ModuleCount: course.ModuleCount,
		LessonCount: course.LessonCount,
		Curriculum:  course.Curriculum,
		Tags:        course.Tags,
	}
}

func toCourseDetailDTO(detail storage.CourseDetail) courseDTO {
	dto := toCourseDTO(detail.Course)
	if detail.Progress != nil {
		dto.Progress = &progressDTO{
			Status:       string(detail.Progress.Status),
			Percentage:   detail.Progress.Percentage,
			LastAccessed: detail.Progress.LastAccessed,
		}
	}
	return dto
}
