package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/cpd-marketplace/internal/storage"
)

type communityStore interface {
	ListForumCategories(ctx context.Context) ([]storage.ForumCategory, error)
	CreateForumCategory(ctx context.Context, name, description string) (storage.ForumCategory, error)
	ListTrendingDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error)
	ListRecentDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error)
	CreateDiscussion(ctx context.Context, input storage.DiscussionInput) (storage.Discussion, error)
	ListMentorshipOpportunities(ctx context.Context) ([]storage.MentorshipOpportunity, error)
	CreateMentorshipOpportunity(ctx context.Context, input storage.MentorshipInput) (storage.MentorshipOpportunity, error)
}

// discussionCacheTTL bounds how stale the trending/recent listings may get.
const discussionCacheTTL = 30 * time.Second

// CommunityHandler serves forum taxonomy, discussions, and mentorships.
// Discussion listings are cached briefly since they back every dashboard
// load.
type CommunityHandler struct {
	store     communityStore
	cache     *expirable.LRU[string, []storage.DiscussionSummary]
	responder responder
	logger    *slog.Logger
}

func NewCommunityHandler(store communityStore, logger *slog.Logger) *CommunityHandler {
	base := defaultLogger(logger)
	return &CommunityHandler{
		store:     store,
		cache:     expirable.NewLRU[string, []storage.DiscussionSummary](4, nil, discussionCacheTTL),
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *CommunityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CommunityHandler", operation, attrs...)
}

// ListCategories handles GET /community/categories.
func (h *CommunityHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListForumCategories(r.Context())
	if err != nil {
		h.log(r.Context(), "ListCategories").ErrorContext(r.Context(), "failed to list forum categories", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]forumCategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, forumCategoryDTO{
			ID:              category.ID,
			Name:            category.Name,
			Description:     category.Description,
			DiscussionCount: category.DiscussionCount,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// CreateCategory handles POST /community/categories. Restricted to resource
// persons.
func (h *CommunityHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.Role != storage.RoleResourcePerson {
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "only resource persons may create forum categories",
		})
		return
	}

	var req forumCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	category, err := h.store.CreateForumCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.log(r.Context(), "CreateCategory", "name", req.Name).ErrorContext(r.Context(), "failed to create forum category", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, forumCategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	})
}

// ListDiscussions handles GET /community/discussions?sort=trending|recent.
func (h *CommunityHandler) ListDiscussions(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = "recent"
	}

	var (
		summaries []storage.DiscussionSummary
		err       error
	)
	if cached, ok := h.cache.Get(sort); ok {
		summaries = cached
	} else {
		switch sort {
		case "trending":
			summaries, err = h.store.ListTrendingDiscussions(r.Context())
		case "recent":
			summaries, err = h.store.ListRecentDiscussions(r.Context())
		default:
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		if err != nil {
			h.log(r.Context(), "ListDiscussions", "sort", sort).ErrorContext(r.Context(), "failed to list discussions", "error", err, "error_kind", storage.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.cache.Add(sort, summaries)
	}

	dtos := make([]discussionDTO, 0, len(summaries))
	for _, summary := range summaries {
		dtos = append(dtos, toDiscussionDTO(summary))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// CreateDiscussion handles POST /community/discussions for the principal.
func (h *CommunityHandler) CreateDiscussion(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req discussionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateDiscussion", "user_id", principal.UserID, "category_id", req.CategoryID)
	discussion, err := h.store.CreateDiscussion(r.Context(), storage.DiscussionInput{
		AuthorID:   principal.UserID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create discussion", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	// New posts change both listings immediately.
	h.cache.Purge()

	logger.With("discussion_id", discussion.ID).InfoContext(r.Context(), "discussion created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, discussionDTO{
		ID:         discussion.ID,
		AuthorID:   discussion.AuthorID,
		CategoryID: discussion.CategoryID,
		Title:      discussion.Title,
		Body:       discussion.Body,
	})
}

// ListMentorships handles GET /mentorships.
func (h *CommunityHandler) ListMentorships(w http.ResponseWriter, r *http.Request) {
	opportunities, err := h.store.ListMentorshipOpportunities(r.Context())
	if err != nil {
		h.log(r.Context(), "ListMentorships").ErrorContext(r.Context(), "failed to list mentorships", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]mentorshipDTO, 0, len(opportunities))
	for _, opportunity := range opportunities {
		dtos = append(dtos, toMentorshipDTO(opportunity))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// CreateMentorship handles POST /mentorships. Restricted to resource persons.
func (h *CommunityHandler) CreateMentorship(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.Role != storage.RoleResourcePerson {
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "only resource persons may offer mentorships",
		})
		return
	}

	var req mentorshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateMentorship", "user_id", principal.UserID, "title", req.Title)
	opportunity, err := h.store.CreateMentorshipOpportunity(r.Context(), storage.MentorshipInput{
		AuthorID:       principal.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Specialties:    req.Specialties,
		MenteeCapacity: req.MenteeCapacity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create mentorship", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("mentorship_id", opportunity.ID).InfoContext(r.Context(), "mentorship created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMentorshipDTO(opportunity))
}

type forumCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type forumCategoryDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DiscussionCount int    `json:"discussion_count"`
}

type discussionRequest struct {
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

type discussionDTO struct {
	ID         int64             `json:"id"`
	AuthorID   int64             `json:"author_id"`
	CategoryID int64             `json:"category_id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Comments   int               `json:"comments"`
	Likes      int               `json:"likes"`
	Views      int               `json:"views"`
	Author     *authorSummaryDTO `json:"author,omitempty"`
	TimeAgo    string            `json:"time_ago,omitempty"`
}

type authorSummaryDTO struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Profession  string `json:"profession"`
}

func toDiscussionDTO(summary storage.DiscussionSummary) discussionDTO {
	return discussionDTO{
		ID:         summary.ID,
		AuthorID:   summary.AuthorID,
		CategoryID: summary.CategoryID,
		Title:      summary.Title,
		Body:       summary.Body,
		Comments:   summary.Comments,
		Likes:      summary.Likes,
		Views:      summary.Views,
		Author: &authorSummaryDTO{
			ID:          summary.Author.ID,
			DisplayName: summary.Author.DisplayName,
			Profession:  summary.Author.Profession,
		},
		TimeAgo: summary.TimeAgo,
	}
}

type mentorshipRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Specialties    []string `json:"specialties"`
	MenteeCapacity int      `json:"mentee_capacity"`
}

type mentorshipDTO struct {
	ID             int64    `json:"id"`
	AuthorID       int64    `json:"author_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Specialties    []string `json:"specialties"`
	MenteeCapacity int      `json:"mentee_capacity"`
	CurrentMentees int      `json:"current_mentees"`
	Available      bool     `json:"available"`
}

func toMentorshipDTO(opportunity storage.MentorshipOpportunity) mentorshipDTO {
	return mentorshipDTO{
		ID:             opportunity.ID,
		AuthorID:       opportunity.AuthorID,
		Title:          opportunity.Title,
		Description:    opportunity.Description,
		Specialties:    opportunity.Specialties,
		MenteeCapacity: opportunity.MenteeCapacity,
		CurrentMentees: opportunity.CurrentMentees,
		Available:      opportunity.Available,
	}
}
