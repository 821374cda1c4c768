package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

type eventStore interface {
	ListUpcomingEvents(ctx context.Context) ([]storage.Event, error)
	ListEvents(ctx context.Context, filter storage.EventFilter) ([]storage.Event, error)
	GetEvent(ctx context.Context, id int64) (storage.Event, error)
	CreateEvent(ctx context.Context, input storage.EventInput) (storage.Event, error)
	RegisterForEvent(ctx context.Context, userID, eventID, ticketTypeID int64, quantity int) (storage.EventRegistration, error)
}

// EventHandler serves the event catalog and registrations.
type EventHandler struct {
	store     eventStore
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(store eventStore, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{store: store, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

// List handles GET /events with optional filter query parameters.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := eventFilterFromQuery(r)

	events, err := h.store.ListEvents(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list events", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// ListUpcoming handles GET /events/upcoming: the dashboard strip of at most
// four future events.
func (h *EventHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListUpcomingEvents(r.Context())
	if err != nil {
		h.log(r.Context(), "ListUpcoming").ErrorContext(r.Context(), "failed to list upcoming events", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Get handles GET /events/{id}, ticket types included.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "event_id", id).ErrorContext(r.Context(), "failed to get event", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

// Create handles POST /events. Restricted to resource persons.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.Role != storage.RoleResourcePerson {
		h.log(r.Context(), "Create", "error_kind", "forbidden").ErrorContext(r.Context(), "non resource person attempted event creation")
		h.responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "only resource persons may create events",
		})
		return
	}

	var req eventCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "title", req.Title, "actor_id", principal.UserID)
	event, err := h.store.CreateEvent(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create event", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

// Register handles POST /events/{id}/registrations for the principal.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
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

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register", "event_id", id, "user_id", principal.UserID)
	registration, err := h.store.RegisterForEvent(r.Context(), principal.UserID, id, req.TicketTypeID, req.Quantity)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to register for event", "error", err, "error_kind", storage.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("registration_id", registration.ID).InfoContext(r.Context(), "registration created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRegistrationDTO(registration))
}

func eventFilterFromQuery(r *http.Request) storage.EventFilter {
	query := r.URL.Query()
	filter := storage.EventFilter{
		Search:    strings.TrimSpace(query.Get("search")),
		Date:      storage.DateBucket(query.Get("date")),
		CpdPoints: storage.CpdBucket(query.Get("cpd_points")),
	}
	for _, value := range query["type"] {
		if value != "" {
			filter.Types = append(filter.Types, storage.EventType(value))
		}
	}
	for _, value := range query["category"] {
		if value != "" {
			filter.Categories = append(filter.Categories, value)
		}
	}
	return filter
}

type eventCreateRequest struct {
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Date             string               `json:"date"`
	StartTime        string               `json:"start_time"`
	EndTime          string               `json:"end_time"`
	Type             string               `json:"type"`
	Category         string               `json:"category"`
	Location         string               `json:"location"`
	Price            float64              `json:"price"`
	CpdPoints        int                  `json:"cpd_points"`
	Capacity         int                  `json:"capacity"`
	LearningOutcomes []string             `json:"learning_outcomes"`
	Speakers         []storage.Speaker    `json:"speakers"`
	Agenda           []storage.AgendaItem `json:"agenda"`
	Tags             []string             `json:"tags"`
	TicketTypes      []ticketTypeRequest  `json:"ticket_types"`
}

type ticketTypeRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	SalesStart *string `json:"sales_start"`
	SalesEnd   *string `json:"sales_end"`
}

func (req eventCreateRequest) toInput() (storage.EventInput, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return storage.EventInput{}, errBadRequestBody
	}

	tickets := make([]storage.TicketTypeInput, 0, len(req.TicketTypes))
	for _, ticket := range req.TicketTypes {
		input := storage.TicketTypeInput{Name: ticket.Name, Price: ticket.Price}
		if input.SalesStart, err = parseOptionalTime(ticket.SalesStart); err != nil {
			return storage.EventInput{}, errBadRequestBody
		}
		if input.SalesEnd, err = parseOptionalTime(ticket.SalesEnd); err != nil {
			return storage.EventInput{}, errBadRequestBody
		}
		tickets = append(tickets, input)
	}

	return storage.EventInput{
		Title:            req.Title,
		Description:      req.Description,
		Date:             date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Type:             storage.EventType(req.Type),
		Category:         req.Category,
		Location:         req.Location,
		Price:            req.Price,
		CpdPoints:        req.CpdPoints,
		Capacity:         req.Capacity,
		LearningOutcomes: req.LearningOutcomes,
		Speakers:         req.Speakers,
		Agenda:           req.Agenda,
		Tags:             req.Tags,
		TicketTypes:      tickets,
	}, nil
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type registrationRequest struct {
	TicketTypeID int64 `json:"ticket_type_id"`
	Quantity     int   `json:"quantity"`
}

type eventDTO struct {
	ID               int64                `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Date             string               `json:"date"`
	StartTime        string               `json:"start_time"`
	EndTime          string               `json:"end_time"`
	Type             string               `json:"type"`
	Category         string               `json:"category"`
	Location         string               `json:"location"`
	Price            float64              `json:"price"`
	CpdPoints        int                  `json:"cpd_points"`
	Capacity         int                  `json:"capacity"`
	CurrentAttendees int                  `json:"current_attendees"`
	LearningOutcomes []string             `json:"learning_outcomes"`
	Speakers         []storage.Speaker    `json:"speakers"`
	Agenda           []storage.AgendaItem `json:"agenda"`
	Tags             []string             `json:"tags"`
	TicketTypes      []ticketTypeDTO      `json:"ticket_types,omitempty"`
}

type ticketTypeDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	SalesStart string  `json:"sales_start,omitempty"`
	SalesEnd   string  `json:"sales_end,omitempty"`
}

func toEventDTO(event storage.Event) eventDTO {
	dto := eventDTO{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		Date:             event.Date.UTC().Format(time.RFC3339),
		StartTime:        event.StartTime,
		EndTime:          event.EndTime,
		Type:             string(event.Type),
		Category:         event.Category,
		Location:         event.Location,
		Price:            event.Price,
		CpdPoints:        event.CpdPoints,
		Capacity:         event.Capacity,
		CurrentAttendees: event.CurrentAttendees,
		LearningOutcomes: event.LearningOutcomes,
		Speakers:         event.Speakers,
		Agenda:           event.Agenda,
		Tags:             event.Tags,
	}
	for _, ticket := range event.TicketTypes {
		ticketDTO := ticketTypeDTO{ID: ticket.ID, Name: ticket.Name, Price: ticket.Price}
		if ticket.SalesStart != nil {
			ticketDTO.SalesStart = ticket.SalesStart.UTC().Format(time.RFC3339)
		}
		if ticket.SalesEnd != nil {
			ticketDTO.SalesEnd = ticket.SalesEnd.UTC().Format(time.RFC3339)
		}
		dto.TicketTypes = append(dto.TicketTypes, ticketDTO)
	}
	return dto
}
