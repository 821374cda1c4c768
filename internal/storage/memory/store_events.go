package memory

import (
	"context"
	"sort"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- EventStore implementation ---

// ListUpcomingEvents returns events dated at or after now, soonest first,
// capped to the dashboard limit.
func (s *Store) ListUpcomingEvents(ctx context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	events := make([]storage.Event, 0)
	for _, event := range s.events {
		if event.Date.Before(now) {
			continue
		}
		events = append(events, cloneEvent(event))
	}

	sortEventsByDate(events)
	if len(events) > storage.UpcomingEventsLimit {
		events = events[:storage.UpcomingEventsLimit]
	}
	return events, nil
}

// ListEvents returns all events matching the filter, sorted ascending by
// date. The empty filter matches everything.
func (s *Store) ListEvents(ctx context.Context, filter storage.EventFilter) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	events := make([]storage.Event, 0)
	for _, event := range s.events {
		if !filter.Matches(now, event) {
			continue
		}
		events = append(events, cloneEvent(event))
	}

	sortEventsByDate(events)
	return events, nil
}

// GetEvent retrieves an event enriched with its ticket types.
func (s *Store) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return storage.Event{}, storage.ErrNotFound
	}

	enriched := cloneEvent(event)
	enriched.TicketTypes = s.ticketTypesForEventLocked(id)
	return enriched, nil
}

// CreateEvent validates input and stores the event with its ticket tiers.
func (s *Store) CreateEvent(ctx context.Context, input storage.EventInput) (storage.Event, error) {
	if err := storage.ValidateEventInput(input); err != nil {
		return storage.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.counters.event++
	event := storage.Event{
		ID:               s.counters.event,
		Title:            input.Title,
		Description:      input.Description,
		Date:             input.Date,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Type:             input.Type,
		Category:         input.Category,
		Location:         input.Location,
		Price:            input.Price,
		CpdPoints:        input.CpdPoints,
		Capacity:         input.Capacity,
		CurrentAttendees: 0,
		LearningOutcomes: cloneStrings(input.LearningOutcomes),
		Speakers:         append([]storage.Speaker(nil), input.Speakers...),
		Agenda:           append([]storage.AgendaItem(nil), input.Agenda...),
		Tags:             cloneStrings(input.Tags),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.events[event.ID] = event

	for _, ticket := range input.TicketTypes {
		s.counters.ticketType++
		s.ticketTypes[s.counters.ticketType] = storage.TicketType{
			ID:         s.counters.ticketType,
			EventID:    event.ID,
			Name:       ticket.Name,
			Price:      ticket.Price,
			SalesStart: ticket.SalesStart,
			SalesEnd:   ticket.SalesEnd,
		}
	}

	enriched := cloneEvent(event)
	enriched.TicketTypes = s.ticketTypesForEventLocked(event.ID)
	return enriched, nil
}

// RegisterForEvent creates a registration and bumps the event's attendee
// counter in the same critical section, so the counter always reflects
// exactly the registrations created.
func (s *Store) RegisterForEvent(ctx context.Context, userID, eventID, ticketTypeID int64, quantity int) (storage.EventRegistration, error) {
	if quantity <= 0 {
		vErr := &storage.ValidationError{FieldErrors: map[string]string{"quantity": "quantity must be positive"}}
		return storage.EventRegistration{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return storage.EventRegistration{}, storage.ErrNotFound
	}
	event, ok := s.events[eventID]
	if !ok {
		return storage.EventRegistration{}, storage.ErrNotFound
	}
	ticket, ok := s.ticketTypes[ticketTypeID]
	if !ok || ticket.EventID != eventID {
		return storage.EventRegistration{}, storage.ErrNotFound
	}

	now := s.now()
	if ticket.SalesStart != nil && now.Before(*ticket.SalesStart) {
		return storage.EventRegistration{}, storage.ErrTicketUnavailable
	}
	if ticket.SalesEnd != nil && now.After(*ticket.SalesEnd) {
		return storage.EventRegistration{}, storage.ErrTicketUnavailable
	}
	if event.Capacity > 0 && event.CurrentAttendees+quantity > event.Capacity {
		return storage.EventRegistration{}, storage.ErrCapacityExceeded
	}

	s.counters.registration++
	registration := storage.EventRegistration{
		ID:           s.counters.registration,
		UserID:       userID,
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		Quantity:     quantity,
		TotalPrice:   ticket.Price * float64(quantity),
		Status:       storage.RegistrationConfirmed,
		CreatedAt:    now,
	}
	s.registrations[registration.ID] = registration

	event.CurrentAttendees += quantity
	event.UpdatedAt = now
	s.events[eventID] = event

	return registration, nil
}

// ListRegistrationsForUser returns a user's registrations, newest first.
func (s *Store) ListRegistrationsForUser(ctx context.Context, userID int64) ([]storage.EventRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registrations := make([]storage.EventRegistration, 0)
	for _, registration := range s.registrations {
		if registration.UserID == userID {
			registrations = append(registrations, registration)
		}
	}

	sort.Slice(registrations, func(i, j int) bool {
		if registrations[i].CreatedAt.Equal(registrations[j].CreatedAt) {
			return registrations[i].ID > registrations[j].ID
		}
		return registrations[i].CreatedAt.After(registrations[j].CreatedAt)
	})
	return registrations, nil
}

func (s *Store) ticketTypesForEventLocked(eventID int64) []storage.TicketType {
	tickets := make([]storage.TicketType, 0)
	for _, ticket := range s.ticketTypes {
		if ticket.EventID == eventID {
			tickets = append(tickets, ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets
}

func sortEventsByDate(events []storage.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
}
