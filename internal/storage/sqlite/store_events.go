package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cpd-marketplace/internal/storage"
)

const eventColumns = `id, title, description, date, start_time, end_time, type,
	category, location, price, cpd_points, capacity, current_attendees,
	learning_outcomes, speakers, agenda, tags, created_at, updated_at`

func scanEvent(row userRowScanner) (storage.Event, error) {
	var (
		event        storage.Event
		date         string
		outcomesRaw  string
		speakersRaw  string
		agendaRaw    string
		tagsRaw      string
		createdAtRaw string
		updatedAtRaw string
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&date,
		&event.StartTime,
		&event.EndTime,
		&event.Type,
		&event.Category,
		&event.Location,
		&event.Price,
		&event.CpdPoints,
		&event.Capacity,
		&event.CurrentAttendees,
		&outcomesRaw,
		&speakersRaw,
		&agendaRaw,
		&tagsRaw,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		return storage.Event{}, err
	}

	if event.Date, err = parseTime(date); err != nil {
		return storage.Event{}, err
	}
	if err := decodeJSON(outcomesRaw, &event.LearningOutcomes); err != nil {
		return storage.Event{}, err
	}
	if err := decodeJSON(speakersRaw, &event.Speakers); err != nil {
		return storage.Event{}, err
	}
	if err := decodeJSON(agendaRaw, &event.Agenda); err != nil {
		return storage.Event{}, err
	}
	if err := decodeJSON(tagsRaw, &event.Tags); err != nil {
		return storage.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdAtRaw); err != nil {
		return storage.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAtRaw); err != nil {
		return storage.Event{}, err
	}
	return event, nil
}

// ListUpcomingEvents returns events dated at or after now, soonest first,
// capped to the dashboard limit.
func (s *Store) ListUpcomingEvents(ctx context.Context) ([]storage.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE date >= ?
		ORDER BY date, id
		LIMIT ?`,
		formatTime(s.now()), storage.UpcomingEventsLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListEvents returns events matching the filter, sorted ascending by date.
func (s *Store) ListEvents(ctx context.Context, filter storage.EventFilter) ([]storage.Event, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE 1=1`)
	args := make([]any, 0, 8)

	if filter.Search != "" {
		query.WriteString(` AND (title LIKE ? OR description LIKE ?)`)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(filter.Types) > 0 {
		query.WriteString(` AND type IN (` + placeholders(len(filter.Types)) + `)`)
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if len(filter.Categories) > 0 {
		query.WriteString(` AND category IN (` + placeholders(len(filter.Categories)) + `)`)
		for _, c := range filter.Categories {
			args = append(args, c)
		}
	}
	if start, end, ok := storage.DateBucketRange(s.now(), filter.Date); ok {
		query.WriteString(` AND date >= ? AND date < ?`)
		args = append(args, formatTime(start), formatTime(end))
	}
	if min, max, ok := storage.CpdBucketRange(filter.CpdPoints); ok {
		query.WriteString(` AND cpd_points >= ? AND cpd_points <= ?`)
		args = append(args, min, max)
	}
	query.WriteString(` ORDER BY date, id`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetEvent retrieves an event enriched with its ticket types.
func (s *Store) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		return storage.Event{}, notFoundOn(err)
	}

	event.TicketTypes, err = s.ticketTypesForEvent(ctx, id)
	if err != nil {
		return storage.Event{}, err
	}
	return event, nil
}

// CreateEvent validates input and inserts the event with its ticket tiers.
func (s *Store) CreateEvent(ctx context.Context, input storage.EventInput) (storage.Event, error) {
	if err := storage.ValidateEventInput(input); err != nil {
		return storage.Event{}, err
	}

	outcomes, err := encodeJSON(input.LearningOutcomes)
	if err != nil {
		return storage.Event{}, err
	}
	speakers, err := encodeJSON(input.Speakers)
	if err != nil {
		return storage.Event{}, err
	}
	agenda, err := encodeJSON(input.Agenda)
	if err != nil {
		return storage.Event{}, err
	}
	tags, err := encodeJSON(input.Tags)
	if err != nil {
		return storage.Event{}, err
	}

	var eventID int64
	now := formatTime(s.now())
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO events (title, description, date, start_time, end_time, type,
				category, location, price, cpd_points, capacity, current_attendees,
				learning_outcomes, speakers, agenda, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)`,
			input.Title, input.Description, formatTime(input.Date), input.StartTime,
			input.EndTime, input.Type, input.Category, input.Location, input.Price,
			input.CpdPoints, input.Capacity, outcomes, speakers, agenda, tags, now, now,
		)
		if err != nil {
			return err
		}
		if eventID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("event insert id: %w", err)
		}

		for _, ticket := range input.TicketTypes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ticket_types (event_id, name, price, sales_start, sales_end)
				VALUES (?, ?, ?, ?, ?)`,
				eventID, ticket.Name, ticket.Price,
				formatNullableTime(ticket.SalesStart), formatNullableTime(ticket.SalesEnd),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Event{}, err
	}
	return s.GetEvent(ctx, eventID)
}

// RegisterForEvent creates a registration and bumps the attendee counter in
// the same transaction.
func (s *Store) RegisterForEvent(ctx context.Context, userID, eventID, ticketTypeID int64, quantity int) (storage.EventRegistration, error) {
	if quantity <= 0 {
		return storage.EventRegistration{}, &storage.ValidationError{FieldErrors: map[string]string{"quantity": "quantity must be positive"}}
	}

	var registration storage.EventRegistration
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
			return notFoundOn(err)
		}

		var capacity, attendees int
		if err := tx.QueryRowContext(ctx, `SELECT capacity, current_attendees FROM events WHERE id = ?`, eventID).Scan(&capacity, &attendees); err != nil {
			return notFoundOn(err)
		}

		var (
			price      float64
			salesStart sql.NullString
			salesEnd   sql.NullString
		)
		err := tx.QueryRowContext(ctx, `
			SELECT price, sales_start, sales_end FROM ticket_types
			WHERE id = ? AND event_id = ?`, ticketTypeID, eventID,
		).Scan(&price, &salesStart, &salesEnd)
		if err != nil {
			return notFoundOn(err)
		}

		now := s.now()
		start, err := parseNullableTime(salesStart)
		if err != nil {
			return err
		}
		end, err := parseNullableTime(salesEnd)
		if err != nil {
			return err
		}
		if start != nil && now.Before(*start) {
			return storage.ErrTicketUnavailable
		}
		if end != nil && now.After(*end) {
			return storage.ErrTicketUnavailable
		}
		if capacity > 0 && attendees+quantity > capacity {
			return storage.ErrCapacityExceeded
		}

		registration = storage.EventRegistration{
			UserID:       userID,
			EventID:      eventID,
			TicketTypeID: ticketTypeID,
			Quantity:     quantity,
			TotalPrice:   price * float64(quantity),
			Status:       storage.RegistrationConfirmed,
			CreatedAt:    now,
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO event_registrations (user_id, event_id, ticket_type_id, quantity, total_price, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, eventID, ticketTypeID, quantity, registration.TotalPrice,
			registration.Status, formatTime(now),
		)
		if err != nil {
			return err
		}
		if registration.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("registration insert id: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE events SET current_attendees = current_attendees + ?, updated_at = ? WHERE id = ?`,
			quantity, formatTime(now), eventID,
		)
		return err
	})
	if err != nil {
		return storage.EventRegistration{}, err
	}
	return registration, nil
}

// ListRegistrationsForUser returns a user's registrations, newest first.
func (s *Store) ListRegistrationsForUser(ctx context.Context, userID int64) ([]storage.EventRegistration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, ticket_type_id, quantity, total_price, status, created_at
		FROM event_registrations
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]storage.EventRegistration, 0)
	for rows.Next() {
		var (
			registration storage.EventRegistration
			createdAt    string
		)
		err := rows.Scan(
			&registration.ID, &registration.UserID, &registration.EventID,
			&registration.TicketTypeID, &registration.Quantity,
			&registration.TotalPrice, &registration.Status, &createdAt,
		)
		if err != nil {
			return nil, err
		}
		if registration.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}
	return registrations, rows.Err()
}

func (s *Store) ticketTypesForEvent(ctx context.Context, eventID int64) ([]storage.TicketType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name, price, sales_start, sales_end
		FROM ticket_types WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]storage.TicketType, 0)
	for rows.Next() {
		var (
			ticket     storage.TicketType
			salesStart sql.NullString
			salesEnd   sql.NullString
		)
		if err := rows.Scan(&ticket.ID, &ticket.EventID, &ticket.Name, &ticket.Price, &salesStart, &salesEnd); err != nil {
			return nil, err
		}
		if ticket.SalesStart, err = parseNullableTime(salesStart); err != nil {
			return nil, err
		}
		if ticket.SalesEnd, err = parseNullableTime(salesEnd); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func collectEvents(rows *sql.Rows) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
