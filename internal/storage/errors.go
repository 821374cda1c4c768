package storage

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrAlreadyExists is returned when a create collides with an existing
	// unique attribute such as a username.
	ErrAlreadyExists = errors.New("storage: already exists")
	// ErrAlreadyEnrolled is returned when a user already holds an enrollment
	// for the requested course.
	ErrAlreadyEnrolled = errors.New("storage: already enrolled")
	// ErrInvalidCredentials is returned when the supplied current password
	// does not match the stored hash.
	ErrInvalidCredentials = errors.New("storage: invalid credentials")
	// ErrTicketUnavailable is returned when a registration references a
	// ticket type outside its sales window.
	ErrTicketUnavailable = errors.New("storage: ticket type unavailable")
	// ErrCapacityExceeded is returned when a registration would push an
	// event past its attendee capacity.
	ErrCapacityExceeded = errors.New("storage: event capacity exceeded")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTicketUnavailable):
		return "ticket_unavailable"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
