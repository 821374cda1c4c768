package storage

import (
	"net/mail"
	"strings"
)

// ValidateUserInput checks the attributes required to create an account.
func ValidateUserInput(input UserInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Username) == "" {
		vErr.add("username", "username is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if input.Role != "" && input.Role != RoleUser && input.Role != RoleResourcePerson {
		vErr.add("role", "role is invalid")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateEventInput checks the attributes required to publish an event.
func ValidateEventInput(input EventInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	switch input.Type {
	case EventInPerson, EventVirtual, EventHybrid:
	default:
		vErr.add("type", "type is invalid")
	}
	if input.CpdPoints < 0 {
		vErr.add("cpd_points", "cpd points must not be negative")
	}
	if input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must not be negative")
	}
	for _, ticket := range input.TicketTypes {
		if strings.TrimSpace(ticket.Name) == "" {
			vErr.add("ticket_types", "ticket type name is required")
			break
		}
		if ticket.Price < 0 {
			vErr.add("ticket_types", "ticket price must not be negative")
			break
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateCourseInput checks the attributes required to publish a course.
func ValidateCourseInput(input CourseInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	switch input.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		vErr.add("difficulty", "difficulty is invalid")
	}
	if input.CpdPoints < 0 {
		vErr.add("cpd_points", "cpd points must not be negative")
	}
	if input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateCpdActivityInput checks a submitted CPD activity.
func ValidateCpdActivityInput(input CpdActivityInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Points <= 0 {
		vErr.add("points", "points must be positive")
	}
	if input.CategoryID == 0 {
		vErr.add("category_id", "category is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateDiscussionInput checks a new forum post.
func ValidateDiscussionInput(input DiscussionInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		vErr.add("body", "body is required")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateMentorshipInput checks a new mentorship offering.
func ValidateMentorshipInput(input MentorshipInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.MenteeCapacity <= 0 {
		vErr.add("mentee_capacity", "mentee capacity must be positive")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ValidateCredentialInput checks a submitted credential record.
func ValidateCredentialInput(input CredentialInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.Issuer) == "" {
		vErr.add("issuer", "issuer is required")
	}
	if input.IssuedOn.IsZero() {
		vErr.add("issued_on", "issue date is required")
	}
	switch input.Status {
	case "", CredentialActive, CredentialExpired, CredentialPending, CredentialRevoked:
	default:
		vErr.add("status", "status is invalid")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
