package storage

import (
	"errors"
	"testing"
	"time"
)

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()

	if field == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want a validation error on %q", err, field)
	}
	if _, ok := vErr.FieldErrors[field]; !ok {
		t.Fatalf("field errors = %v, want an entry for %q", vErr.FieldErrors, field)
	}
}

func TestValidateUserInput(t *testing.T) {
	valid := UserInput{
		Username:    "amara.osei",
		Email:       "amara.osei@example.org",
		DisplayName: "Dr. Amara Osei",
		Password:    "orchid-river-9",
	}

	tests := []struct {
		name      string
		mutate    func(*UserInput)
		wantField string
	}{
		{"valid input", func(*UserInput) {}, ""},
		{"missing username", func(in *UserInput) { in.Username = "  " }, "username"},
		{"missing email", func(in *UserInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *UserInput) { in.Email = "not-an-address" }, "email"},
		{"missing display name", func(in *UserInput) { in.DisplayName = "" }, "display_name"},
		{"short password", func(in *UserInput) { in.Password = "short" }, "password"},
		{"unknown role", func(in *UserInput) { in.Role = "admin" }, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assertFieldError(t, ValidateUserInput(input), tt.wantField)
		})
	}
}

func TestValidateEventInput(t *testing.T) {
	valid := EventInput{
		Title:       "Documentation Workshop",
		Date:        time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		Type:        EventVirtual,
		CpdPoints:   3,
		Price:       79,
		Capacity:    100,
		TicketTypes: []TicketTypeInput{{Name: "General Admission", Price: 79}},
	}

	tests := []struct {
		name      string
		mutate    func(*EventInput)
		wantField string
	}{
		{"valid input", func(*EventInput) {}, ""},
		{"missing title", func(in *EventInput) { in.Title = "" }, "title"},
		{"missing date", func(in *EventInput) { in.Date = time.Time{} }, "date"},
		{"unknown type", func(in *EventInput) { in.Type = "webinar" }, "type"},
		{"negative points", func(in *EventInput) { in.CpdPoints = -1 }, "cpd_points"},
		{"negative price", func(in *EventInput) { in.Price = -5 }, "price"},
		{"negative capacity", func(in *EventInput) { in.Capacity = -1 }, "capacity"},
		{"unnamed ticket tier", func(in *EventInput) { in.TicketTypes = []TicketTypeInput{{Name: " "}} }, "ticket_types"},
		{"negative ticket price", func(in *EventInput) { in.TicketTypes = []TicketTypeInput{{Name: "Standard", Price: -1}} }, "ticket_types"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assertFieldError(t, ValidateEventInput(input), tt.wantField)
		})
	}
}

func TestValidateCourseInput(t *testing.T) {
	valid := CourseInput{
		Title:      "Foundations of Pharmacovigilance",
		Difficulty: DifficultyBeginner,
		CpdPoints:  4,
		Price:      95,
	}

	tests := []struct {
		name      string
		mutate    func(*CourseInput)
		wantField string
	}{
		{"valid input", func(*CourseInput) {}, ""},
		{"missing title", func(in *CourseInput) { in.Title = "" }, "title"},
		{"unknown difficulty", func(in *CourseInput) { in.Difficulty = "expert" }, "difficulty"},
		{"negative points", func(in *CourseInput) { in.CpdPoints = -2 }, "cpd_points"},
		{"negative price", func(in *CourseInput) { in.Price = -1 }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assertFieldError(t, ValidateCourseInput(input), tt.wantField)
		})
	}
}

func TestValidateCpdActivityInput(t *testing.T) {
	valid := CpdActivityInput{
		Title:      "Sepsis update webinar",
		Points:     2,
		CategoryID: 1,
		Date:       time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		mutate    func(*CpdActivityInput)
		wantField string
	}{
		{"valid input", func(*CpdActivityInput) {}, ""},
		{"missing title", func(in *CpdActivityInput) { in.Title = "" }, "title"},
		{"zero points", func(in *CpdActivityInput) { in.Points = 0 }, "points"},
		{"missing category", func(in *CpdActivityInput) { in.CategoryID = 0 }, "category_id"},
		{"missing date", func(in *CpdActivityInput) { in.Date = time.Time{} }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assertFieldError(t, ValidateCpdActivityInput(input), tt.wantField)
		})
	}
}

func TestValidateDiscussionInput(t *testing.T) {
	assertFieldError(t, ValidateDiscussionInput(DiscussionInput{Title: "Switching IV to oral", Body: "Experiences?"}), "")
	assertFieldError(t, ValidateDiscussionInput(DiscussionInput{Body: "no title"}), "title")
	assertFieldError(t, ValidateDiscussionInput(DiscussionInput{Title: "no body"}), "body")
}

func TestValidateMentorshipInput(t *testing.T) {
	assertFieldError(t, ValidateMentorshipInput(MentorshipInput{Title: "Ethics supervision", MenteeCapacity: 3}), "")
	assertFieldError(t, ValidateMentorshipInput(MentorshipInput{MenteeCapacity: 3}), "title")
	assertFieldError(t, ValidateMentorshipInput(MentorshipInput{Title: "Ethics supervision"}), "mentee_capacity")
}

func TestValidateCredentialInput(t *testing.T) {
	valid := CredentialInput{
		Title:    "Registered Pharmacist",
		Issuer:   "GPhC",
		IssuedOn: time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		mutate    func(*CredentialInput)
		wantField string
	}{
		{"valid input", func(*CredentialInput) {}, ""},
		{"empty status is defaulted later", func(in *CredentialInput) { in.Status = "" }, ""},
		{"missing title", func(in *CredentialInput) { in.Title = "" }, "title"},
		{"missing issuer", func(in *CredentialInput) { in.Issuer = "" }, "issuer"},
		{"missing issue date", func(in *CredentialInput) { in.IssuedOn = time.Time{} }, "issued_on"},
		{"unknown status", func(in *CredentialInput) { in.Status = "suspended" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			assertFieldError(t, ValidateCredentialInput(input), tt.wantField)
		})
	}
}
