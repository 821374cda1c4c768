// Package testfixtures provides deterministic builders and harnesses shared by
// adapter and service tests: a controllable clock, a sequential token
// generator, and input fixtures for the marketplace entities.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/cpd-marketplace/internal/storage"
)

var (
	userCounter       uint64
	eventCounter      uint64
	courseCounter     uint64
	activityCounter   uint64
	credentialCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account that can be materialised
// through any storage adapter.
type UserFixture struct {
	Username     string
	Email        string
	DisplayName  string
	Password     string
	Role         storage.Role
	Profession   string
	Bio          string
	Organization string
	Location     string
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	username := fmt.Sprintf("member-%03d", idx)
	fixture := UserFixture{
		Username:    username,
		Email:       fmt.Sprintf("%s@example.org", username),
		DisplayName: fmt.Sprintf("Member %03d", idx),
		Password:    "fixture-password-1",
		Role:        storage.RoleUser,
		Profession:  "Radiographer",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the account role.
func WithUserRole(role storage.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithResourcePersonRole marks the fixture as an instructor account.
func WithResourcePersonRole() UserOption {
	return WithUserRole(storage.RoleResourcePerson)
}

// WithUserPassword overrides the plaintext password.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserProfession sets the profession field.
func WithUserProfession(profession string) UserOption {
	return func(f *UserFixture) {
		f.Profession = profession
	}
}

// Input returns the fixture as a storage.UserInput.
func (f UserFixture) Input() storage.UserInput {
	return storage.UserInput{
		Username:     f.Username,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		Password:     f.Password,
		Role:         f.Role,
		Profession:   f.Profession,
		Bio:          f.Bio,
		Organization: f.Organization,
		Location:     f.Location,
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic event record.
type EventFixture struct {
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Type        storage.EventType
	Category    string
	Location    string
	Price       float64
	CpdPoints   int
	Capacity    int
	Tags        []string
	TicketTypes []storage.TicketTypeInput
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. Each fixture is dated one day later than the previous one and
// carries a single general-admission tier.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	fixture := EventFixture{
		Title:     fmt.Sprintf("Event %03d", idx),
		Date:      referenceTime.Add(time.Duration(idx) * 24 * time.Hour),
		StartTime: "09:00",
		EndTime:   "17:00",
		Type:      storage.EventInPerson,
		Category:  "Clinical Practice",
		Location:  "Conference Centre",
		Price:     50,
		CpdPoints: 6,
		Capacity:  40,
		TicketTypes: []storage.TicketTypeInput{
			{Name: "General Admission", Price: 50},
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventDate sets the event date.
func WithEventDate(date time.Time) EventOption {
	return func(f *EventFixture) {
		f.Date = date
	}
}

// WithEventType sets the delivery format.
func WithEventType(kind storage.EventType) EventOption {
	return func(f *EventFixture) {
		f.Type = kind
	}
}

// WithEventCategory sets the category.
func WithEventCategory(category string) EventOption {
	return func(f *EventFixture) {
		f.Category = category
	}
}

// WithEventCapacity sets the attendee capacity.
func WithEventCapacity(capacity int) EventOption {
	return func(f *EventFixture) {
		f.Capacity = capacity
	}
}

// WithEventCpdPoints sets the credit value.
func WithEventCpdPoints(points int) EventOption {
	return func(f *EventFixture) {
		f.CpdPoints = points
	}
}

// WithEventTickets replaces the ticket tiers.
func WithEventTickets(tickets ...storage.TicketTypeInput) EventOption {
	return func(f *EventFixture) {
		f.TicketTypes = append([]storage.TicketTypeInput(nil), tickets...)
	}
}

// Input returns the fixture as a storage.EventInput.
func (f EventFixture) Input() storage.EventInput {
	return storage.EventInput{
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Type:        f.Type,
		Category:    f.Category,
		Location:    f.Location,
		Price:       f.Price,
		CpdPoints:   f.CpdPoints,
		Capacity:    f.Capacity,
		Tags:        append([]string(nil), f.Tags...),
		TicketTypes: append([]storage.TicketTypeInput(nil), f.TicketTypes...),
	}
}

// ----------------------------- Course fixtures ---------------------------

// CourseFixture represents a deterministic course record.
type CourseFixture struct {
	Title       string
	Description string
	Category    string
	Difficulty  storage.Difficulty
	Instructor  string
	Price       float64
	CpdPoints   int
	Curriculum  []storage.CourseModule
	Tags        []string
}

// CourseOption configures the generated course fixture.
type CourseOption func(*CourseFixture)

// NewCourseFixture returns a deterministic course fixture with optional
// overrides. The default curriculum holds two modules of two lessons each.
func NewCourseFixture(opts ...CourseOption) CourseFixture {
	idx := atomic.AddUint64(&courseCounter, 1)
	prefix := fmt.Sprintf("course-%03d", idx)
	fixture := CourseFixture{
		Title:      fmt.Sprintf("Course %03d", idx),
		Category:   "Clinical Practice",
		Difficulty: storage.DifficultyIntermediate,
		Instructor: "Dr. Priya Raman",
		Price:      120,
		CpdPoints:  8,
		Curriculum: []storage.CourseModule{
			{
				Title: "Foundations",
				Lessons: []storage.Lesson{
					{ID: prefix + "-m1-l1", Title: "Orientation", Type: storage.LessonVideo, Duration: "12m"},
					{ID: prefix + "-m1-l2", Title: "Core Concepts", Type: storage.LessonText, Duration: "20m"},
				},
			},
			{
				Title: "Applied Practice",
				Lessons: []storage.Lesson{
					{ID: prefix + "-m2-l1", Title: "Case Studies", Type: storage.LessonVideo, Duration: "18m"},
					{ID: prefix + "-m2-l2", Title: "Assessment", Type: storage.LessonQuiz, Duration: "15m"},
				},
			},
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCourseTitle overrides the generated title.
func WithCourseTitle(title string) CourseOption {
	return func(f *CourseFixture) {
		f.Title = title
	}
}

// WithCourseDifficulty sets the difficulty grade.
func WithCourseDifficulty(difficulty storage.Difficulty) CourseOption {
	return func(f *CourseFixture) {
		f.Difficulty = difficulty
	}
}

// WithCourseCategory sets the category.
func WithCourseCategory(category string) CourseOption {
	return func(f *CourseFixture) {
		f.Category = category
	}
}

// WithCourseCpdPoints sets the credit value.
func WithCourseCpdPoints(points int) CourseOption {
	return func(f *CourseFixture) {
		f.CpdPoints = points
	}
}

// WithCourseCurriculum replaces the curriculum.
func WithCourseCurriculum(modules ...storage.CourseModule) CourseOption {
	return func(f *CourseFixture) {
		f.Curriculum = append([]storage.CourseModule(nil), modules...)
	}
}

// LessonIDs returns every lesson identifier in curriculum order, which
// progress tests feed to UpdateCourseProgress.
func (f CourseFixture) LessonIDs() []string {
	ids := make([]string, 0)
	for _, module := range f.Curriculum {
		for _, lesson := range module.Lessons {
			ids = append(ids, lesson.ID)
		}
	}
	return ids
}

// Input returns the fixture as a storage.CourseInput.
func (f CourseFixture) Input() storage.CourseInput {
	return storage.CourseInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Difficulty:  f.Difficulty,
		Instructor:  f.Instructor,
		Price:       f.Price,
		CpdPoints:   f.CpdPoints,
		Curriculum:  append([]storage.CourseModule(nil), f.Curriculum...),
		Tags:        append([]string(nil), f.Tags...),
	}
}

// --------------------------- CPD activity fixtures -----------------------

// CpdActivityFixture represents a deterministic logged credit activity.
type CpdActivityFixture struct {
	Title      string
	Provider   string
	Points     int
	CategoryID int64
	Date       time.Time
}

// CpdActivityOption configures the generated activity fixture.
type CpdActivityOption func(*CpdActivityFixture)

// NewCpdActivityFixture returns a deterministic activity fixture with optional
// overrides.
func NewCpdActivityFixture(opts ...CpdActivityOption) CpdActivityFixture {
	idx := atomic.AddUint64(&activityCounter, 1)
	fixture := CpdActivityFixture{
		Title:      fmt.Sprintf("Activity %03d", idx),
		Provider:   "National Board",
		Points:     5,
		CategoryID: 1,
		Date:       referenceTime.Add(-time.Duration(idx) * 24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithActivityTitle overrides the generated title.
func WithActivityTitle(title string) CpdActivityOption {
	return func(f *CpdActivityFixture) {
		f.Title = title
	}
}

// WithActivityPoints sets the point value.
func WithActivityPoints(points int) CpdActivityOption {
	return func(f *CpdActivityFixture) {
		f.Points = points
	}
}

// WithActivityCategory sets the credit category.
func WithActivityCategory(categoryID int64) CpdActivityOption {
	return func(f *CpdActivityFixture) {
		f.CategoryID = categoryID
	}
}

// WithActivityDate sets the activity date.
func WithActivityDate(date time.Time) CpdActivityOption {
	return func(f *CpdActivityFixture) {
		f.Date = date
	}
}

// Input returns the fixture as a storage.CpdActivityInput.
func (f CpdActivityFixture) Input() storage.CpdActivityInput {
	return storage.CpdActivityInput{
		Title:      f.Title,
		Provider:   f.Provider,
		Points:     f.Points,
		CategoryID: f.CategoryID,
		Date:       f.Date,
	}
}

// --------------------------- Credential fixtures -------------------------

// CredentialFixture represents a deterministic credential record.
type CredentialFixture struct {
	UserID    int64
	Title     string
	Issuer    string
	Number    string
	IssuedOn  time.Time
	ExpiresOn *time.Time
	Status    storage.CredentialStatus
}

// CredentialOption configures the generated credential fixture.
type CredentialOption func(*CredentialFixture)

// NewCredentialFixture returns a deterministic credential fixture for the
// given owner with optional overrides.
func NewCredentialFixture(userID int64, opts ...CredentialOption) CredentialFixture {
	idx := atomic.AddUint64(&credentialCounter, 1)
	fixture := CredentialFixture{
		UserID:   userID,
		Title:    fmt.Sprintf("Certification %03d", idx),
		Issuer:   "National Board",
		Number:   fmt.Sprintf("CERT-%04d", idx),
		IssuedOn: referenceTime.Add(-time.Duration(idx) * 30 * 24 * time.Hour),
		Status:   storage.CredentialActive,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCredentialTitle overrides the generated title.
func WithCredentialTitle(title string) CredentialOption {
	return func(f *CredentialFixture) {
		f.Title = title
	}
}

// WithCredentialStatus sets the status.
func WithCredentialStatus(status storage.CredentialStatus) CredentialOption {
	return func(f *CredentialFixture) {
		f.Status = status
	}
}

// WithCredentialExpiry sets the expiry date.
func WithCredentialExpiry(expiresOn time.Time) CredentialOption {
	return func(f *CredentialFixture) {
		expiry := expiresOn
		f.ExpiresOn = &expiry
	}
}

// Input returns the fixture as a storage.CredentialInput.
func (f CredentialFixture) Input() storage.CredentialInput {
	var expiresOn *time.Time
	if f.ExpiresOn != nil {
		expiry := *f.ExpiresOn
		expiresOn = &expiry
	}
	return storage.CredentialInput{
		UserID:    f.UserID,
		Title:     f.Title,
		Issuer:    f.Issuer,
		Number:    f.Number,
		IssuedOn:  f.IssuedOn,
		ExpiresOn: expiresOn,
		Status:    f.Status,
	}
}
