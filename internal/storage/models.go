package storage

import "time"

// Role identifies the kind of account a user holds on the marketplace.
type Role string

const (
	// RoleUser is a regular learner account.
	RoleUser Role = "user"
	// RoleResourcePerson marks instructors, speakers, and mentors.
	RoleResourcePerson Role = "resource_person"
)

// PrivacySettings captures the per-user visibility toggles for profile fields.
type PrivacySettings struct {
	ShowEmail        bool `json:"show_email"`
	ShowProfession   bool `json:"show_profession"`
	ShowOrganization bool `json:"show_organization"`
	ShowLocation     bool `json:"show_location"`
	AllowMessages    bool `json:"allow_messages"`
}

// User represents a marketplace account.
type User struct {
	ID           int64
	Username     string
	Email        string
	DisplayName  string
	Role         Role
	Profession   string
	Bio          string
	Organization string
	Location     string
	PasswordHash string
	Privacy      PrivacySettings
	Online       bool
	LastSeenAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInput captures caller provided attributes for account creation. The
// plaintext password is hashed by the adapter before storage.
type UserInput struct {
	Username     string
	Email        string
	DisplayName  string
	Password     string
	Role         Role
	Profession   string
	Bio          string
	Organization string
	Location     string
}

// UserUpdate carries a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	DisplayName  *string
	Profession   *string
	Bio          *string
	Organization *string
	Location     *string
}

// PrivacyUpdate carries a partial update of the nested privacy record.
type PrivacyUpdate struct {
	ShowEmail        *bool
	ShowProfession   *bool
	ShowOrganization *bool
	ShowLocation     *bool
	AllowMessages    *bool
}

// EventType distinguishes how an event is delivered.
type EventType string

const (
	EventInPerson EventType = "In-person"
	EventVirtual  EventType = "Virtual"
	EventHybrid   EventType = "Hybrid"
)

// Speaker describes a presenter attached to an event.
type Speaker struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
}

// AgendaItem is a single entry in an event's running order.
type AgendaItem struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

// TicketType is a purchasable admission tier owned by one event.
type TicketType struct {
	ID         int64
	EventID    int64
	Name       string
	Price      float64
	SalesStart *time.Time
	SalesEnd   *time.Time
}

// Event is a schedulable CPD activity such as a workshop or conference.
type Event struct {
	ID               int64
	Title            string
	Description      string
	Date             time.Time
	StartTime        string
	EndTime          string
	Type             EventType
	Category         string
	Location         string
	Price            float64
	CpdPoints        int
	Capacity         int
	CurrentAttendees int
	LearningOutcomes []string
	Speakers         []Speaker
	Agenda           []AgendaItem
	Tags             []string
	TicketTypes      []TicketType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TicketTypeInput captures a ticket tier supplied at event creation.
type TicketTypeInput struct {
	Name       string
	Price      float64
	SalesStart *time.Time
	SalesEnd   *time.Time
}

// EventInput captures caller provided event attributes.
type EventInput struct {
	Title            string
	Description      string
	Date             time.Time
	StartTime        string
	EndTime          string
	Type             EventType
	Category         string
	Location         string
	Price            float64
	CpdPoints        int
	Capacity         int
	LearningOutcomes []string
	Speakers         []Speaker
	Agenda           []AgendaItem
	Tags             []string
	TicketTypes      []TicketTypeInput
}

// RegistrationStatus tracks the lifecycle of an event registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// EventRegistration links a user to an event through a ticket type.
type EventRegistration struct {
	ID           int64
	UserID       int64
	EventID      int64
	TicketTypeID int64
	Quantity     int
	TotalPrice   float64
	Status       RegistrationStatus
	CreatedAt    time.Time
}

// Difficulty grades self-paced courses.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// LessonType identifies the delivery format of a single lesson.
type LessonType string

const (
	LessonVideo      LessonType = "video"
	LessonText       LessonType = "text"
	LessonQuiz       LessonType = "quiz"
	LessonAssignment LessonType = "assignment"
)

// Lesson is one unit of a course module.
type Lesson struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Type     LessonType `json:"type"`
	Duration string     `json:"duration"`
}

// CourseModule groups ordered lessons inside a course curriculum.
type CourseModule struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Course is a self-paced learning offering.
type Course struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Difficulty  Difficulty
	Instructor  string
	Price       float64
	CpdPoints   int
	ModuleCount int
	LessonCount int
	Curriculum  []CourseModule
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourseInput captures caller provided course attributes.
type CourseInput struct {
	Title       string
	Description string
	Category    string
	Difficulty  Difficulty
	Instructor  string
	Price       float64
	CpdPoints   int
	Curriculum  []CourseModule
	Tags        []string
}

// EnrollmentStatus tracks the lifecycle of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	EnrollmentDropped    EnrollmentStatus = "dropped"
)

// CourseEnrollment links a user to a course and tracks completion.
type CourseEnrollment struct {
	ID               int64
	UserID           int64
	CourseID         int64
	Progress         int
	Status           EnrollmentStatus
	CompletedLessons []string
	LastAccessedAt   time.Time
	EnrolledAt       time.Time
}

// CourseProgress is the read-time enrichment attached to a course when the
// requesting user holds an enrollment.
type CourseProgress struct {
	Status       EnrollmentStatus
	Percentage   int
	LastAccessed string
}

// CourseDetail is a course optionally enriched with the caller's progress.
// Progress is nil when the caller is anonymous or never enrolled.
type CourseDetail struct {
	Course
	Progress *CourseProgress
}

// CpdCategory is a continuing-education credit category with an annual
// requirement.
type CpdCategory struct {
	ID             int64
	Name           string
	RequiredPoints int
}

// VerificationStatus tracks review of a logged CPD activity.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// CpdActivity is a logged continuing-education credit event for a user.
type CpdActivity struct {
	ID         int64
	UserID     int64
	Title      string
	Provider   string
	Points     int
	CategoryID int64
	Date       time.Time
	Status     VerificationStatus
	CreatedAt  time.Time
}

// CpdActivityInput captures a CPD activity submitted by a user.
type CpdActivityInput struct {
	Title      string
	Provider   string
	Points     int
	CategoryID int64
	Date       time.Time
}

// CpdCategorySummary pairs a category with the points earned against it.
type CpdCategorySummary struct {
	Category     CpdCategory
	EarnedPoints int
}

// CpdSummary aggregates a user's earned and required points per category.
// Only verified activities count toward earned totals.
type CpdSummary struct {
	UserID        int64
	TotalEarned   int
	TotalRequired int
	Categories    []CpdCategorySummary
}

// ForumCategory is a top-level community discussion bucket.
type ForumCategory struct {
	ID              int64
	Name            string
	Description     string
	DiscussionCount int
}

// Discussion is a community forum post with denormalized engagement counters.
type Discussion struct {
	ID         int64
	AuthorID   int64
	CategoryID int64
	Title      string
	Body       string
	Comments   int
	Likes      int
	Views      int
	CreatedAt  time.Time
}

// DiscussionInput captures a new forum post.
type DiscussionInput struct {
	AuthorID   int64
	CategoryID int64
	Title      string
	Body       string
}

// AuthorSummary is the denormalized author data attached to discussion reads.
type AuthorSummary struct {
	ID          int64
	DisplayName string
	Profession  string
}

// DiscussionSummary is a discussion enriched with author and display metadata
// computed at read time.
type DiscussionSummary struct {
	Discussion
	Author  AuthorSummary
	TimeAgo string
}

// MentorshipOpportunity is a resource-person authored mentoring offer.
type MentorshipOpportunity struct {
	ID             int64
	AuthorID       int64
	Title          string
	Description    string
	Specialties    []string
	MenteeCapacity int
	CurrentMentees int
	Available      bool
	CreatedAt      time.Time
}

// MentorshipInput captures a new mentorship offering.
type MentorshipInput struct {
	AuthorID       int64
	Title          string
	Description    string
	Specialties    []string
	MenteeCapacity int
}

// CredentialStatus tracks the validity of a professional credential.
type CredentialStatus string

const (
	CredentialActive  CredentialStatus = "active"
	CredentialExpired CredentialStatus = "expired"
	CredentialPending CredentialStatus = "pending"
	CredentialRevoked CredentialStatus = "revoked"
)

// Credential is a user's professional certification or license record.
type Credential struct {
	ID        int64
	UserID    int64
	Title     string
	Issuer    string
	Number    string
	IssuedOn  time.Time
	ExpiresOn *time.Time
	Status    CredentialStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialInput captures a credential submitted by a user.
type CredentialInput struct {
	UserID    int64
	Title     string
	Issuer    string
	Number    string
	IssuedOn  time.Time
	ExpiresOn *time.Time
	Status    CredentialStatus
}

// CredentialUpdate carries a partial credential update. Nil fields are left
// untouched.
type CredentialUpdate struct {
	Title     *string
	Issuer    *string
	Number    *string
	IssuedOn  *time.Time
	ExpiresOn *time.Time
	Status    *CredentialStatus
}

// Session is an authentication session issued to a user.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
