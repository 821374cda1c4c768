package storage

import (
	"context"
	"time"
)

// UpcomingEventsLimit caps the dashboard listing of upcoming events.
const UpcomingEventsLimit = 4

// DiscussionListLimit caps trending and recent discussion listings.
const DiscussionListLimit = 5

// UserStore exposes account operations.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	CreateUser(ctx context.Context, input UserInput) (User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error)
	UpdatePrivacySettings(ctx context.Context, id int64, update PrivacyUpdate) (User, error)
	ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	SetUserPresence(ctx context.Context, id int64, online bool) error
	ListResourcePersons(ctx context.Context) ([]User, error)
}

// EventStore exposes event catalog and registration operations.
type EventStore interface {
	ListUpcomingEvents(ctx context.Context) ([]Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	CreateEvent(ctx context.Context, input EventInput) (Event, error)
	RegisterForEvent(ctx context.Context, userID, eventID, ticketTypeID int64, quantity int) (EventRegistration, error)
	ListRegistrationsForUser(ctx context.Context, userID int64) ([]EventRegistration, error)
}

// CourseStore exposes the self-paced course catalog and enrollments.
type CourseStore interface {
	ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	GetCourseForUser(ctx context.Context, id, userID int64) (CourseDetail, error)
	CreateCourse(ctx context.Context, input CourseInput) (Course, error)
	EnrollInCourse(ctx context.Context, userID, courseID int64) (CourseEnrollment, error)
	UpdateCourseProgress(ctx context.Context, userID, courseID int64, completedLessons []string) (CourseEnrollment, error)
	ListEnrollmentsForUser(ctx context.Context, userID int64) ([]CourseEnrollment, error)
}

// CpdStore exposes continuing-education credit tracking.
type CpdStore interface {
	GetCpdSummary(ctx context.Context, userID int64) (CpdSummary, error)
	ListCpdActivities(ctx context.Context, userID int64, filter CpdActivityFilter) ([]CpdActivity, error)
	CreateCpdActivity(ctx context.Context, userID int64, input CpdActivityInput) (CpdActivity, error)
	VerifyCpdActivity(ctx context.Context, id int64, status VerificationStatus) (CpdActivity, error)
}

// CommunityStore exposes forum taxonomy, discussions, and mentorships.
type CommunityStore interface {
	ListForumCategories(ctx context.Context) ([]ForumCategory, error)
	CreateForumCategory(ctx context.Context, name, description string) (ForumCategory, error)
	ListTrendingDiscussions(ctx context.Context) ([]DiscussionSummary, error)
	ListRecentDiscussions(ctx context.Context) ([]DiscussionSummary, error)
	CreateDiscussion(ctx context.Context, input DiscussionInput) (Discussion, error)
	ListMentorshipOpportunities(ctx context.Context) ([]MentorshipOpportunity, error)
	CreateMentorshipOpportunity(ctx context.Context, input MentorshipInput) (MentorshipOpportunity, error)
}

// CredentialStore exposes professional credential records.
type CredentialStore interface {
	ListCredentials(ctx context.Context, userID int64) ([]Credential, error)
	GetCredential(ctx context.Context, id int64) (Credential, error)
	CreateCredential(ctx context.Context, input CredentialInput) (Credential, error)
	UpdateCredential(ctx context.Context, id int64, update CredentialUpdate) (Credential, error)
	DeleteCredential(ctx context.Context, id int64) error
}

// SessionStore exposes authentication session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// Store is the storage port every adapter must satisfy. Consumers depend on
// this contract only; the concrete adapter is chosen once at process start.
type Store interface {
	UserStore
	EventStore
	CourseStore
	CpdStore
	CommunityStore
	CredentialStore
	SessionStore

	// Close releases resources held by the adapter.
	Close() error
}

// Seeder is implemented by adapters that can load the demo dataset. Seeding
// is an explicit step requested by the caller, never a construction side
// effect.
type Seeder interface {
	Seed(ctx context.Context) error
}
