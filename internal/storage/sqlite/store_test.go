package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage"
	"github.com/example/cpd-marketplace/internal/storage/sqlite"
	"github.com/example/cpd-marketplace/internal/testfixtures"
)

func createUser(t *testing.T, store *sqlite.Store, opts ...testfixtures.UserOption) storage.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), testfixtures.NewUserFixture(opts...).Input())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func futureEvent(opts ...testfixtures.EventOption) storage.EventInput {
	opts = append([]testfixtures.EventOption{
		testfixtures.WithEventDate(time.Now().AddDate(0, 0, 7)),
	}, opts...)
	return testfixtures.NewEventFixture(opts...).Input()
}

func TestUserLifecycle(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	fixture := testfixtures.NewUserFixture(testfixtures.WithUsername("Amara.Osei"))
	created, err := store.CreateUser(ctx, fixture.Input())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Role != storage.RoleUser {
		t.Fatalf("role = %q, want %q", created.Role, storage.RoleUser)
	}
	if created.Privacy.ShowEmail || !created.Privacy.ShowProfession {
		t.Fatalf("unexpected privacy defaults: %+v", created.Privacy)
	}

	t.Run("username lookup ignores case", func(t *testing.T) {
		found, err := store.GetUserByUsername(ctx, "amara.osei")
		if err != nil {
			t.Fatalf("get by username: %v", err)
		}
		if found.ID != created.ID {
			t.Fatalf("id = %d, want %d", found.ID, created.ID)
		}
	})

	t.Run("duplicate usernames map to the sentinel", func(t *testing.T) {
		_, err := store.CreateUser(ctx, testfixtures.NewUserFixture(testfixtures.WithUsername("Amara.Osei")).Input())
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("profile updates merge non-nil fields", func(t *testing.T) {
		bio := "Hospital pharmacist."
		updated, err := store.UpdateUser(ctx, created.ID, storage.UserUpdate{Bio: &bio})
		if err != nil {
			t.Fatalf("update user: %v", err)
		}
		if updated.Bio != bio || updated.Email != created.Email {
			t.Fatalf("updated = %+v, want only the bio changed", updated)
		}
	})

	t.Run("privacy updates persist through the JSON column", func(t *testing.T) {
		show := true
		updated, err := store.UpdatePrivacySettings(ctx, created.ID, storage.PrivacyUpdate{ShowEmail: &show})
		if err != nil {
			t.Fatalf("update privacy: %v", err)
		}
		if !updated.Privacy.ShowEmail {
			t.Fatal("expected show_email to persist")
		}
		reloaded, err := store.GetUser(ctx, created.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if !reloaded.Privacy.ShowEmail || !reloaded.Privacy.ShowProfession {
			t.Fatalf("reloaded privacy = %+v", reloaded.Privacy)
		}
	})

	t.Run("password change verifies the current hash", func(t *testing.T) {
		err := store.ChangePassword(ctx, created.ID, "wrong-password", "replacement-password")
		if !errors.Is(err, storage.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}

		if err := store.ChangePassword(ctx, created.ID, fixture.Password, "replacement-password"); err != nil {
			t.Fatalf("change password: %v", err)
		}
		stored, err := store.GetUser(ctx, created.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if err := auth.VerifyPassword(stored.PasswordHash, "replacement-password"); err != nil {
			t.Fatalf("new password does not verify: %v", err)
		}
	})
}

func TestEventRegistrationFlow(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	user := createUser(t, store)
	ctx := context.Background()

	event, err := store.CreateEvent(ctx, futureEvent(
		testfixtures.WithEventCapacity(3),
		testfixtures.WithEventTickets(
			storage.TicketTypeInput{Name: "Standard", Price: 120},
			storage.TicketTypeInput{Name: "Remote", Price: 60},
		),
	))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if len(event.TicketTypes) != 2 {
		t.Fatalf("ticket tiers = %d, want 2", len(event.TicketTypes))
	}

	registration, err := store.RegisterForEvent(ctx, user.ID, event.ID, event.TicketTypes[0].ID, 2)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registration.TotalPrice != 240 {
		t.Fatalf("total price = %v, want 240", registration.TotalPrice)
	}

	updated, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if updated.CurrentAttendees != 2 {
		t.Fatalf("attendees = %d, want 2", updated.CurrentAttendees)
	}

	if _, err := store.RegisterForEvent(ctx, user.ID, event.ID, event.TicketTypes[0].ID, 2); !errors.Is(err, storage.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	registrations, err := store.ListRegistrationsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	if len(registrations) != 1 || registrations[0].ID != registration.ID {
		t.Fatalf("listing = %+v, want the confirmed registration", registrations)
	}

	upcoming, err := store.ListUpcomingEvents(ctx)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != event.ID {
		t.Fatalf("upcoming = %+v, want the future event", upcoming)
	}
}

func TestEventFiltering(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	if _, err := store.CreateEvent(ctx, futureEvent()); err != nil {
		t.Fatalf("create event: %v", err)
	}
	virtual, err := store.CreateEvent(ctx, futureEvent(
		testfixtures.WithEventType(storage.EventVirtual),
		testfixtures.WithEventCpdPoints(3),
	))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	byType, err := store.ListEvents(ctx, storage.EventFilter{Types: []storage.EventType{storage.EventVirtual}})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(byType) != 1 || byType[0].ID != virtual.ID {
		t.Fatalf("type filter = %+v, want only the virtual event", byType)
	}

	byPoints, err := store.ListEvents(ctx, storage.EventFilter{CpdPoints: storage.CpdThreeFive})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(byPoints) != 1 || byPoints[0].ID != virtual.ID {
		t.Fatalf("points filter = %+v, want only the 3-point event", byPoints)
	}
}

func TestEventDatesComparedAtSecondPrecision(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	base := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	first, err := store.CreateEvent(ctx, testfixtures.NewEventFixture(
		testfixtures.WithEventDate(base),
	).Input())
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	second, err := store.CreateEvent(ctx, testfixtures.NewEventFixture(
		testfixtures.WithEventDate(base.Add(500*time.Millisecond)),
	).Input())
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	fetched, err := store.GetEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !fetched.Date.Equal(base) {
		t.Fatalf("date = %v, want %v stored at second precision", fetched.Date, base)
	}

	// A whole-second date and a sub-second date in the same second must not
	// swap places in the date ordering.
	events, err := store.ListEvents(ctx, storage.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || events[0].ID != first.ID || events[1].ID != second.ID {
		t.Fatalf("order = %+v, want id order for dates within the same second", events)
	}

	upcoming, err := store.ListUpcomingEvents(ctx)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("upcoming = %d events, want both future events", len(upcoming))
	}
}

func TestCourseEnrollmentFlow(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	user := createUser(t, store)
	ctx := context.Background()

	fixture := testfixtures.NewCourseFixture()
	course, err := store.CreateCourse(ctx, fixture.Input())
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if course.LessonCount != 4 {
		t.Fatalf("lesson count = %d, want 4", course.LessonCount)
	}

	enrollment, err := store.EnrollInCourse(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.Progress != 0 || enrollment.Status != storage.EnrollmentEnrolled {
		t.Fatalf("enrollment = %+v, want zero progress", enrollment)
	}

	if _, err := store.EnrollInCourse(ctx, user.ID, course.ID); !errors.Is(err, storage.ErrAlreadyEnrolled) {
		t.Fatalf("err = %v, want ErrAlreadyEnrolled", err)
	}

	lessons := fixture.LessonIDs()
	half, err := store.UpdateCourseProgress(ctx, user.ID, course.ID, lessons[:2])
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if half.Progress != 50 || half.Status != storage.EnrollmentInProgress {
		t.Fatalf("enrollment = %+v, want 50%% in progress", half)
	}

	full, err := store.UpdateCourseProgress(ctx, user.ID, course.ID, lessons)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if full.Progress != 100 || full.Status != storage.EnrollmentCompleted {
		t.Fatalf("enrollment = %+v, want completed", full)
	}

	detail, err := store.GetCourseForUser(ctx, course.ID, user.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if detail.Progress == nil || detail.Progress.Percentage != 100 || detail.Progress.LastAccessed != "today" {
		t.Fatalf("progress = %+v, want completed today", detail.Progress)
	}

	anonymous, err := store.GetCourseForUser(ctx, course.ID, 0)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if anonymous.Progress != nil {
		t.Fatalf("progress = %+v, want nil for an anonymous caller", anonymous.Progress)
	}
}

func TestCpdTracking(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	user := createUser(t, store)
	ctx := context.Background()

	activity, err := store.CreateCpdActivity(ctx, user.ID, testfixtures.NewCpdActivityFixture(
		testfixtures.WithActivityPoints(5),
		testfixtures.WithActivityCategory(1),
	).Input())
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	if activity.Status != storage.VerificationPending {
		t.Fatalf("status = %q, want %q", activity.Status, storage.VerificationPending)
	}

	summary, err := store.GetCpdSummary(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalEarned != 0 {
		t.Fatalf("total earned = %d before verification, want 0", summary.TotalEarned)
	}

	if _, err := store.VerifyCpdActivity(ctx, activity.ID, storage.VerificationVerified); err != nil {
		t.Fatalf("verify: %v", err)
	}

	summary, err = store.GetCpdSummary(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalEarned != 5 || summary.Categories[0].EarnedPoints != 5 {
		t.Fatalf("summary = %+v, want the verified points counted", summary)
	}
	if summary.TotalRequired != 50 {
		t.Fatalf("total required = %d, want 50", summary.TotalRequired)
	}
}

func TestCommunity(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	author := createUser(t, store)
	ctx := context.Background()

	category, err := store.CreateForumCategory(ctx, "Clinical Questions", "Case discussions.")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	discussion, err := store.CreateDiscussion(ctx, storage.DiscussionInput{
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Title:      "Switching IV to oral antibiotics earlier",
		Body:       "Experiences?",
	})
	if err != nil {
		t.Fatalf("create discussion: %v", err)
	}

	categories, err := store.ListForumCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 || categories[0].DiscussionCount != 1 {
		t.Fatalf("categories = %+v, want the post counted", categories)
	}

	recent, err := store.ListRecentDiscussions(ctx)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != discussion.ID {
		t.Fatalf("recent = %+v, want the new post", recent)
	}
	if recent[0].Author.DisplayName != author.DisplayName {
		t.Fatalf("author = %+v, want display-name enrichment", recent[0].Author)
	}

	mentorship, err := store.CreateMentorshipOpportunity(ctx, storage.MentorshipInput{
		AuthorID:       author.ID,
		Title:          "Ethics case supervision",
		Specialties:    []string{"ethics", "governance"},
		MenteeCapacity: 3,
	})
	if err != nil {
		t.Fatalf("create mentorship: %v", err)
	}
	if !mentorship.Available {
		t.Fatal("expected a new offering to be available")
	}

	mentorships, err := store.ListMentorshipOpportunities(ctx)
	if err != nil {
		t.Fatalf("list mentorships: %v", err)
	}
	if len(mentorships) != 1 || len(mentorships[0].Specialties) != 2 {
		t.Fatalf("mentorships = %+v, want the specialties persisted", mentorships)
	}
}

func TestCredentials(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	user := createUser(t, store)
	ctx := context.Background()

	input := testfixtures.NewCredentialFixture(user.ID).Input()
	input.Status = ""
	credential, err := store.CreateCredential(ctx, input)
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if credential.Status != storage.CredentialActive {
		t.Fatalf("status = %q, want the default %q", credential.Status, storage.CredentialActive)
	}

	status := storage.CredentialExpired
	updated, err := store.UpdateCredential(ctx, credential.ID, storage.CredentialUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update credential: %v", err)
	}
	if updated.Status != storage.CredentialExpired {
		t.Fatalf("status = %q, want %q", updated.Status, storage.CredentialExpired)
	}

	listed, err := store.ListCredentials(ctx, user.ID)
	if err != nil {
		t.Fatalf("list credentials: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len = %d, want 1", len(listed))
	}

	if err := store.DeleteCredential(ctx, credential.ID); err != nil {
		t.Fatalf("delete credential: %v", err)
	}
	if _, err := store.GetCredential(ctx, credential.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want the record gone", err)
	}
}

func TestSessions(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	user := createUser(t, store)
	ctx := context.Background()
	now := time.Now()

	session, err := store.CreateSession(ctx, storage.Session{
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == 0 {
		t.Fatal("expected an assigned session id")
	}

	if _, err := store.CreateSession(ctx, storage.Session{
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: now.Add(time.Hour),
	}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists for a duplicate token", err)
	}

	found, err := store.GetSessionByToken(ctx, "token-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if found.UserID != user.ID || found.RevokedAt != nil {
		t.Fatalf("session = %+v, want an unrevoked session for the user", found)
	}

	revoked, err := store.RevokeSession(ctx, "token-1", now)
	if err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("expected the revocation stamped")
	}

	if err := store.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if _, err := store.GetSessionByToken(ctx, "token-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want the expired session gone", err)
	}
}

func TestSeed(t *testing.T) {
	store := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	priya, err := store.GetUserByUsername(ctx, "priya.raman")
	if err != nil {
		t.Fatalf("seeded instructor missing: %v", err)
	}
	if priya.Role != storage.RoleResourcePerson {
		t.Fatalf("role = %q, want %q", priya.Role, storage.RoleResourcePerson)
	}

	events, err := store.ListEvents(ctx, storage.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("events = %d, want the demo catalog", len(events))
	}

	courses, err := store.ListCourses(ctx, storage.CourseFilter{})
	if err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("courses = %d, want the demo catalog", len(courses))
	}
}
