package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage"
	"github.com/example/cpd-marketplace/internal/storage/memory"
	"github.com/example/cpd-marketplace/internal/testfixtures"
)

func newStore() (*memory.Store, *testfixtures.Clock) {
	clock := testfixtures.NewClock(time.Time{})
	return memory.NewWithClock(clock.NowFunc()), clock
}

func createUser(t *testing.T, store *memory.Store, opts ...testfixtures.UserOption) storage.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), testfixtures.NewUserFixture(opts...).Input())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns defaults", func(t *testing.T) {
		store, clock := newStore()

		user := createUser(t, store)
		if user.ID == 0 {
			t.Fatal("expected an assigned id")
		}
		if user.Role != storage.RoleUser {
			t.Fatalf("role = %q, want %q", user.Role, storage.RoleUser)
		}
		if user.Privacy.ShowEmail {
			t.Fatal("expected email hidden by default")
		}
		if !user.Privacy.ShowProfession || !user.Privacy.AllowMessages {
			t.Fatalf("unexpected privacy defaults: %+v", user.Privacy)
		}
		if !user.CreatedAt.Equal(clock.Current()) {
			t.Fatalf("created_at = %v, want %v", user.CreatedAt, clock.Current())
		}
	})

	t.Run("rejects duplicate usernames case-insensitively", func(t *testing.T) {
		store, _ := newStore()

		createUser(t, store, testfixtures.WithUsername("Amara.Osei"))
		_, err := store.CreateUser(ctx, testfixtures.NewUserFixture(testfixtures.WithUsername("amara.osei")).Input())
		if !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("validates input before writing", func(t *testing.T) {
		store, _ := newStore()

		_, err := store.CreateUser(ctx, testfixtures.NewUserFixture(testfixtures.WithUserPassword("short")).Input())
		var vErr *storage.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want a validation error", err)
		}
		if _, ok := vErr.FieldErrors["password"]; !ok {
			t.Fatalf("field errors = %v, want password entry", vErr.FieldErrors)
		}
	})
}

func TestGetUserByUsername(t *testing.T) {
	store, _ := newStore()
	created := createUser(t, store, testfixtures.WithUsername("priya.raman"))

	found, err := store.GetUserByUsername(context.Background(), "PRIYA.RAMAN")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("id = %d, want %d", found.ID, created.ID)
	}

	if _, err := store.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser(t *testing.T) {
	store, _ := newStore()
	user := createUser(t, store)

	profession := "Clinical Pharmacist"
	updated, err := store.UpdateUser(context.Background(), user.ID, storage.UserUpdate{Profession: &profession})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Profession != profession {
		t.Fatalf("profession = %q, want %q", updated.Profession, profession)
	}
	if updated.Email != user.Email {
		t.Fatalf("email = %q changed by a nil field", updated.Email)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password leaves the hash intact", func(t *testing.T) {
		store, _ := newStore()
		fixture := testfixtures.NewUserFixture()
		user, err := store.CreateUser(ctx, fixture.Input())
		if err != nil {
			t.Fatalf("create user: %v", err)
		}

		err = store.ChangePassword(ctx, user.ID, "wrong-password", "replacement-password")
		if !errors.Is(err, storage.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}

		stored, err := store.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if err := auth.VerifyPassword(stored.PasswordHash, fixture.Password); err != nil {
			t.Fatalf("original password no longer verifies: %v", err)
		}
	})

	t.Run("rejects a short replacement", func(t *testing.T) {
		store, _ := newStore()
		fixture := testfixtures.NewUserFixture()
		user, err := store.CreateUser(ctx, fixture.Input())
		if err != nil {
			t.Fatalf("create user: %v", err)
		}

		err = store.ChangePassword(ctx, user.ID, fixture.Password, "short")
		var vErr *storage.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want a validation error", err)
		}
	})

	t.Run("stores the new hash on success", func(t *testing.T) {
		store, _ := newStore()
		fixture := testfixtures.NewUserFixture()
		user, err := store.CreateUser(ctx, fixture.Input())
		if err != nil {
			t.Fatalf("create user: %v", err)
		}

		if err := store.ChangePassword(ctx, user.ID, fixture.Password, "replacement-password"); err != nil {
			t.Fatalf("change password: %v", err)
		}

		stored, err := store.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if err := auth.VerifyPassword(stored.PasswordHash, "replacement-password"); err != nil {
			t.Fatalf("new password does not verify: %v", err)
		}
		if err := auth.VerifyPassword(stored.PasswordHash, fixture.Password); !errors.Is(err, auth.ErrPasswordMismatch) {
			t.Fatalf("err = %v, want the old password rejected", err)
		}
	})
}

func TestSetUserPresence(t *testing.T) {
	store, clock := newStore()
	user := createUser(t, store)
	ctx := context.Background()

	if err := store.SetUserPresence(ctx, user.ID, true); err != nil {
		t.Fatalf("set online: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if err := store.SetUserPresence(ctx, user.ID, false); err != nil {
		t.Fatalf("set offline: %v", err)
	}

	stored, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Online {
		t.Fatal("expected user offline")
	}
	if !stored.LastSeenAt.Equal(clock.Current()) {
		t.Fatalf("last_seen_at = %v, want %v", stored.LastSeenAt, clock.Current())
	}
}

func TestListResourcePersons(t *testing.T) {
	store, _ := newStore()
	createUser(t, store)

	second, err := store.CreateUser(context.Background(), storage.UserInput{
		Username:    "priya.raman",
		Email:       "priya.raman@example.org",
		DisplayName: "Prof. Priya Raman",
		Password:    "orchid-river-9",
		Role:        storage.RoleResourcePerson,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	first, err := store.CreateUser(context.Background(), storage.UserInput{
		Username:    "lena.berg",
		Email:       "lena.berg@example.org",
		DisplayName: "Dr. Lena Berg",
		Password:    "orchid-river-9",
		Role:        storage.RoleResourcePerson,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	listed, err := store.ListResourcePersons(context.Background())
	if err != nil {
		t.Fatalf("list resource persons: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("len = %d, want only the instructor accounts", len(listed))
	}
	if listed[0].ID != first.ID || listed[1].ID != second.ID {
		t.Fatalf("order = [%d %d], want display-name order [%d %d]", listed[0].ID, listed[1].ID, first.ID, second.ID)
	}
}

func TestSessions(t *testing.T) {
	store, clock := newStore()
	user := createUser(t, store)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, storage.Session{
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: clock.Current().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == 0 {
		t.Fatal("expected an assigned session id")
	}
	if !session.CreatedAt.Equal(clock.Current()) {
		t.Fatalf("created_at = %v, want %v", session.CreatedAt, clock.Current())
	}

	found, err := store.GetSessionByToken(ctx, "token-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if found.UserID != user.ID {
		t.Fatalf("user id = %d, want %d", found.UserID, user.ID)
	}

	revokedAt := clock.Advance(10 * time.Minute)
	revoked, err := store.RevokeSession(ctx, "token-1", revokedAt)
	if err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Fatalf("revoked_at = %v, want %v", revoked.RevokedAt, revokedAt)
	}

	if _, err := store.RevokeSession(ctx, "unknown", revokedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	clock.Advance(2 * time.Hour)
	if err := store.DeleteExpiredSessions(ctx, clock.Current()); err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if _, err := store.GetSessionByToken(ctx, "token-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want the expired session gone", err)
	}
}

func TestSeed(t *testing.T) {
	store := memory.New()
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
	if err := auth.VerifyPassword(priya.PasswordHash, "cpd-demo-password"); err != nil {
		t.Fatalf("demo password does not verify: %v", err)
	}

	upcoming, err := store.ListUpcomingEvents(ctx)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != storage.UpcomingEventsLimit {
		t.Fatalf("upcoming = %d events, want %d", len(upcoming), storage.UpcomingEventsLimit)
	}

	categories, err := store.ListForumCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(categories))
	}
	if categories[0].Name != "Careers & CPD" || categories[0].DiscussionCount != 2 {
		t.Fatalf("unexpected first category: %+v", categories[0])
	}

	amara, err := store.GetUserByUsername(ctx, "amara.osei")
	if err != nil {
		t.Fatalf("seeded user missing: %v", err)
	}
	summary, err := store.GetCpdSummary(ctx, amara.ID)
	if err != nil {
		t.Fatalf("cpd summary: %v", err)
	}
	if summary.TotalEarned != 5 {
		t.Fatalf("total earned = %d, want 5 verified points", summary.TotalEarned)
	}

	mentorships, err := store.ListMentorshipOpportunities(ctx)
	if err != nil {
		t.Fatalf("list mentorships: %v", err)
	}
	if len(mentorships) != 1 {
		t.Fatalf("mentorships = %d, want 1", len(mentorships))
	}
}
