package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage"
	"github.com/example/cpd-marketplace/internal/storage/memory"
)

const testPassword = "orchid-river-9"

type testEnv struct {
	store     *memory.Store
	public    http.Handler
	protected http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	service := auth.NewService(store, store, time.Hour, logger)

	router := NewRouter(RouterConfig{
		Auth:        NewAuthHandler(service, logger),
		Users:       NewUserHandler(store, logger),
		Events:      NewEventHandler(store, logger),
		Courses:     NewCourseHandler(store, logger),
		Cpd:         NewCpdHandler(store, logger),
		Community:   NewCommunityHandler(store, logger),
		Credentials: NewCredentialHandler(store, logger),
	})

	return &testEnv{
		store:     store,
		public:    router,
		protected: RequireSession(service, logger)(router),
	}
}

// do issues a request against the router. Requests carrying a token pass
// through the session middleware, matching how the server mounts protected
// routes.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	handler := e.public
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		handler = e.protected
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) createAccount(t *testing.T, username string, role storage.Role) storage.User {
	t.Helper()

	user, err := e.store.CreateUser(context.Background(), storage.UserInput{
		Username:    username,
		Email:       username + "@example.org",
		DisplayName: username,
		Password:    testPassword,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("create account %q: %v", username, err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	recorder := e.do(t, http.MethodPost, "/sessions", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("login %q: status = %d, body %s", username, recorder.Code, recorder.Body.String())
	}
	return decodeAs[loginResponse](t, recorder).Token
}

func decodeAs[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, recorder.Body.String())
	}
	return value
}

func boolPtr(b bool) *bool { return &b }

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)

		recorder := env.do(t, http.MethodPost, "/sessions", "", map[string]string{
			"username": "amara.osei",
			"password": testPassword,
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
		}

		resp := decodeAs[loginResponse](t, recorder)
		if resp.Token == "" {
			t.Fatal("expected a session token in the response body")
		}
		if header := recorder.Header().Get("X-Session-Token"); header != resp.Token {
			t.Fatalf("X-Session-Token = %q, want %q", header, resp.Token)
		}

		var cookieToken string
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" {
				cookieToken = cookie.Value
			}
		}
		if cookieToken != resp.Token {
			t.Fatalf("session cookie = %q, want %q", cookieToken, resp.Token)
		}
	})

	t.Run("login rejects a wrong password", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)

		recorder := env.do(t, http.MethodPost, "/sessions", "", map[string]string{
			"username": "amara.osei",
			"password": "not-the-password",
		})
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
		}
		if resp := decodeAs[errorResponse](t, recorder); resp.ErrorCode != "INVALID_CREDENTIALS" {
			t.Fatalf("error_code = %q, want INVALID_CREDENTIALS", resp.ErrorCode)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")

		if recorder := env.do(t, http.MethodDelete, "/sessions/current", token, nil); recorder.Code != http.StatusNoContent {
			t.Fatalf("logout status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if recorder := env.do(t, http.MethodGet, "/cpd/summary", token, nil); recorder.Code != http.StatusUnauthorized {
			t.Fatalf("post-logout status = %d, want %d", recorder.Code, http.StatusUnauthorized)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	t.Run("registration creates an account", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/users", "", map[string]string{
			"username":     "priya.raman",
			"email":        "priya@example.org",
			"display_name": "Priya Raman",
			"password":     testPassword,
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
		}

		user := decodeAs[userDTO](t, recorder)
		if user.ID == 0 {
			t.Fatal("expected an assigned user id")
		}
		if user.Role != string(storage.RoleUser) {
			t.Fatalf("role = %q, want %q", user.Role, storage.RoleUser)
		}
	})

	t.Run("registration rejects duplicate usernames", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "priya.raman", storage.RoleUser)

		recorder := env.do(t, http.MethodPost, "/users", "", map[string]string{
			"username":     "Priya.Raman",
			"email":        "second@example.org",
			"display_name": "Imposter",
			"password":     testPassword,
		})
		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
		}
	})

	t.Run("registration surfaces field validation errors", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/users", "", map[string]string{
			"username":     "shortpass",
			"email":        "shortpass@example.org",
			"display_name": "Short Pass",
			"password":     "tiny",
		})
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnprocessableEntity)
		}
		if resp := decodeAs[errorResponse](t, recorder); resp.Errors["password"] == "" {
			t.Fatalf("expected a password field error, got %+v", resp.Errors)
		}
	})

	t.Run("profiles are privacy filtered for other users", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		owner, err := env.store.CreateUser(context.Background(), storage.UserInput{
			Username:    "amara.osei",
			Email:       "amara@example.org",
			DisplayName: "Amara Osei",
			Password:    testPassword,
			Profession:  "Radiographer",
		})
		if err != nil {
			t.Fatalf("create owner: %v", err)
		}
		env.createAccount(t, "tomas.lindqvist", storage.RoleUser)
		viewerToken := env.login(t, "tomas.lindqvist")
		ownerToken := env.login(t, "amara.osei")

		path := fmt.Sprintf("/users/%d", owner.ID)

		viewed := decodeAs[userDTO](t, env.do(t, http.MethodGet, path, viewerToken, nil))
		if viewed.Email != "" {
			t.Fatalf("email %q leaked through default privacy settings", viewed.Email)
		}
		if viewed.Profession != "Radiographer" {
			t.Fatalf("profession = %q, want visible by default", viewed.Profession)
		}

		if recorder := env.do(t, http.MethodPut, path+"/privacy", ownerToken, privacyUpdateRequest{ShowProfession: boolPtr(false)}); recorder.Code != http.StatusOK {
			t.Fatalf("privacy update status = %d", recorder.Code)
		}
		viewed = decodeAs[userDTO](t, env.do(t, http.MethodGet, path, viewerToken, nil))
		if viewed.Profession != "" {
			t.Fatalf("profession = %q, want hidden after opt-out", viewed.Profession)
		}

		own := decodeAs[userDTO](t, env.do(t, http.MethodGet, path, ownerToken, nil))
		if own.Email != "amara@example.org" {
			t.Fatalf("owner email = %q, want full view of own profile", own.Email)
		}
		if own.Privacy == nil {
			t.Fatal("owner view must include privacy settings")
		}
	})

	t.Run("profile mutations are restricted to the owner", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		owner := env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "tomas.lindqvist", storage.RoleUser)
		intruderToken := env.login(t, "tomas.lindqvist")

		bio := "rewritten"
		recorder := env.do(t, http.MethodPut, fmt.Sprintf("/users/%d", owner.ID), intruderToken, profileUpdateRequest{Bio: &bio})
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
	})

	t.Run("password change verifies the current password", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		user := env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")
		path := fmt.Sprintf("/users/%d/password", user.ID)

		recorder := env.do(t, http.MethodPut, path, token, passwordChangeRequest{
			CurrentPassword: "wrong-guess",
			NewPassword:     "cobalt-meadow-4",
		})
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("wrong current password: status = %d, want %d", recorder.Code, http.StatusUnauthorized)
		}

		recorder = env.do(t, http.MethodPut, path, token, passwordChangeRequest{
			CurrentPassword: testPassword,
			NewPassword:     "cobalt-meadow-4",
		})
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("password change: status = %d, body %s", recorder.Code, recorder.Body.String())
		}

		recorder = env.do(t, http.MethodPost, "/sessions", "", map[string]string{
			"username": "amara.osei",
			"password": "cobalt-meadow-4",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("login with new password: status = %d", recorder.Code)
		}
	})
}

func TestEventHandlers(t *testing.T) {
	t.Parallel()

	newEventRequest := func(title string, capacity int) eventCreateRequest {
		return eventCreateRequest{
			Title:     title,
			Date:      time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
			StartTime: "09:00",
			EndTime:   "17:00",
			Type:      string(storage.EventInPerson),
			Category:  "Clinical Practice",
			CpdPoints: 6,
			Capacity:  capacity,
			TicketTypes: []ticketTypeRequest{
				{Name: "General Admission", Price: 50},
			},
		}
	}

	t.Run("creation is restricted to resource persons", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		if recorder := env.do(t, http.MethodPost, "/events", userToken, newEventRequest("Denied Workshop", 10)); recorder.Code != http.StatusForbidden {
			t.Fatalf("regular user: status = %d, want %d", recorder.Code, http.StatusForbidden)
		}

		recorder := env.do(t, http.MethodPost, "/events", rpToken, newEventRequest("Imaging Workshop", 10))
		if recorder.Code != http.StatusCreated {
			t.Fatalf("resource person: status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		event := decodeAs[eventDTO](t, recorder)
		if len(event.TicketTypes) != 1 || event.TicketTypes[0].ID == 0 {
			t.Fatalf("ticket types = %+v, want one persisted tier", event.TicketTypes)
		}
	})

	t.Run("registration computes total price and bumps attendance", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		event := decodeAs[eventDTO](t, env.do(t, http.MethodPost, "/events", rpToken, newEventRequest("Imaging Workshop", 10)))

		recorder := env.do(t, http.MethodPost, fmt.Sprintf("/events/%d/registrations", event.ID), userToken, registrationRequest{
			TicketTypeID: event.TicketTypes[0].ID,
			Quantity:     2,
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		registration := decodeAs[registrationDTO](t, recorder)
		if registration.TotalPrice != 100 {
			t.Fatalf("total_price = %v, want 100", registration.TotalPrice)
		}

		fetched := decodeAs[eventDTO](t, env.do(t, http.MethodGet, fmt.Sprintf("/events/%d", event.ID), "", nil))
		if fetched.CurrentAttendees != 2 {
			t.Fatalf("current_attendees = %d, want 2", fetched.CurrentAttendees)
		}
	})

	t.Run("registration rejects quantities beyond capacity", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		event := decodeAs[eventDTO](t, env.do(t, http.MethodPost, "/events", rpToken, newEventRequest("Tiny Seminar", 3)))

		recorder := env.do(t, http.MethodPost, fmt.Sprintf("/events/%d/registrations", event.ID), userToken, registrationRequest{
			TicketTypeID: event.TicketTypes[0].ID,
			Quantity:     4,
		})
		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
		}
		if resp := decodeAs[errorResponse](t, recorder); resp.ErrorCode != "CAPACITY_EXCEEDED" {
			t.Fatalf("error_code = %q, want CAPACITY_EXCEEDED", resp.ErrorCode)
		}
	})

	t.Run("upcoming listing caps at four future events", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		for i := 1; i <= 5; i++ {
			_, err := env.store.CreateEvent(context.Background(), storage.EventInput{
				Title: fmt.Sprintf("Future %d", i),
				Date:  time.Now().Add(time.Duration(i) * 24 * time.Hour),
				Type:  storage.EventVirtual,
			})
			if err != nil {
				t.Fatalf("seed event %d: %v", i, err)
			}
		}
		if _, err := env.store.CreateEvent(context.Background(), storage.EventInput{
			Title: "Already Over",
			Date:  time.Now().Add(-24 * time.Hour),
			Type:  storage.EventVirtual,
		}); err != nil {
			t.Fatalf("seed past event: %v", err)
		}

		events := decodeAs[[]eventDTO](t, env.do(t, http.MethodGet, "/events/upcoming", "", nil))
		if len(events) != 4 {
			t.Fatalf("len = %d, want 4", len(events))
		}
		if events[0].Title != "Future 1" {
			t.Fatalf("first = %q, want the soonest event", events[0].Title)
		}
		for _, event := range events {
			if event.Title == "Already Over" {
				t.Fatal("past event leaked into the upcoming listing")
			}
		}
	})
}

func TestCourseHandlers(t *testing.T) {
	t.Parallel()

	seedCourse := func(t *testing.T, env *testEnv) storage.Course {
		t.Helper()
		course, err := env.store.CreateCourse(context.Background(), storage.CourseInput{
			Title:      "Advanced Dosimetry",
			Difficulty: storage.DifficultyAdvanced,
			CpdPoints:  8,
			Curriculum: []storage.CourseModule{{
				Title: "Fundamentals",
				Lessons: []storage.Lesson{
					{ID: "l1", Title: "Intro", Type: storage.LessonVideo},
					{ID: "l2", Title: "Units", Type: storage.LessonText},
					{ID: "l3", Title: "Practice", Type: storage.LessonQuiz},
					{ID: "l4", Title: "Review", Type: storage.LessonAssignment},
				},
			}},
		})
		if err != nil {
			t.Fatalf("seed course: %v", err)
		}
		return course
	}

	t.Run("double enrollment is reported as a conflict", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")
		course := seedCourse(t, env)
		path := fmt.Sprintf("/courses/%d/enrollments", course.ID)

		if recorder := env.do(t, http.MethodPost, path, token, nil); recorder.Code != http.StatusCreated {
			t.Fatalf("first enrollment: status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		recorder := env.do(t, http.MethodPost, path, token, nil)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("second enrollment: status = %d, want %d", recorder.Code, http.StatusConflict)
		}
		if resp := decodeAs[errorResponse](t, recorder); resp.ErrorCode != "ALREADY_ENROLLED" {
			t.Fatalf("error_code = %q, want ALREADY_ENROLLED", resp.ErrorCode)
		}
	})

	t.Run("progress updates derive percentage and status", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")
		course := seedCourse(t, env)

		if recorder := env.do(t, http.MethodPost, fmt.Sprintf("/courses/%d/enrollments", course.ID), token, nil); recorder.Code != http.StatusCreated {
			t.Fatalf("enroll: status = %d", recorder.Code)
		}

		path := fmt.Sprintf("/courses/%d/progress", course.ID)
		enrollment := decodeAs[enrollmentDTO](t, env.do(t, http.MethodPut, path, token, progressUpdateRequest{CompletedLessons: []string{"l1", "l2"}}))
		if enrollment.Progress != 50 {
			t.Fatalf("progress = %d, want 50", enrollment.Progress)
		}
		if enrollment.Status != string(storage.EnrollmentInProgress) {
			t.Fatalf("status = %q, want %q", enrollment.Status, storage.EnrollmentInProgress)
		}

		enrollment = decodeAs[enrollmentDTO](t, env.do(t, http.MethodPut, path, token, progressUpdateRequest{CompletedLessons: []string{"l3", "l4"}}))
		if enrollment.Progress != 100 {
			t.Fatalf("progress = %d, want 100", enrollment.Progress)
		}
		if enrollment.Status != string(storage.EnrollmentCompleted) {
			t.Fatalf("status = %q, want %q", enrollment.Status, storage.EnrollmentCompleted)
		}
	})

	t.Run("course detail includes progress only for enrolled callers", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")
		course := seedCourse(t, env)
		path := fmt.Sprintf("/courses/%d", course.ID)

		anonymous := decodeAs[courseDTO](t, env.do(t, http.MethodGet, path, "", nil))
		if anonymous.Progress != nil {
			t.Fatalf("anonymous progress = %+v, want none", anonymous.Progress)
		}

		if recorder := env.do(t, http.MethodPost, path+"/enrollments", token, nil); recorder.Code != http.StatusCreated {
			t.Fatalf("enroll: status = %d", recorder.Code)
		}
		enrolled := decodeAs[courseDTO](t, env.do(t, http.MethodGet, path, token, nil))
		if enrolled.Progress == nil {
			t.Fatal("expected progress for an enrolled caller")
		}
		if enrolled.Progress.Status != string(storage.EnrollmentEnrolled) {
			t.Fatalf("progress status = %q, want %q", enrolled.Progress.Status, storage.EnrollmentEnrolled)
		}
	})
}

func TestCpdHandlers(t *testing.T) {
	t.Parallel()

	t.Run("summary counts only verified activities", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		recorder := env.do(t, http.MethodPost, "/cpd/activities", userToken, cpdActivityRequest{
			Title:      "Radiation Safety Refresher",
			Provider:   "National Board",
			Points:     10,
			CategoryID: 1,
			Date:       time.Now().UTC().Format(time.RFC3339),
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("log activity: status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		activity := decodeAs[cpdActivityDTO](t, recorder)
		if activity.Status != string(storage.VerificationPending) {
			t.Fatalf("status = %q, want %q", activity.Status, storage.VerificationPending)
		}

		summary := decodeAs[cpdSummaryDTO](t, env.do(t, http.MethodGet, "/cpd/summary", userToken, nil))
		if summary.TotalEarned != 0 {
			t.Fatalf("total_earned = %d before verification, want 0", summary.TotalEarned)
		}

		verifyPath := fmt.Sprintf("/cpd/activities/%d/verification", activity.ID)
		verified := decodeAs[cpdActivityDTO](t, env.do(t, http.MethodPost, verifyPath, rpToken, verificationRequest{Status: "verified"}))
		if verified.Status != string(storage.VerificationVerified) {
			t.Fatalf("status = %q after review, want verified", verified.Status)
		}

		summary = decodeAs[cpdSummaryDTO](t, env.do(t, http.MethodGet, "/cpd/summary", userToken, nil))
		if summary.TotalEarned != 10 {
			t.Fatalf("total_earned = %d, want 10", summary.TotalEarned)
		}
		var clinical *cpdCategorySummaryDTO
		for i := range summary.Categories {
			if summary.Categories[i].CategoryID == 1 {
				clinical = &summary.Categories[i]
			}
		}
		if clinical == nil || clinical.EarnedPoints != 10 {
			t.Fatalf("category 1 summary = %+v, want 10 earned points", clinical)
		}
	})

	t.Run("verification is restricted to resource persons", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		token := env.login(t, "amara.osei")

		recorder := env.do(t, http.MethodPost, "/cpd/activities/1/verification", token, verificationRequest{Status: "verified"})
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
	})
}

func TestCommunityHandlers(t *testing.T) {
	t.Parallel()

	t.Run("discussions appear in the recent listing after posting", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		category := decodeAs[forumCategoryDTO](t, env.do(t, http.MethodPost, "/community/categories", rpToken, forumCategoryRequest{
			Name:        "Imaging Techniques",
			Description: "Protocol talk",
		}))
		if category.ID == 0 {
			t.Fatal("expected an assigned category id")
		}

		recorder := env.do(t, http.MethodPost, "/community/discussions", userToken, discussionRequest{
			CategoryID: category.ID,
			Title:      "Contrast timing in CT",
			Body:       "What delays are you using for portal venous studies?",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("post discussion: status = %d, body %s", recorder.Code, recorder.Body.String())
		}

		discussions := decodeAs[[]discussionDTO](t, env.do(t, http.MethodGet, "/community/discussions?sort=recent", "", nil))
		if len(discussions) != 1 {
			t.Fatalf("len = %d, want 1", len(discussions))
		}
		if discussions[0].Title != "Contrast timing in CT" {
			t.Fatalf("title = %q", discussions[0].Title)
		}
		if discussions[0].Author == nil || discussions[0].Author.DisplayName != "amara.osei" {
			t.Fatalf("author = %+v, want the posting user", discussions[0].Author)
		}

		if recorder := env.do(t, http.MethodGet, "/community/discussions?sort=controversial", "", nil); recorder.Code != http.StatusBadRequest {
			t.Fatalf("unknown sort: status = %d, want %d", recorder.Code, http.StatusBadRequest)
		}
	})

	t.Run("mentorship offers are restricted to resource persons", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "priya.raman", storage.RoleResourcePerson)
		userToken := env.login(t, "amara.osei")
		rpToken := env.login(t, "priya.raman")

		offer := mentorshipRequest{
			Title:          "Early-career imaging mentorship",
			Description:    "Monthly case review sessions",
			Specialties:    []string{"CT", "MRI"},
			MenteeCapacity: 3,
		}

		if recorder := env.do(t, http.MethodPost, "/mentorships", userToken, offer); recorder.Code != http.StatusForbidden {
			t.Fatalf("regular user: status = %d, want %d", recorder.Code, http.StatusForbidden)
		}

		recorder := env.do(t, http.MethodPost, "/mentorships", rpToken, offer)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("resource person: status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		created := decodeAs[mentorshipDTO](t, recorder)
		if !created.Available {
			t.Fatal("new mentorship with open capacity should be available")
		}
	})
}

func TestCredentialHandlers(t *testing.T) {
	t.Parallel()

	t.Run("credentials are scoped to their owner", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.createAccount(t, "amara.osei", storage.RoleUser)
		env.createAccount(t, "tomas.lindqvist", storage.RoleUser)
		ownerToken := env.login(t, "amara.osei")
		otherToken := env.login(t, "tomas.lindqvist")

		recorder := env.do(t, http.MethodPost, "/credentials", ownerToken, credentialRequest{
			Title:    "Registered Radiographer",
			Issuer:   "National Board",
			Number:   "RR-2041",
			IssuedOn: time.Now().UTC().Format(time.RFC3339),
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("create: status = %d, body %s", recorder.Code, recorder.Body.String())
		}
		credential := decodeAs[credentialDTO](t, recorder)
		if credential.Status != string(storage.CredentialActive) {
			t.Fatalf("status = %q, want defaulted to active", credential.Status)
		}

		path := fmt.Sprintf("/credentials/%d", credential.ID)

		if recorder := env.do(t, http.MethodGet, path, otherToken, nil); recorder.Code != http.StatusForbidden {
			t.Fatalf("foreign read: status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
		others := decodeAs[[]credentialDTO](t, env.do(t, http.MethodGet, "/credentials", otherToken, nil))
		if len(others) != 0 {
			t.Fatalf("foreign listing = %d records, want 0", len(others))
		}

		status := string(storage.CredentialRevoked)
		updated := decodeAs[credentialDTO](t, env.do(t, http.MethodPut, path, ownerToken, credentialUpdateRequest{Status: &status}))
		if updated.Status != status {
			t.Fatalf("status = %q after update, want %q", updated.Status, status)
		}

		if recorder := env.do(t, http.MethodDelete, path, ownerToken, nil); recorder.Code != http.StatusNoContent {
			t.Fatalf("delete: status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if recorder := env.do(t, http.MethodGet, path, ownerToken, nil); recorder.Code != http.StatusNotFound {
			t.Fatalf("read after delete: status = %d, want %d", recorder.Code, http.StatusNotFound)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("unknown methods get 405 with an Allow header", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPatch, "/users", "", nil)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
		}
		if allow := recorder.Header().Get("Allow"); allow == "" {
			t.Fatal("expected an Allow header")
		}
	})

	t.Run("non numeric identifiers are not routed", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		if recorder := env.do(t, http.MethodGet, "/events/not-a-number", "", nil); recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
		}
	})
}
