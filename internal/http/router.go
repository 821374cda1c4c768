package http

import (
	"net/http"
	"strconv"
	"strings"
)

// RouterConfig wires handlers into the marketplace route table. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Events      *EventHandler
	Courses     *CourseHandler
	Cpd         *CpdHandler
	Community   *CommunityHandler
	Credentials *CredentialHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			id, rest, ok := splitResourcePath(r.URL.Path, "/users/")
			if !ok {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch rest {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Users.Get(w, r)
				case http.MethodPut:
					cfg.Users.Update(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			case "privacy":
				requireMethod(w, r, http.MethodPut, cfg.Users.UpdatePrivacy)
			case "password":
				requireMethod(w, r, http.MethodPut, cfg.Users.UpdatePassword)
			case "registrations":
				requireMethod(w, r, http.MethodGet, cfg.Users.ListRegistrations)
			case "enrollments":
				requireMethod(w, r, http.MethodGet, cfg.Users.ListEnrollments)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Events != nil {
		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Events.List(w, r)
			case http.MethodPost:
				cfg.Events.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/events/upcoming", func(w http.ResponseWriter, r *http.Request) {
			requireMethod(w, r, http.MethodGet, cfg.Events.ListUpcoming)
		})
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			id, rest, ok := splitResourcePath(r.URL.Path, "/events/")
			if !ok {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch rest {
			case "":
				requireMethod(w, r, http.MethodGet, cfg.Events.Get)
			case "registrations":
				requireMethod(w, r, http.MethodPost, cfg.Events.Register)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Courses != nil {
		mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Courses.List(w, r)
			case http.MethodPost:
				cfg.Courses.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/courses/", func(w http.ResponseWriter, r *http.Request) {
			id, rest, ok := splitResourcePath(r.URL.Path, "/courses/")
			if !ok {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch rest {
			case "":
				requireMethod(w, r, http.MethodGet, cfg.Courses.Get)
			case "enrollments":
				requireMethod(w, r, http.MethodPost, cfg.Courses.Enroll)
			case "progress":
				requireMethod(w, r, http.MethodPut, cfg.Courses.UpdateProgress)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Cpd != nil {
		mux.HandleFunc("/cpd/summary", func(w http.ResponseWriter, r *http.Request) {
			requireMethod(w, r, http.MethodGet, cfg.Cpd.Summary)
		})
		mux.HandleFunc("/cpd/activities", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Cpd.ListActivities(w, r)
			case http.MethodPost:
				cfg.Cpd.CreateActivity(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/cpd/activities/", func(w http.ResponseWriter, r *http.Request) {
			id, rest, ok := splitResourcePath(r.URL.Path, "/cpd/activities/")
			if !ok || rest != "verification" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			requireMethod(w, r, http.MethodPost, cfg.Cpd.Verify)
		})
	}

	if cfg.Community != nil {
		mux.HandleFunc("/community/categories", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Community.ListCategories(w, r)
			case http.MethodPost:
				cfg.Community.CreateCategory(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/community/discussions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Community.ListDiscussions(w, r)
			case http.MethodPost:
				cfg.Community.CreateDiscussion(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/mentorships", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Community.ListMentorships(w, r)
			case http.MethodPost:
				cfg.Community.CreateMentorship(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Credentials != nil {
		mux.HandleFunc("/credentials", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Credentials.List(w, r)
			case http.MethodPost:
				cfg.Credentials.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/credentials/", func(w http.ResponseWriter, r *http.Request) {
			id, rest, ok := splitResourcePath(r.URL.Path, "/credentials/")
			if !ok || rest != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch r.Method {
			case http.MethodGet:
				cfg.Credentials.Get(w, r)
			case http.MethodPut:
				cfg.Credentials.Update(w, r)
			case http.MethodDelete:
				cfg.Credentials.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitResourcePath resolves "/prefix/{id}" and "/prefix/{id}/{rest}" paths.
func splitResourcePath(path, prefix string) (int64, string, bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if trimmed == "" || trimmed == path {
		return 0, "", false
	}

	rawID := trimmed
	rest := ""
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		rawID = trimmed[:idx]
		rest = strings.Trim(trimmed[idx+1:], "/")
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, rest, true
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string, handle func(http.ResponseWriter, *http.Request)) {
	if r.Method != method {
		methodNotAllowed(w, method)
		return
	}
	handle(w, r)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
