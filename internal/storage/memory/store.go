// Package memory implements the storage port with in-process maps. It is the
// reference adapter: one keyed mapping and one monotonically increasing
// counter per entity family, full-scan filters, and a single RWMutex making
// every compound check-then-write sequence atomic.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/storage"
)

// Store is the in-memory storage adapter. All listings are O(n) scans, which
// is acceptable at demo scale only.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users           map[int64]storage.User
	events          map[int64]storage.Event
	ticketTypes     map[int64]storage.TicketType
	registrations   map[int64]storage.EventRegistration
	courses         map[int64]storage.Course
	enrollments     map[int64]storage.CourseEnrollment
	cpdActivities   map[int64]storage.CpdActivity
	forumCategories map[int64]storage.ForumCategory
	discussions     map[int64]storage.Discussion
	mentorships     map[int64]storage.MentorshipOpportunity
	credentials     map[int64]storage.Credential
	sessions        map[int64]storage.Session

	counters counters
}

// counters tracks the next identifier per entity family. Identifiers are
// never reused and never persisted across restarts.
type counters struct {
	user         int64
	event        int64
	ticketType   int64
	registration int64
	course       int64
	enrollment   int64
	cpdActivity  int64
	category     int64
	discussion   int64
	mentorship   int64
	credential   int64
	session      int64
}

// New returns an empty store. Demo content is loaded only when the caller
// invokes Seed explicitly.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty store using the supplied time source.
func NewWithClock(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:             now,
		users:           make(map[int64]storage.User),
		events:          make(map[int64]storage.Event),
		ticketTypes:     make(map[int64]storage.TicketType),
		registrations:   make(map[int64]storage.EventRegistration),
		courses:         make(map[int64]storage.Course),
		enrollments:     make(map[int64]storage.CourseEnrollment),
		cpdActivities:   make(map[int64]storage.CpdActivity),
		forumCategories: make(map[int64]storage.ForumCategory),
		discussions:     make(map[int64]storage.Discussion),
		mentorships:     make(map[int64]storage.MentorshipOpportunity),
		credentials:     make(map[int64]storage.Credential),
		sessions:        make(map[int64]storage.Session),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// Seed loads the demonstration dataset.
func (s *Store) Seed(ctx context.Context) error {
	return storage.SeedDemoData(ctx, s)
}

var _ storage.Store = (*Store)(nil)
var _ storage.Seeder = (*Store)(nil)

// --- UserStore implementation ---

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return cloneUser(user), nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(username)
	for _, user := range s.users {
		if strings.ToLower(user.Username) == lower {
			return cloneUser(user), nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

// CreateUser validates input, hashes the password, fills defaulted fields,
// and assigns the next identifier.
func (s *Store) CreateUser(ctx context.Context, input storage.UserInput) (storage.User, error) {
	if err := storage.ValidateUserInput(input); err != nil {
		return storage.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return storage.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(input.Username)
	for _, existing := range s.users {
		if strings.ToLower(existing.Username) == lower {
			return storage.User{}, storage.ErrAlreadyExists
		}
	}

	role := input.Role
	if role == "" {
		role = storage.RoleUser
	}

	now := s.now()
	s.counters.user++
	user := storage.User{
		ID:           s.counters.user,
		Username:     input.Username,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		Role:         role,
		Profession:   input.Profession,
		Bio:          input.Bio,
		Organization: input.Organization,
		Location:     input.Location,
		PasswordHash: hash,
		Privacy:      defaultPrivacySettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	return cloneUser(user), nil
}

// UpdateUser merges the non-nil fields of the update into the stored record.
func (s *Store) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}

	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.Profession != nil {
		user.Profession = *update.Profession
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Organization != nil {
		user.Organization = *update.Organization
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	user.UpdatedAt = s.now()

	s.users[id] = user
	return cloneUser(user), nil
}

// UpdatePrivacySettings merges the non-nil toggles into the nested privacy
// record only.
func (s *Store) UpdatePrivacySettings(ctx context.Context, id int64, update storage.PrivacyUpdate) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}

	if update.ShowEmail != nil {
		user.Privacy.ShowEmail = *update.ShowEmail
	}
	if update.ShowProfession != nil {
		user.Privacy.ShowProfession = *update.ShowProfession
	}
	if update.ShowOrganization != nil {
		user.Privacy.ShowOrganization = *update.ShowOrganization
	}
	if update.ShowLocation != nil {
		user.Privacy.ShowLocation = *update.ShowLocation
	}
	if update.AllowMessages != nil {
		user.Privacy.AllowMessages = *update.AllowMessages
	}
	user.UpdatedAt = s.now()

	s.users[id] = user
	return cloneUser(user), nil
}

// ChangePassword verifies the current password before storing a hash of the
// replacement. A mismatch leaves the stored hash untouched.
func (s *Store) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	if err := auth.VerifyPassword(user.PasswordHash, currentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return storage.ErrInvalidCredentials
		}
		return err
	}

	if len(newPassword) < 8 {
		vErr := &storage.ValidationError{FieldErrors: map[string]string{"new_password": "password must be at least 8 characters"}}
		return vErr
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	s.users[id] = user
	return nil
}

// SetUserPresence records whether the user is online. Going offline stamps
// the last-seen instant.
func (s *Store) SetUserPresence(ctx context.Context, id int64, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}

	user.Online = online
	if !online {
		user.LastSeenAt = s.now()
	}
	s.users[id] = user
	return nil
}

// ListResourcePersons returns instructor accounts sorted by display name.
func (s *Store) ListResourcePersons(ctx context.Context) ([]storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]storage.User, 0)
	for _, user := range s.users {
		if user.Role == storage.RoleResourcePerson {
			users = append(users, cloneUser(user))
		}
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName == users[j].DisplayName {
			return users[i].ID < users[j].ID
		}
		return users[i].DisplayName < users[j].DisplayName
	})
	return users, nil
}

func defaultPrivacySettings() storage.PrivacySettings {
	return storage.PrivacySettings{
		ShowEmail:        false,
		ShowProfession:   true,
		ShowOrganization: true,
		ShowLocation:     true,
		AllowMessages:    true,
	}
}
