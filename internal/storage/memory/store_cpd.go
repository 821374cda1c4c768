package memory

import (
	"context"
	"sort"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- CpdStore implementation ---

// GetCpdSummary aggregates a user's verified points against the fixed
// category requirements.
func (s *Store) GetCpdSummary(ctx context.Context, userID int64) (storage.CpdSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return storage.CpdSummary{}, storage.ErrNotFound
	}

	earned := make(map[int64]int)
	for _, activity := range s.cpdActivities {
		if activity.UserID != userID || activity.Status != storage.VerificationVerified {
			continue
		}
		earned[activity.CategoryID] += activity.Points
	}

	summary := storage.CpdSummary{UserID: userID}
	for _, category := range storage.DefaultCpdCategories() {
		points := earned[category.ID]
		summary.Categories = append(summary.Categories, storage.CpdCategorySummary{
			Category:     category,
			EarnedPoints: points,
		})
		summary.TotalEarned += points
		summary.TotalRequired += category.RequiredPoints
	}
	return summary, nil
}

// ListCpdActivities returns a user's activities matching the filter, newest
// first.
func (s *Store) ListCpdActivities(ctx context.Context, userID int64, filter storage.CpdActivityFilter) ([]storage.CpdActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make([]storage.CpdActivity, 0)
	for _, activity := range s.cpdActivities {
		if activity.UserID != userID {
			continue
		}
		if !filter.Matches(activity) {
			continue
		}
		activities = append(activities, activity)
	}

	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Date.Equal(activities[j].Date) {
			return activities[i].ID > activities[j].ID
		}
		return activities[i].Date.After(activities[j].Date)
	})
	return activities, nil
}

// CreateCpdActivity logs a pending activity for the user.
func (s *Store) CreateCpdActivity(ctx context.Context, userID int64, input storage.CpdActivityInput) (storage.CpdActivity, error) {
	if err := storage.ValidateCpdActivityInput(input); err != nil {
		return storage.CpdActivity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return storage.CpdActivity{}, storage.ErrNotFound
	}
	if _, ok := storage.CpdCategoryByID(input.CategoryID); !ok {
		return storage.CpdActivity{}, storage.ErrNotFound
	}

	s.counters.cpdActivity++
	activity := storage.CpdActivity{
		ID:         s.counters.cpdActivity,
		UserID:     userID,
		Title:      input.Title,
		Provider:   input.Provider,
		Points:     input.Points,
		CategoryID: input.CategoryID,
		Date:       input.Date,
		Status:     storage.VerificationPending,
		CreatedAt:  s.now(),
	}
	s.cpdActivities[activity.ID] = activity
	return activity, nil
}

// VerifyCpdActivity moves a logged activity to verified or rejected.
func (s *Store) VerifyCpdActivity(ctx context.Context, id int64, status storage.VerificationStatus) (storage.CpdActivity, error) {
	if status != storage.VerificationVerified && status != storage.VerificationRejected {
		vErr := &storage.ValidationError{FieldErrors: map[string]string{"status": "status must be verified or rejected"}}
		return storage.CpdActivity{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.cpdActivities[id]
	if !ok {
		return storage.CpdActivity{}, storage.ErrNotFound
	}

	activity.Status = status
	s.cpdActivities[id] = activity
	return activity, nil
}
