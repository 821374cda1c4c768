package sqlite

import (
	"context"

	"github.com/example/cpd-marketplace/internal/storage"
)

// GetCpdSummary aggregates verified points per category against the annual
// requirements.
func (s *Store) GetCpdSummary(ctx context.Context, userID int64) (storage.CpdSummary, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
		return storage.CpdSummary{}, notFoundOn(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, SUM(points)
		FROM cpd_activities
		WHERE user_id = ? AND status = ?
		GROUP BY category_id`,
		userID, storage.VerificationVerified)
	if err != nil {
		return storage.CpdSummary{}, err
	}
	defer rows.Close()

	earned := make(map[int64]int)
	for rows.Next() {
		var categoryID int64
		var points int
		if err := rows.Scan(&categoryID, &points); err != nil {
			return storage.CpdSummary{}, err
		}
		earned[categoryID] = points
	}
	if err := rows.Err(); err != nil {
		return storage.CpdSummary{}, err
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

// ListCpdActivities returns a user's activities matching the filter, most
// recent first.
func (s *Store) ListCpdActivities(ctx context.Context, userID int64, filter storage.CpdActivityFilter) ([]storage.CpdActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, provider, points, category_id, date, status, created_at
		FROM cpd_activities
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]storage.CpdActivity, 0)
	for rows.Next() {
		activity, err := scanCpdActivity(rows)
		if err != nil {
			return nil, err
		}
		if filter.Matches(activity) {
			activities = append(activities, activity)
		}
	}
	return activities, rows.Err()
}

// CreateCpdActivity records a pending activity for later verification.
func (s *Store) CreateCpdActivity(ctx context.Context, userID int64, input storage.CpdActivityInput) (storage.CpdActivity, error) {
	if err := storage.ValidateCpdActivityInput(input); err != nil {
		return storage.CpdActivity{}, err
	}
	if _, ok := storage.CpdCategoryByID(input.CategoryID); !ok {
		return storage.CpdActivity{}, storage.ErrNotFound
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
		return storage.CpdActivity{}, notFoundOn(err)
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO cpd_activities (user_id, title, provider, points, category_id, date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.Title, input.Provider, input.Points, input.CategoryID,
		formatTime(input.Date), storage.VerificationPending, formatTime(now),
	)
	if err != nil {
		return storage.CpdActivity{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.CpdActivity{}, err
	}
	return s.getCpdActivity(ctx, id)
}

// VerifyCpdActivity transitions an activity's verification status.
func (s *Store) VerifyCpdActivity(ctx context.Context, id int64, status storage.VerificationStatus) (storage.CpdActivity, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE cpd_activities SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return storage.CpdActivity{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.CpdActivity{}, err
	}
	if affected == 0 {
		return storage.CpdActivity{}, storage.ErrNotFound
	}
	return s.getCpdActivity(ctx, id)
}

func (s *Store) getCpdActivity(ctx context.Context, id int64) (storage.CpdActivity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, provider, points, category_id, date, status, created_at
		FROM cpd_activities WHERE id = ?`, id)
	activity, err := scanCpdActivity(row)
	if err != nil {
		return storage.CpdActivity{}, notFoundOn(err)
	}
	return activity, nil
}

func scanCpdActivity(row userRowScanner) (storage.CpdActivity, error) {
	var (
		activity  storage.CpdActivity
		date      string
		createdAt string
	)
	err := row.Scan(
		&activity.ID, &activity.UserID, &activity.Title, &activity.Provider,
		&activity.Points, &activity.CategoryID, &date, &activity.Status, &createdAt,
	)
	if err != nil {
		return storage.CpdActivity{}, err
	}
	if activity.Date, err = parseTime(date); err != nil {
		return storage.CpdActivity{}, err
	}
	if activity.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.CpdActivity{}, err
	}
	return activity, nil
}
