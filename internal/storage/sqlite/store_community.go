package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cpd-marketplace/internal/storage"
)

// ListForumCategories returns the forum taxonomy in insertion order.
func (s *Store) ListForumCategories(ctx context.Context) ([]storage.ForumCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, discussion_count FROM forum_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]storage.ForumCategory, 0)
	for rows.Next() {
		var category storage.ForumCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.DiscussionCount); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// CreateForumCategory adds a new discussion bucket.
func (s *Store) CreateForumCategory(ctx context.Context, name, description string) (storage.ForumCategory, error) {
	if name == "" {
		return storage.ForumCategory{}, &storage.ValidationError{
			FieldErrors: map[string]string{"name": "name is required"},
		}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_categories (name, description, discussion_count) VALUES (?, ?, 0)`,
		name, description)
	if err != nil {
		return storage.ForumCategory{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.ForumCategory{}, fmt.Errorf("category insert id: %w", err)
	}
	return storage.ForumCategory{ID: id, Name: name, Description: description}, nil
}

// ListTrendingDiscussions returns the most engaged discussions, ranked by
// likes plus comments.
func (s *Store) ListTrendingDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error) {
	return s.listDiscussionSummaries(ctx, `ORDER BY (d.likes + d.comments) DESC, d.id DESC`)
}

// ListRecentDiscussions returns the newest discussions.
func (s *Store) ListRecentDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error) {
	return s.listDiscussionSummaries(ctx, `ORDER BY d.created_at DESC, d.id DESC`)
}

func (s *Store) listDiscussionSummaries(ctx context.Context, order string) ([]storage.DiscussionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.author_id, d.category_id, d.title, d.body, d.comments,
			d.likes, d.views, d.created_at, u.display_name, u.profession
		FROM discussions d
		JOIN users u ON u.id = d.author_id
		`+order+`
		LIMIT ?`, storage.DiscussionListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := s.now()
	summaries := make([]storage.DiscussionSummary, 0, storage.DiscussionListLimit)
	for rows.Next() {
		var (
			summary   storage.DiscussionSummary
			createdAt string
		)
		err := rows.Scan(
			&summary.ID, &summary.AuthorID, &summary.CategoryID, &summary.Title,
			&summary.Body, &summary.Comments, &summary.Likes, &summary.Views,
			&createdAt, &summary.Author.DisplayName, &summary.Author.Profession,
		)
		if err != nil {
			return nil, err
		}
		if summary.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		summary.Author.ID = summary.AuthorID
		summary.TimeAgo = storage.RelativeTime(now, summary.CreatedAt)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// CreateDiscussion inserts the post and bumps the category counter in one
// transaction.
func (s *Store) CreateDiscussion(ctx context.Context, input storage.DiscussionInput) (storage.Discussion, error) {
	if err := storage.ValidateDiscussionInput(input); err != nil {
		return storage.Discussion{}, err
	}

	var discussion storage.Discussion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, input.AuthorID).Scan(&exists); err != nil {
			return notFoundOn(err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM forum_categories WHERE id = ?`, input.CategoryID).Scan(&exists); err != nil {
			return notFoundOn(err)
		}

		now := s.now()
		result, err := tx.ExecContext(ctx, `
			INSERT INTO discussions (author_id, category_id, title, body, comments, likes, views, created_at)
			VALUES (?, ?, ?, ?, 0, 0, 0, ?)`,
			input.AuthorID, input.CategoryID, input.Title, input.Body, formatTime(now),
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("discussion insert id: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE forum_categories SET discussion_count = discussion_count + 1 WHERE id = ?`,
			input.CategoryID)
		if err != nil {
			return err
		}

		discussion = storage.Discussion{
			ID:         id,
			AuthorID:   input.AuthorID,
			CategoryID: input.CategoryID,
			Title:      input.Title,
			Body:       input.Body,
			CreatedAt:  now,
		}
		return nil
	})
	if err != nil {
		return storage.Discussion{}, err
	}
	return discussion, nil
}

// ListMentorshipOpportunities returns mentoring offers, newest first.
func (s *Store) ListMentorshipOpportunities(ctx context.Context) ([]storage.MentorshipOpportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, title, description, specialties, mentee_capacity,
			current_mentees, available, created_at
		FROM mentorships
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opportunities := make([]storage.MentorshipOpportunity, 0)
	for rows.Next() {
		var (
			opportunity    storage.MentorshipOpportunity
			specialtiesRaw string
			available      int
			createdAt      string
		)
		err := rows.Scan(
			&opportunity.ID, &opportunity.AuthorID, &opportunity.Title,
			&opportunity.Description, &specialtiesRaw, &opportunity.MenteeCapacity,
			&opportunity.CurrentMentees, &available, &createdAt,
		)
		if err != nil {
			return nil, err
		}
		if err := decodeJSON(specialtiesRaw, &opportunity.Specialties); err != nil {
			return nil, err
		}
		opportunity.Available = available != 0
		if opportunity.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		opportunities = append(opportunities, opportunity)
	}
	return opportunities, rows.Err()
}

// CreateMentorshipOpportunity records a resource person's mentoring offer.
func (s *Store) CreateMentorshipOpportunity(ctx context.Context, input storage.MentorshipInput) (storage.MentorshipOpportunity, error) {
	if err := storage.ValidateMentorshipInput(input); err != nil {
		return storage.MentorshipOpportunity{}, err
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, input.AuthorID).Scan(&exists); err != nil {
		return storage.MentorshipOpportunity{}, notFoundOn(err)
	}

	specialties, err := encodeJSON(input.Specialties)
	if err != nil {
		return storage.MentorshipOpportunity{}, err
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO mentorships (author_id, title, description, specialties, mentee_capacity, current_mentees, available, created_at)
		VALUES (?, ?, ?, ?, ?, 0, 1, ?)`,
		input.AuthorID, input.Title, input.Description, specialties,
		input.MenteeCapacity, formatTime(now),
	)
	if err != nil {
		return storage.MentorshipOpportunity{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.MentorshipOpportunity{}, fmt.Errorf("mentorship insert id: %w", err)
	}

	return storage.MentorshipOpportunity{
		ID:             id,
		AuthorID:       input.AuthorID,
		Title:          input.Title,
		Description:    input.Description,
		Specialties:    input.Specialties,
		MenteeCapacity: input.MenteeCapacity,
		Available:      true,
		CreatedAt:      now,
	}, nil
}
