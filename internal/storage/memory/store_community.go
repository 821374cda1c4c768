package memory

import (
	"context"
	"sort"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- CommunityStore implementation ---

// ListForumCategories returns the taxonomy sorted by name.
func (s *Store) ListForumCategories(ctx context.Context) ([]storage.ForumCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]storage.ForumCategory, 0, len(s.forumCategories))
	for _, category := range s.forumCategories {
		categories = append(categories, category)
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name == categories[j].Name {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// CreateForumCategory adds a discussion bucket.
func (s *Store) CreateForumCategory(ctx context.Context, name, description string) (storage.ForumCategory, error) {
	if name == "" {
		vErr := &storage.ValidationError{FieldErrors: map[string]string{"name": "name is required"}}
		return storage.ForumCategory{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.category++
	category := storage.ForumCategory{
		ID:          s.counters.category,
		Name:        name,
		Description: description,
	}
	s.forumCategories[category.ID] = category
	return category, nil
}

// ListTrendingDiscussions returns the most engaged discussions, ranked by
// likes plus comments, enriched with author and relative-time metadata.
func (s *Store) ListTrendingDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	discussions := s.allDiscussionsLocked()
	sort.Slice(discussions, func(i, j int) bool {
		scoreI := discussions[i].Likes + discussions[i].Comments
		scoreJ := discussions[j].Likes + discussions[j].Comments
		if scoreI == scoreJ {
			return discussions[i].CreatedAt.After(discussions[j].CreatedAt)
		}
		return scoreI > scoreJ
	})

	return s.summarizeDiscussionsLocked(discussions), nil
}

// ListRecentDiscussions returns the newest discussions with the same
// enrichment as the trending listing.
func (s *Store) ListRecentDiscussions(ctx context.Context) ([]storage.DiscussionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	discussions := s.allDiscussionsLocked()
	sort.Slice(discussions, func(i, j int) bool {
		if discussions[i].CreatedAt.Equal(discussions[j].CreatedAt) {
			return discussions[i].ID > discussions[j].ID
		}
		return discussions[i].CreatedAt.After(discussions[j].CreatedAt)
	})

	return s.summarizeDiscussionsLocked(discussions), nil
}

// CreateDiscussion validates the post and its references, then stores it and
// bumps the category's discussion counter.
func (s *Store) CreateDiscussion(ctx context.Context, input storage.DiscussionInput) (storage.Discussion, error) {
	if err := storage.ValidateDiscussionInput(input); err != nil {
		return storage.Discussion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[input.AuthorID]; !ok {
		return storage.Discussion{}, storage.ErrNotFound
	}
	category, ok := s.forumCategories[input.CategoryID]
	if !ok {
		return storage.Discussion{}, storage.ErrNotFound
	}

	s.counters.discussion++
	discussion := storage.Discussion{
		ID:         s.counters.discussion,
		AuthorID:   input.AuthorID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Body:       input.Body,
		CreatedAt:  s.now(),
	}
	s.discussions[discussion.ID] = discussion

	category.DiscussionCount++
	s.forumCategories[category.ID] = category

	return discussion, nil
}

// ListMentorshipOpportunities returns offerings, newest first.
func (s *Store) ListMentorshipOpportunities(ctx context.Context) ([]storage.MentorshipOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mentorships := make([]storage.MentorshipOpportunity, 0, len(s.mentorships))
	for _, m := range s.mentorships {
		mentorships = append(mentorships, cloneMentorship(m))
	}

	sort.Slice(mentorships, func(i, j int) bool {
		if mentorships[i].CreatedAt.Equal(mentorships[j].CreatedAt) {
			return mentorships[i].ID > mentorships[j].ID
		}
		return mentorships[i].CreatedAt.After(mentorships[j].CreatedAt)
	})
	return mentorships, nil
}

// CreateMentorshipOpportunity validates and stores a mentoring offer.
func (s *Store) CreateMentorshipOpportunity(ctx context.Context, input storage.MentorshipInput) (storage.MentorshipOpportunity, error) {
	if err := storage.ValidateMentorshipInput(input); err != nil {
		return storage.MentorshipOpportunity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[input.AuthorID]; !ok {
		return storage.MentorshipOpportunity{}, storage.ErrNotFound
	}

	s.counters.mentorship++
	mentorship := storage.MentorshipOpportunity{
		ID:             s.counters.mentorship,
		AuthorID:       input.AuthorID,
		Title:          input.Title,
		Description:    input.Description,
		Specialties:    cloneStrings(input.Specialties),
		MenteeCapacity: input.MenteeCapacity,
		Available:      true,
		CreatedAt:      s.now(),
	}
	s.mentorships[mentorship.ID] = mentorship
	return cloneMentorship(mentorship), nil
}

func (s *Store) allDiscussionsLocked() []storage.Discussion {
	discussions := make([]storage.Discussion, 0, len(s.discussions))
	for _, discussion := range s.discussions {
		discussions = append(discussions, discussion)
	}
	return discussions
}

func (s *Store) summarizeDiscussionsLocked(discussions []storage.Discussion) []storage.DiscussionSummary {
	if len(discussions) > storage.DiscussionListLimit {
		discussions = discussions[:storage.DiscussionListLimit]
	}

	now := s.now()
	summaries := make([]storage.DiscussionSummary, 0, len(discussions))
	for _, discussion := range discussions {
		summary := storage.DiscussionSummary{
			Discussion: discussion,
			TimeAgo:    storage.RelativeTime(now, discussion.CreatedAt),
		}
		if author, ok := s.users[discussion.AuthorID]; ok {
			summary.Author = storage.AuthorSummary{
				ID:          author.ID,
				DisplayName: author.DisplayName,
				Profession:  author.Profession,
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
