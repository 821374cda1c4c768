package memory

import (
	"context"
	"sort"

	"github.com/example/cpd-marketplace/internal/storage"
)

// --- CourseStore implementation ---

// ListCourses returns courses matching the filter, sorted alphabetically by
// title. The empty filter returns the whole catalog.
func (s *Store) ListCourses(ctx context.Context, filter storage.CourseFilter) ([]storage.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]storage.Course, 0)
	for _, course := range s.courses {
		if !filter.Matches(course) {
			continue
		}
		courses = append(courses, cloneCourse(course))
	}

	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Title == courses[j].Title {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].Title < courses[j].Title
	})
	return courses, nil
}

// GetCourse retrieves a course by ID.
func (s *Store) GetCourse(ctx context.Context, id int64) (storage.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return storage.Course{}, storage.ErrNotFound
	}
	return cloneCourse(course), nil
}

// GetCourseForUser retrieves a course enriched with the caller's progress.
// A caller without an enrollment receives the course with a nil progress
// object; that is not an error.
func (s *Store) GetCourseForUser(ctx context.Context, id, userID int64) (storage.CourseDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return storage.CourseDetail{}, storage.ErrNotFound
	}

	detail := storage.CourseDetail{Course: cloneCourse(course)}
	if enrollment, ok := s.enrollmentForPairLocked(userID, id); ok {
		detail.Progress = &storage.CourseProgress{
			Status:       enrollment.Status,
			Percentage:   enrollment.Progress,
			LastAccessed: storage.LastAccessedLabel(s.now(), enrollment.LastAccessedAt),
		}
	}
	return detail, nil
}

// CreateCourse validates input and stores the course, deriving module and
// lesson counts from the curriculum.
func (s *Store) CreateCourse(ctx context.Context, input storage.CourseInput) (storage.Course, error) {
	if err := storage.ValidateCourseInput(input); err != nil {
		return storage.Course{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lessons := 0
	for _, module := range input.Curriculum {
		lessons += len(module.Lessons)
	}

	now := s.now()
	s.counters.course++
	course := storage.Course{
		ID:          s.counters.course,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		Instructor:  input.Instructor,
		Price:       input.Price,
		CpdPoints:   input.CpdPoints,
		ModuleCount: len(input.Curriculum),
		LessonCount: lessons,
		Curriculum:  input.Curriculum,
		Tags:        cloneStrings(input.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.courses[course.ID] = cloneCourse(course)
	return cloneCourse(course), nil
}

// EnrollInCourse creates an enrollment at zero progress. The duplicate check
// and insert run under the write lock, so at most one enrollment can exist
// per (user, course) pair.
func (s *Store) EnrollInCourse(ctx context.Context, userID, courseID int64) (storage.CourseEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return storage.CourseEnrollment{}, storage.ErrNotFound
	}
	if _, ok := s.courses[courseID]; !ok {
		return storage.CourseEnrollment{}, storage.ErrNotFound
	}
	if _, ok := s.enrollmentForPairLocked(userID, courseID); ok {
		return storage.CourseEnrollment{}, storage.ErrAlreadyEnrolled
	}

	now := s.now()
	s.counters.enrollment++
	enrollment := storage.CourseEnrollment{
		ID:             s.counters.enrollment,
		UserID:         userID,
		CourseID:       courseID,
		Progress:       0,
		Status:         storage.EnrollmentEnrolled,
		LastAccessedAt: now,
		EnrolledAt:     now,
	}
	s.enrollments[enrollment.ID] = enrollment
	return cloneEnrollment(enrollment), nil
}

// UpdateCourseProgress marks lessons complete and recomputes the percentage.
// Reaching every lesson flips the enrollment to completed.
func (s *Store) UpdateCourseProgress(ctx context.Context, userID, courseID int64, completedLessons []string) (storage.CourseEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[courseID]
	if !ok {
		return storage.CourseEnrollment{}, storage.ErrNotFound
	}
	enrollment, ok := s.enrollmentForPairLocked(userID, courseID)
	if !ok {
		return storage.CourseEnrollment{}, storage.ErrNotFound
	}

	seen := make(map[string]bool, len(enrollment.CompletedLessons))
	for _, lesson := range enrollment.CompletedLessons {
		seen[lesson] = true
	}
	for _, lesson := range completedLessons {
		if !seen[lesson] {
			seen[lesson] = true
			enrollment.CompletedLessons = append(enrollment.CompletedLessons, lesson)
		}
	}

	if course.LessonCount > 0 {
		enrollment.Progress = len(enrollment.CompletedLessons) * 100 / course.LessonCount
		if enrollment.Progress > 100 {
			enrollment.Progress = 100
		}
	}
	switch {
	case course.LessonCount > 0 && len(enrollment.CompletedLessons) >= course.LessonCount:
		enrollment.Progress = 100
		enrollment.Status = storage.EnrollmentCompleted
	case len(enrollment.CompletedLessons) > 0:
		enrollment.Status = storage.EnrollmentInProgress
	}
	enrollment.LastAccessedAt = s.now()

	s.enrollments[enrollment.ID] = enrollment
	return cloneEnrollment(enrollment), nil
}

// ListEnrollmentsForUser returns a user's enrollments, most recently
// accessed first.
func (s *Store) ListEnrollmentsForUser(ctx context.Context, userID int64) ([]storage.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enrollments := make([]storage.CourseEnrollment, 0)
	for _, enrollment := range s.enrollments {
		if enrollment.UserID == userID {
			enrollments = append(enrollments, cloneEnrollment(enrollment))
		}
	}

	sort.Slice(enrollments, func(i, j int) bool {
		if enrollments[i].LastAccessedAt.Equal(enrollments[j].LastAccessedAt) {
			return enrollments[i].ID > enrollments[j].ID
		}
		return enrollments[i].LastAccessedAt.After(enrollments[j].LastAccessedAt)
	})
	return enrollments, nil
}

func (s *Store) enrollmentForPairLocked(userID, courseID int64) (storage.CourseEnrollment, bool) {
	for _, enrollment := range s.enrollments {
		if enrollment.UserID == userID && enrollment.CourseID == courseID {
			return enrollment, true
		}
	}
	return storage.CourseEnrollment{}, false
}
