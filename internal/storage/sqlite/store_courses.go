package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cpd-marketplace/internal/storage"
)

const courseColumns = `id, title, description, category, difficulty, instructor,
	price, cpd_points, module_count, lesson_count, curriculum, tags,
	created_at, updated_at`

func scanCourse(row userRowScanner) (storage.Course, error) {
	var (
		course        storage.Course
		curriculumRaw string
		tagsRaw       string
		createdAtRaw  string
		updatedAtRaw  string
	)
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Category,
		&course.Difficulty,
		&course.Instructor,
		&course.Price,
		&course.CpdPoints,
		&course.ModuleCount,
		&course.LessonCount,
		&curriculumRaw,
		&tagsRaw,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		return storage.Course{}, err
	}

	if err := decodeJSON(curriculumRaw, &course.Curriculum); err != nil {
		return storage.Course{}, err
	}
	if err := decodeJSON(tagsRaw, &course.Tags); err != nil {
		return storage.Course{}, err
	}
	if course.CreatedAt, err = parseTime(createdAtRaw); err != nil {
		return storage.Course{}, err
	}
	if course.UpdatedAt, err = parseTime(updatedAtRaw); err != nil {
		return storage.Course{}, err
	}
	return course, nil
}

// ListCourses returns courses matching the filter, alphabetically by title.
func (s *Store) ListCourses(ctx context.Context, filter storage.CourseFilter) ([]storage.Course, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + courseColumns + ` FROM courses WHERE 1=1`)
	args := make([]any, 0, 8)

	if filter.Search != "" {
		query.WriteString(` AND (title LIKE ? OR description LIKE ?)`)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(filter.Categories) > 0 {
		query.WriteString(` AND category IN (` + placeholders(len(filter.Categories)) + `)`)
		for _, c := range filter.Categories {
			args = append(args, c)
		}
	}
	if len(filter.Difficulties) > 0 {
		query.WriteString(` AND difficulty IN (` + placeholders(len(filter.Difficulties)) + `)`)
		for _, d := range filter.Difficulties {
			args = append(args, string(d))
		}
	}
	if min, max, ok := storage.CpdBucketRange(filter.CpdPoints); ok {
		query.WriteString(` AND cpd_points >= ? AND cpd_points <= ?`)
		args = append(args, min, max)
	}
	query.WriteString(` ORDER BY title, id`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]storage.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// GetCourse retrieves a course by ID.
func (s *Store) GetCourse(ctx context.Context, id int64) (storage.Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	course, err := scanCourse(row)
	if err != nil {
		return storage.Course{}, notFoundOn(err)
	}
	return course, nil
}

// GetCourseForUser retrieves a course enriched with the caller's progress
// when an enrollment exists.
func (s *Store) GetCourseForUser(ctx context.Context, id, userID int64) (storage.CourseDetail, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return storage.CourseDetail{}, err
	}
	detail := storage.CourseDetail{Course: course}

	enrollment, err := s.enrollmentForPair(ctx, userID, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return detail, nil
		}
		return storage.CourseDetail{}, err
	}

	detail.Progress = &storage.CourseProgress{
		Status:       enrollment.Status,
		Percentage:   enrollment.Progress,
		LastAccessed: storage.LastAccessedLabel(s.now(), enrollment.LastAccessedAt),
	}
	return detail, nil
}

// CreateCourse validates input and inserts the course.
func (s *Store) CreateCourse(ctx context.Context, input storage.CourseInput) (storage.Course, error) {
	if err := storage.ValidateCourseInput(input); err != nil {
		return storage.Course{}, err
	}

	lessons := 0
	for _, module := range input.Curriculum {
		lessons += len(module.Lessons)
	}
	curriculum, err := encodeJSON(input.Curriculum)
	if err != nil {
		return storage.Course{}, err
	}
	tags, err := encodeJSON(input.Tags)
	if err != nil {
		return storage.Course{}, err
	}

	now := formatTime(s.now())
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (title, description, category, difficulty, instructor,
			price, cpd_points, module_count, lesson_count, curriculum, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Title, input.Description, input.Category, input.Difficulty,
		input.Instructor, input.Price, input.CpdPoints, len(input.Curriculum),
		lessons, curriculum, tags, now, now,
	)
	if err != nil {
		return storage.Course{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.Course{}, fmt.Errorf("course insert id: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// EnrollInCourse creates an enrollment at zero progress. The UNIQUE
// (user_id, course_id) index backs the duplicate check.
func (s *Store) EnrollInCourse(ctx context.Context, userID, courseID int64) (storage.CourseEnrollment, error) {
	var enrollment storage.CourseEnrollment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
			return notFoundOn(err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id = ?`, courseID).Scan(&exists); err != nil {
			return notFoundOn(err)
		}

		var duplicate int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM course_enrollments WHERE user_id = ? AND course_id = ?`,
			userID, courseID).Scan(&duplicate)
		if err == nil {
			return storage.ErrAlreadyEnrolled
		}
		if err != sql.ErrNoRows {
			return err
		}

		now := s.now()
		enrollment = storage.CourseEnrollment{
			UserID:         userID,
			CourseID:       courseID,
			Progress:       0,
			Status:         storage.EnrollmentEnrolled,
			LastAccessedAt: now,
			EnrolledAt:     now,
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO course_enrollments (user_id, course_id, progress, status, completed_lessons, last_accessed_at, enrolled_at)
			VALUES (?, ?, 0, ?, '[]', ?, ?)`,
			userID, courseID, enrollment.Status, formatTime(now), formatTime(now),
		)
		if err != nil {
			return mapConstraintError(err)
		}
		if enrollment.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("enrollment insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.CourseEnrollment{}, err
	}
	return enrollment, nil
}

// UpdateCourseProgress marks lessons complete and recomputes the percentage.
func (s *Store) UpdateCourseProgress(ctx context.Context, userID, courseID int64, completedLessons []string) (storage.CourseEnrollment, error) {
	var enrollment storage.CourseEnrollment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var lessonCount int
		if err := tx.QueryRowContext(ctx, `SELECT lesson_count FROM courses WHERE id = ?`, courseID).Scan(&lessonCount); err != nil {
			return notFoundOn(err)
		}

		var (
			completedRaw string
			lastAccessed sql.NullString
			enrolledAt   string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT id, progress, status, completed_lessons, last_accessed_at, enrolled_at
			FROM course_enrollments WHERE user_id = ? AND course_id = ?`,
			userID, courseID,
		).Scan(&enrollment.ID, &enrollment.Progress, &enrollment.Status, &completedRaw, &lastAccessed, &enrolledAt)
		if err != nil {
			return notFoundOn(err)
		}
		enrollment.UserID = userID
		enrollment.CourseID = courseID
		if err := decodeJSON(completedRaw, &enrollment.CompletedLessons); err != nil {
			return err
		}
		if enrollment.EnrolledAt, err = parseTime(enrolledAt); err != nil {
			return err
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

		if lessonCount > 0 {
			enrollment.Progress = len(enrollment.CompletedLessons) * 100 / lessonCount
			if enrollment.Progress > 100 {
				enrollment.Progress = 100
			}
		}
		switch {
		case lessonCount > 0 && len(enrollment.CompletedLessons) >= lessonCount:
			enrollment.Progress = 100
			enrollment.Status = storage.EnrollmentCompleted
		case len(enrollment.CompletedLessons) > 0:
			enrollment.Status = storage.EnrollmentInProgress
		}
		enrollment.LastAccessedAt = s.now()

		completed, err := encodeJSON(enrollment.CompletedLessons)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE course_enrollments SET progress = ?, status = ?, completed_lessons = ?, last_accessed_at = ?
			WHERE id = ?`,
			enrollment.Progress, enrollment.Status, completed,
			formatTime(enrollment.LastAccessedAt), enrollment.ID,
		)
		return err
	})
	if err != nil {
		return storage.CourseEnrollment{}, err
	}
	return enrollment, nil
}

// ListEnrollmentsForUser returns a user's enrollments, most recently
// accessed first.
func (s *Store) ListEnrollmentsForUser(ctx context.Context, userID int64) ([]storage.CourseEnrollment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, progress, status, completed_lessons, last_accessed_at, enrolled_at
		FROM course_enrollments
		WHERE user_id = ?
		ORDER BY last_accessed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]storage.CourseEnrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

func (s *Store) enrollmentForPair(ctx context.Context, userID, courseID int64) (storage.CourseEnrollment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, course_id, progress, status, completed_lessons, last_accessed_at, enrolled_at
		FROM course_enrollments WHERE user_id = ? AND course_id = ?`,
		userID, courseID)
	enrollment, err := scanEnrollment(row)
	if err != nil {
		return storage.CourseEnrollment{}, notFoundOn(err)
	}
	return enrollment, nil
}

func scanEnrollment(row userRowScanner) (storage.CourseEnrollment, error) {
	var (
		enrollment   storage.CourseEnrollment
		completedRaw string
		lastAccessed sql.NullString
		enrolledAt   string
	)
	err := row.Scan(
		&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.Progress, &enrollment.Status, &completedRaw,
		&lastAccessed, &enrolledAt,
	)
	if err != nil {
		return storage.CourseEnrollment{}, err
	}

	if err := decodeJSON(completedRaw, &enrollment.CompletedLessons); err != nil {
		return storage.CourseEnrollment{}, err
	}
	if lastAccessed.Valid {
		if enrollment.LastAccessedAt, err = parseTime(lastAccessed.String); err != nil {
			return storage.CourseEnrollment{}, err
		}
	}
	if enrollment.EnrolledAt, err = parseTime(enrolledAt); err != nil {
		return storage.CourseEnrollment{}, err
	}
	return enrollment, nil
}
