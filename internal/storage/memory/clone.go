package memory

import "github.com/example/cpd-marketplace/internal/storage"

// Stored records are cloned on the way in and out so callers can never alias
// the adapter's internal state.

func cloneUser(user storage.User) storage.User {
	return user
}

func cloneEvent(event storage.Event) storage.Event {
	clone := event
	clone.LearningOutcomes = cloneStrings(event.LearningOutcomes)
	clone.Speakers = append([]storage.Speaker(nil), event.Speakers...)
	clone.Agenda = append([]storage.AgendaItem(nil), event.Agenda...)
	clone.Tags = cloneStrings(event.Tags)
	clone.TicketTypes = append([]storage.TicketType(nil), event.TicketTypes...)
	return clone
}

func cloneCourse(course storage.Course) storage.Course {
	clone := course
	clone.Tags = cloneStrings(course.Tags)
	clone.Curriculum = make([]storage.CourseModule, len(course.Curriculum))
	for i, module := range course.Curriculum {
		clone.Curriculum[i] = storage.CourseModule{
			Title:   module.Title,
			Lessons: append([]storage.Lesson(nil), module.Lessons...),
		}
	}
	return clone
}

func cloneEnrollment(enrollment storage.CourseEnrollment) storage.CourseEnrollment {
	clone := enrollment
	clone.CompletedLessons = cloneStrings(enrollment.CompletedLessons)
	return clone
}

func cloneMentorship(m storage.MentorshipOpportunity) storage.MentorshipOpportunity {
	clone := m
	clone.Specialties = cloneStrings(m.Specialties)
	return clone
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}
