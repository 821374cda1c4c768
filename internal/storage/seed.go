package storage

import (
	"context"
	"fmt"
	"time"
)

// SeedDemoData loads the demonstration dataset through the port. It works
// against any adapter and is invoked explicitly by callers that want sample
// content, typically local development and tests.
func SeedDemoData(ctx context.Context, store Store) error {
	now := time.Now()

	amara, err := store.CreateUser(ctx, UserInput{
		Username:     "amara.osei",
		Email:        "amara.osei@meridianhealth.example",
		DisplayName:  "Dr. Amara Osei",
		Password:     "cpd-demo-password",
		Role:         RoleUser,
		Profession:   "Clinical Pharmacist",
		Bio:          "Hospital pharmacist focused on antimicrobial stewardship.",
		Organization: "Meridian Health",
		Location:     "Leeds, UK",
	})
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	priya, err := store.CreateUser(ctx, UserInput{
		Username:     "priya.raman",
		Email:        "priya.raman@calderinstitute.example",
		DisplayName:  "Prof. Priya Raman",
		Password:     "cpd-demo-password",
		Role:         RoleResourcePerson,
		Profession:   "Professor of Health Ethics",
		Bio:          "Teaches professional ethics and supervises CPD accreditation reviews.",
		Organization: "Calder Institute",
		Location:     "Manchester, UK",
	})
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	tomas, err := store.CreateUser(ctx, UserInput{
		Username:     "tomas.lindqvist",
		Email:        "tomas.lindqvist@nordcare.example",
		DisplayName:  "Tomas Lindqvist",
		Password:     "cpd-demo-password",
		Role:         RoleUser,
		Profession:   "Physiotherapist",
		Organization: "NordCare Clinics",
		Location:     "Gothenburg, SE",
	})
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	events := []EventInput{
		{
			Title:       "Antimicrobial Stewardship Summit",
			Description: "Two-day summit on prescribing practice, resistance surveillance, and audit.",
			Date:        now.AddDate(0, 0, 5),
			StartTime:   "09:00",
			EndTime:     "17:00",
			Type:        EventInPerson,
			Category:    "Clinical Practice",
			Location:    "Leeds Conference Centre",
			Price:       249,
			CpdPoints:   6,
			Capacity:    180,
			LearningOutcomes: []string{
				"Interpret local resistance surveillance data",
				"Design a ward-level stewardship audit",
			},
			Speakers: []Speaker{
				{Name: "Prof. Priya Raman", Title: "Professor of Health Ethics", Organization: "Calder Institute"},
			},
			Agenda: []AgendaItem{
				{Time: "09:00", Title: "Registration and welcome"},
				{Time: "10:00", Title: "Keynote: resistance trends 2026"},
			},
			Tags: []string{"pharmacy", "stewardship"},
			TicketTypes: []TicketTypeInput{
				{Name: "Standard", Price: 249},
				{Name: "Early Career", Price: 129},
			},
		},
		{
			Title:       "Documentation and Consent Workshop",
			Description: "Interactive workshop on consent records and defensible documentation.",
			Date:        now.AddDate(0, 0, 12),
			StartTime:   "13:00",
			EndTime:     "16:30",
			Type:        EventVirtual,
			Category:    "Ethics & Professional Conduct",
			Price:       79,
			CpdPoints:   3,
			Capacity:    300,
			Tags:        []string{"ethics", "documentation"},
			TicketTypes: []TicketTypeInput{
				{Name: "General Admission", Price: 79},
			},
		},
		{
			Title:       "Rehabilitation Research Forum",
			Description: "Hybrid forum presenting current musculoskeletal rehabilitation research.",
			Date:        now.AddDate(0, 1, 3),
			StartTime:   "10:00",
			EndTime:     "15:00",
			Type:        EventHybrid,
			Category:    "Research & Education",
			Location:    "NordCare Auditorium",
			Price:       120,
			CpdPoints:   4,
			Capacity:    90,
			Tags:        []string{"physiotherapy", "research"},
			TicketTypes: []TicketTypeInput{
				{Name: "On-site", Price: 120},
				{Name: "Remote", Price: 60},
			},
		},
		{
			Title:       "Leading Small Clinical Teams",
			Description: "Evening seminar on supervision and delegation for first-time team leads.",
			Date:        now.AddDate(0, 0, 1),
			StartTime:   "18:00",
			EndTime:     "20:00",
			Type:        EventInPerson,
			Category:    "Leadership & Management",
			Location:    "Calder Institute, Room 4",
			Price:       35,
			CpdPoints:   1,
			Capacity:    40,
			Tags:        []string{"leadership"},
			TicketTypes: []TicketTypeInput{
				{Name: "Member", Price: 35},
			},
		},
	}
	for _, input := range events {
		if _, err := store.CreateEvent(ctx, input); err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
	}

	courses := []CourseInput{
		{
			Title:       "Foundations of Pharmacovigilance",
			Description: "Self-paced introduction to adverse event reporting and signal detection.",
			Category:    "Clinical Practice",
			Difficulty:  DifficultyBeginner,
			Instructor:  "Dr. Amara Osei",
			Price:       95,
			CpdPoints:   4,
			Curriculum: []CourseModule{
				{
					Title: "Reporting Basics",
					Lessons: []Lesson{
						{ID: "pv-1-1", Title: "Why reporting matters", Type: LessonVideo, Duration: "12m"},
						{ID: "pv-1-2", Title: "Case: missed signals", Type: LessonText, Duration: "8m"},
						{ID: "pv-1-3", Title: "Module quiz", Type: LessonQuiz, Duration: "10m"},
					},
				},
				{
					Title: "Signal Detection",
					Lessons: []Lesson{
						{ID: "pv-2-1", Title: "Disproportionality analysis", Type: LessonVideo, Duration: "18m"},
						{ID: "pv-2-2", Title: "Practical assignment", Type: LessonAssignment, Duration: "45m"},
					},
				},
			},
			Tags: []string{"pharmacy", "safety"},
		},
		{
			Title:       "Ethics of Remote Consultations",
			Description: "Consent, confidentiality, and boundaries in telehealth practice.",
			Category:    "Ethics & Professional Conduct",
			Difficulty:  DifficultyIntermediate,
			Instructor:  "Prof. Priya Raman",
			Price:       140,
			CpdPoints:   5,
			Curriculum: []CourseModule{
				{
					Title: "Consent at a Distance",
					Lessons: []Lesson{
						{ID: "et-1-1", Title: "Consent frameworks", Type: LessonVideo, Duration: "15m"},
						{ID: "et-1-2", Title: "Scenario review", Type: LessonQuiz, Duration: "12m"},
					},
				},
			},
			Tags: []string{"ethics", "telehealth"},
		},
		{
			Title:       "Advanced Research Methods for Clinicians",
			Description: "Study design, statistics refresher, and publication practice.",
			Category:    "Research & Education",
			Difficulty:  DifficultyAdvanced,
			Instructor:  "Prof. Priya Raman",
			Price:       220,
			CpdPoints:   8,
			Curriculum: []CourseModule{
				{
					Title: "Study Design",
					Lessons: []Lesson{
						{ID: "rm-1-1", Title: "Choosing a design", Type: LessonVideo, Duration: "20m"},
						{ID: "rm-1-2", Title: "Protocol assignment", Type: LessonAssignment, Duration: "60m"},
					},
				},
			},
			Tags: []string{"research"},
		},
	}
	for _, input := range courses {
		if _, err := store.CreateCourse(ctx, input); err != nil {
			return fmt.Errorf("seed courses: %w", err)
		}
	}

	clinical, err := store.CreateForumCategory(ctx, "Clinical Questions", "Case discussions and practice questions.")
	if err != nil {
		return fmt.Errorf("seed forum categories: %w", err)
	}
	careers, err := store.CreateForumCategory(ctx, "Careers & CPD", "Accreditation, portfolios, and career moves.")
	if err != nil {
		return fmt.Errorf("seed forum categories: %w", err)
	}

	discussions := []DiscussionInput{
		{AuthorID: amara.ID, CategoryID: clinical.ID, Title: "Switching IV to oral antibiotics earlier", Body: "Our audit suggests we switch later than guidance recommends. Experiences?"},
		{AuthorID: tomas.ID, CategoryID: careers.ID, Title: "Counting conference posters toward CPD", Body: "Does a presented poster count under Research & Education?"},
		{AuthorID: priya.ID, CategoryID: careers.ID, Title: "Portfolio review checklist", Body: "Sharing the checklist our accreditation panel uses."},
	}
	for _, input := range discussions {
		if _, err := store.CreateDiscussion(ctx, input); err != nil {
			return fmt.Errorf("seed discussions: %w", err)
		}
	}

	if _, err := store.CreateMentorshipOpportunity(ctx, MentorshipInput{
		AuthorID:       priya.ID,
		Title:          "Ethics case supervision",
		Description:    "Monthly one-to-one supervision for clinicians handling consent disputes.",
		Specialties:    []string{"ethics", "governance"},
		MenteeCapacity: 3,
	}); err != nil {
		return fmt.Errorf("seed mentorships: %w", err)
	}

	activities := []struct {
		userID int64
		input  CpdActivityInput
	}{
		{amara.ID, CpdActivityInput{Title: "Sepsis update webinar", Provider: "Royal College", Points: 2, CategoryID: 1, Date: now.AddDate(0, -2, 0)}},
		{amara.ID, CpdActivityInput{Title: "Consent masterclass", Provider: "Calder Institute", Points: 3, CategoryID: 2, Date: now.AddDate(0, -1, 0)}},
		{tomas.ID, CpdActivityInput{Title: "Gait analysis certification", Provider: "NordCare Academy", Points: 5, CategoryID: 1, Date: now.AddDate(0, -3, 0)}},
	}
	for _, entry := range activities {
		activity, err := store.CreateCpdActivity(ctx, entry.userID, entry.input)
		if err != nil {
			return fmt.Errorf("seed cpd activities: %w", err)
		}
		if _, err := store.VerifyCpdActivity(ctx, activity.ID, VerificationVerified); err != nil {
			return fmt.Errorf("seed cpd activities: %w", err)
		}
	}

	expiry := now.AddDate(1, 6, 0)
	credentials := []CredentialInput{
		{UserID: amara.ID, Title: "Registered Pharmacist", Issuer: "GPhC", Number: "RP-204981", IssuedOn: now.AddDate(-6, 0, 0), ExpiresOn: &expiry, Status: CredentialActive},
		{UserID: tomas.ID, Title: "Chartered Physiotherapist", Issuer: "CSP", Number: "CP-77215", IssuedOn: now.AddDate(-4, 0, 0), Status: CredentialActive},
	}
	for _, input := range credentials {
		if _, err := store.CreateCredential(ctx, input); err != nil {
			return fmt.Errorf("seed credentials: %w", err)
		}
	}

	return nil
}
