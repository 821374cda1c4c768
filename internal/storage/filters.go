package storage

import (
	"strings"
	"time"
)

// DateBucket is a relative date-range preset used by event listings.
type DateBucket string

const (
	DateAny       DateBucket = ""
	DateToday     DateBucket = "today"
	DateThisWeek  DateBucket = "this-week"
	DateThisMonth DateBucket = "this-month"
	DateNextMonth DateBucket = "next-month"
)

// CpdBucket is a CPD-point range preset used by event and course listings.
type CpdBucket string

const (
	CpdAny       CpdBucket = ""
	CpdOneToTwo  CpdBucket = "1-2"
	CpdThreeFive CpdBucket = "3-5"
	CpdSixPlus   CpdBucket = "6+"
)

// EventFilter narrows event listings. Zero values match everything.
type EventFilter struct {
	Search     string
	Types      []EventType
	Categories []string
	Date       DateBucket
	CpdPoints  CpdBucket
}

// CourseFilter narrows course listings. Zero values match everything.
type CourseFilter struct {
	Search       string
	Categories   []string
	Difficulties []Difficulty
	CpdPoints    CpdBucket
}

// CpdActivityFilter narrows a user's CPD activity listing.
type CpdActivityFilter struct {
	Year       string
	CategoryID int64
	Search     string
}

// DateBucketRange resolves a bucket to a half-open [start, end) interval
// anchored at the supplied reference time. The second return is false when
// the bucket does not constrain the range.
func DateBucketRange(now time.Time, bucket DateBucket) (time.Time, time.Time, bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch bucket {
	case DateToday:
		return day, day.AddDate(0, 0, 1), true
	case DateThisWeek:
		// Monday-start week containing the reference day.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case DateThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	case DateNextMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		return start, start.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// CpdBucketRange resolves a bucket to an inclusive [min, max] point range.
// The second return is false when the bucket does not constrain the range.
func CpdBucketRange(bucket CpdBucket) (int, int, bool) {
	switch bucket {
	case CpdOneToTwo:
		return 1, 2, true
	case CpdThreeFive:
		return 3, 5, true
	case CpdSixPlus:
		return 6, int(^uint(0) >> 1), true
	default:
		return 0, 0, false
	}
}

// Matches reports whether the event satisfies every predicate of the filter
// at the supplied reference time.
func (f EventFilter) Matches(now time.Time, event Event) bool {
	if f.Search != "" && !containsFold(event.Title, f.Search) && !containsFold(event.Description, f.Search) {
		return false
	}
	if len(f.Types) > 0 && !containsEventType(f.Types, event.Type) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, event.Category) {
		return false
	}
	if start, end, ok := DateBucketRange(now, f.Date); ok {
		if event.Date.Before(start) || !event.Date.Before(end) {
			return false
		}
	}
	if min, max, ok := CpdBucketRange(f.CpdPoints); ok {
		if event.CpdPoints < min || event.CpdPoints > max {
			return false
		}
	}
	return true
}

// Matches reports whether the course satisfies every predicate of the filter.
func (f CourseFilter) Matches(course Course) bool {
	if f.Search != "" && !containsFold(course.Title, f.Search) && !containsFold(course.Description, f.Search) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, course.Category) {
		return false
	}
	if len(f.Difficulties) > 0 && !containsDifficulty(f.Difficulties, course.Difficulty) {
		return false
	}
	if min, max, ok := CpdBucketRange(f.CpdPoints); ok {
		if course.CpdPoints < min || course.CpdPoints > max {
			return false
		}
	}
	return true
}

// Matches reports whether the activity satisfies every predicate of the
// filter.
func (f CpdActivityFilter) Matches(activity CpdActivity) bool {
	if f.Year != "" && activity.Date.Format("2006") != f.Year {
		return false
	}
	if f.CategoryID != 0 && activity.CategoryID != f.CategoryID {
		return false
	}
	if f.Search != "" && !containsFold(activity.Title, f.Search) && !containsFold(activity.Provider, f.Search) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func containsEventType(values []EventType, target EventType) bool {
	for _, v := range values {
		if strings.EqualFold(string(v), string(target)) {
			return true
		}
	}
	return false
}

func containsDifficulty(values []Difficulty, target Difficulty) bool {
	for _, v := range values {
		if strings.EqualFold(string(v), string(target)) {
			return true
		}
	}
	return false
}
