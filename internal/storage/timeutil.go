package storage

import (
	"fmt"
	"time"
)

// RelativeTime renders the display form of an instant for discussion
// listings: minutes or hours for the current day, "yesterday" for the
// previous calendar day, and a day count beyond that.
func RelativeTime(now, t time.Time) string {
	if t.After(now) {
		return "just now"
	}

	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		minutes := int(elapsed.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := calendarDaysBetween(t, now)
	if days <= 1 {
		return "yesterday"
	}
	return fmt.Sprintf("%d days ago", days)
}

// LastAccessedLabel buckets an enrollment's last-accessed instant into the
// coarse labels shown on course progress.
func LastAccessedLabel(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	days := calendarDaysBetween(t, now)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func calendarDaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
