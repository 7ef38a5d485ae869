package meeting

import (
	"fmt"
	"time"
)

const (
	clockLayout = "3:04pm"
	dateLayout  = "Mon Jan 2"
)

// WhenText renders the absolute time label for an event: bare clock
// times for today, date-prefixed otherwise.
func WhenText(now, start, end time.Time) string {
	if sameDate(now, start) {
		return start.Format(clockLayout) + "-" + end.Format(clockLayout)
	}
	if sameDate(start, end) {
		return start.Format(dateLayout) + " " + start.Format(clockLayout) + "-" + end.Format(clockLayout)
	}
	return start.Format(dateLayout) + " " + start.Format(clockLayout) + " - " + end.Format(dateLayout) + " " + end.Format(clockLayout)
}

// RelativeText renders the relative label: "current" while in progress,
// a countdown or an "ended ... ago" note for today's events, empty for
// other days.
func RelativeText(now, start, end time.Time) string {
	if !now.Before(start) && !now.After(end) {
		return "current"
	}
	if !sameDate(now, start) {
		return ""
	}
	if now.Before(start) {
		return "in " + durationWords(start.Sub(now))
	}
	return "ended " + durationWords(now.Sub(end)) + " ago"
}

// TimeLine combines the absolute and relative labels the way the widget
// card shows them.
func TimeLine(now time.Time, item Event) string {
	when := WhenText(now, item.Start, item.End)
	rel := RelativeText(now, item.Start, item.End)
	if rel == "" {
		return when
	}
	return fmt.Sprintf("%s (%s)", when, rel)
}

func durationWords(d time.Duration) string {
	totalMins := int(d.Minutes())
	if totalMins < 0 {
		totalMins = 0
	}
	hours := totalMins / 60
	mins := totalMins % 60

	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%d %s %d %s", hours, plural(hours, "hr", "hrs"), mins, plural(mins, "min", "mins"))
	case hours > 0:
		return fmt.Sprintf("%d %s", hours, plural(hours, "hr", "hrs"))
	default:
		return fmt.Sprintf("%d %s", mins, plural(mins, "min", "mins"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
