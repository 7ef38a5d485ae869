package meeting

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

func SortEvents(items []Event) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		if !strings.EqualFold(items[i].Title, items[j].Title) {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		}
		return items[i].ID < items[j].ID
	})
}

// JoinableOnly keeps events that carry a join link.
func JoinableOnly(items []Event) []Event {
	if len(items) == 0 {
		return nil
	}

	filtered := make([]Event, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.JoinURL) == "" {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// Upcoming returns events that have not ended and start within the
// window, capped at maxItems.
func Upcoming(items []Event, now time.Time, within time.Duration, maxItems int, includeAllDay bool) []Event {
	if len(items) == 0 || maxItems <= 0 {
		return nil
	}

	windowEnd := now.Add(within)
	copyItems := make([]Event, 0, len(items))
	for _, item := range items {
		if !includeAllDay && item.AllDay {
			continue
		}
		if !item.End.After(now) {
			continue
		}
		if item.Start.After(windowEnd) {
			continue
		}
		copyItems = append(copyItems, item)
	}

	SortEvents(copyItems)
	if len(copyItems) > maxItems {
		copyItems = copyItems[:maxItems]
	}
	return copyItems
}

// NextJoinable picks the first upcoming event with a join link.
func NextJoinable(items []Event, now time.Time, within time.Duration, includeAllDay bool) (Event, bool) {
	candidates := Upcoming(JoinableOnly(items), now, within, len(items), includeAllDay)
	if len(candidates) == 0 {
		return Event{}, false
	}
	return candidates[0], true
}

func CountdownText(now time.Time, item Event) string {
	if !item.Start.After(now) {
		return "now"
	}
	return HumanizeDuration(item.Start.Sub(now))
}

func HumanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "now"
	}

	minutes := int(math.Ceil(d.Minutes()))
	if minutes < 0 {
		minutes = 0
	}

	days := minutes / (24 * 60)
	remaining := minutes % (24 * 60)
	hours := remaining / 60
	mins := remaining % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, strconv.Itoa(days)+"d")
	}
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if mins > 0 {
		parts = append(parts, strconv.Itoa(mins)+"m")
	}
	if len(parts) == 0 {
		parts = append(parts, "0m")
	}
	return strings.Join(parts, " ")
}
