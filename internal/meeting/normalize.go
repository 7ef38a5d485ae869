package meeting

import (
	"fmt"
	"strings"
	"time"
)

const untitledEvent = "No title"

// Normalize converts expanded instances into display events in the given
// zone. Instances must already be sorted; IDs encode the start time and
// the position in the list so the widget can key cards stably.
func Normalize(instances []Instance, now time.Time, loc *time.Location) []Event {
	if loc == nil {
		loc = time.Local
	}

	events := make([]Event, 0, len(instances))
	for i, instance := range instances {
		events = append(events, normalizeOne(instance, now, loc, i))
	}
	return events
}

func normalizeOne(instance Instance, now time.Time, loc *time.Location, index int) Event {
	start := toZone(instance.Start, loc, now.In(loc))
	endGuess := start.Add(defaultEventLength)
	end := toZone(instance.End, loc, endGuess)
	if !end.After(start) {
		end = endGuess
	}

	joinURL, eventURL, provider := DeriveLinks(instance.Raw)

	return Event{
		ID:          fmt.Sprintf("%d-%d", start.Unix(), index),
		Title:       sanitize(fallback(instance.Raw.Summary, untitledEvent)),
		Description: sanitize(instance.Raw.Description),
		Location:    sanitize(instance.Raw.Location),
		Start:       start,
		End:         end,
		AllDay:      instance.Raw.AllDay,
		JoinURL:     joinURL,
		EventURL:    eventURL,
		Provider:    provider,
	}
}

// toZone resolves a possibly-zero timestamp into the display zone.
// Zero values take the fallback, mirroring the feed's habit of omitting
// DTEND entirely.
func toZone(value time.Time, loc *time.Location, fallbackValue time.Time) time.Time {
	if value.IsZero() {
		return fallbackValue
	}
	return value.In(loc)
}

func sanitize(value string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
