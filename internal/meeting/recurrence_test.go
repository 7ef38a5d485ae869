package meeting

import (
	"testing"
	"time"
)

func TestExpand_WeeklyWithExdate(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	start := time.Date(2026, 2, 2, 10, 0, 0, 0, loc)
	end := start.Add(30 * time.Minute)
	exdate := start.Add(7 * 24 * time.Hour)

	events := []RawEvent{
		{
			UID:     "event-1",
			Summary: "Weekly",
			Start:   start,
			End:     end,
			RRULE:   "FREQ=WEEKLY;COUNT=3;BYDAY=MO",
			ExDates: []time.Time{exdate},
		},
	}

	windowStart := start.Add(-time.Hour)
	windowEnd := start.Add(22 * 24 * time.Hour)
	instances := Expand(events, windowStart, windowEnd)

	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if !instances[0].Start.Equal(start) {
		t.Fatalf("unexpected first instance start: %v", instances[0].Start)
	}
	third := start.Add(14 * 24 * time.Hour)
	if !instances[1].Start.Equal(third) {
		t.Fatalf("unexpected second instance start: %v", instances[1].Start)
	}
}

func TestExpand_RecurrenceOverride(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	second := start.Add(7 * 24 * time.Hour)

	secondRecurrence := second
	events := []RawEvent{
		{
			UID:     "event-2",
			Summary: "Sync",
			Start:   start,
			End:     start.Add(30 * time.Minute),
			RRULE:   "FREQ=WEEKLY;COUNT=2;BYDAY=MO",
		},
		{
			UID:          "event-2",
			Summary:      "Sync (moved)",
			RecurrenceID: second.Format("20060102T150405Z"),
			RecurrenceAt: &secondRecurrence,
			Start:        second.Add(15 * time.Minute),
			End:          second.Add(45 * time.Minute),
		},
	}

	windowStart := start.Add(-time.Hour)
	windowEnd := start.Add(14 * 24 * time.Hour)
	instances := Expand(events, windowStart, windowEnd)

	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if instances[1].Raw.Summary != "Sync (moved)" {
		t.Fatalf("expected override summary, got %q", instances[1].Raw.Summary)
	}
	if !instances[1].Start.Equal(second.Add(15 * time.Minute)) {
		t.Fatalf("unexpected override start: %v", instances[1].Start)
	}
}

func TestExpand_OrphanOverrideStillEmitted(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)

	// The override targets an occurrence outside the query window, but
	// its own replacement time falls inside it.
	orphanRecurrence := start.Add(14 * 24 * time.Hour)
	events := []RawEvent{
		{
			UID:     "event-4",
			Summary: "Weekly sync",
			Start:   start,
			End:     start.Add(30 * time.Minute),
			RRULE:   "FREQ=WEEKLY;BYDAY=MO",
		},
		{
			UID:          "event-4",
			Summary:      "Weekly sync (moved up)",
			RecurrenceID: orphanRecurrence.Format("20060102T150405Z"),
			RecurrenceAt: &orphanRecurrence,
			Start:        time.Date(2026, 6, 10, 14, 0, 0, 0, loc),
			End:          time.Date(2026, 6, 10, 14, 30, 0, 0, loc),
		},
	}

	windowStart := start.Add(-time.Hour)
	windowEnd := time.Date(2026, 6, 12, 0, 0, 0, 0, loc)
	instances := Expand(events, windowStart, windowEnd)

	if len(instances) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(instances))
	}

	var found bool
	for _, instance := range instances {
		if instance.Raw.Summary != "Weekly sync (moved up)" {
			continue
		}
		found = true
		if !instance.Start.Equal(events[1].Start) {
			t.Fatalf("unexpected orphan start: %v", instance.Start)
		}
	}
	if !found {
		t.Fatalf("orphan override missing from instances: %+v", instances)
	}
}

func TestExpand_BadRRuleFallsBackToMaster(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 6, 14, 0, 0, 0, time.UTC)
	events := []RawEvent{
		{
			UID:     "event-3",
			Summary: "Broken rule",
			Start:   start,
			End:     start.Add(time.Hour),
			RRULE:   "FREQ=NONSENSE",
		},
	}

	instances := Expand(events, start.Add(-time.Hour), start.Add(24*time.Hour))
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if !instances[0].Start.Equal(start) {
		t.Fatalf("unexpected start: %v", instances[0].Start)
	}
}

func TestExpand_SkipsEventsWithoutUID(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 6, 14, 0, 0, 0, time.UTC)
	events := []RawEvent{
		{Summary: "Anonymous", Start: start, End: start.Add(time.Hour)},
	}

	instances := Expand(events, start.Add(-time.Hour), start.Add(time.Hour))
	if len(instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(instances))
	}
}
