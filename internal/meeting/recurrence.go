package meeting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const defaultEventLength = 30 * time.Minute

// Expand turns raw events into concrete instances inside the query
// window, expanding RRULEs and applying RECURRENCE-ID overrides.
func Expand(events []RawEvent, windowStart, windowEnd time.Time) []Instance {
	if len(events) == 0 {
		return nil
	}

	masters := make([]RawEvent, 0, len(events))
	singles := make([]RawEvent, 0, len(events))
	overrides := make(map[string]RawEvent)
	usedOverrides := make(map[string]bool)

	for _, event := range events {
		if strings.TrimSpace(event.UID) == "" {
			continue
		}

		if strings.TrimSpace(event.RRULE) != "" {
			masters = append(masters, event)
			continue
		}

		if strings.TrimSpace(event.RecurrenceID) != "" {
			key := overrideKeyForEvent(event)
			overrides[key] = event
			continue
		}

		singles = append(singles, event)
	}

	instances := make([]Instance, 0, len(events))

	for _, event := range singles {
		if !overlaps(event.Start, event.End, windowStart, windowEnd) {
			continue
		}
		instances = append(instances, Instance{Raw: event, Start: event.Start, End: event.End})
	}

	for _, master := range masters {
		duration := master.End.Sub(master.Start)
		if duration <= 0 {
			duration = defaultEventLength
		}

		starts := expandRRuleStarts(master, windowStart, windowEnd)
		for _, start := range starts {
			key := overrideKey(master.UID, start)
			if override, ok := overrides[key]; ok {
				usedOverrides[key] = true
				overrideStart := override.Start
				overrideEnd := override.End
				if !overrideEnd.After(overrideStart) {
					overrideEnd = overrideStart.Add(duration)
				}
				if !overlaps(overrideStart, overrideEnd, windowStart, windowEnd) {
					continue
				}
				instances = append(instances, Instance{Raw: override, Start: overrideStart, End: overrideEnd})
				continue
			}

			end := start.Add(duration)
			if !overlaps(start, end, windowStart, windowEnd) {
				continue
			}
			instances = append(instances, Instance{Raw: master, Start: start, End: end})
		}
	}

	for key, override := range overrides {
		if usedOverrides[key] {
			continue
		}
		if !overlaps(override.Start, override.End, windowStart, windowEnd) {
			continue
		}
		instances = append(instances, Instance{Raw: override, Start: override.Start, End: override.End})
	}

	unique := dedupeInstances(instances)
	sortInstances(unique)
	return unique
}

func expandRRuleStarts(event RawEvent, windowStart, windowEnd time.Time) []time.Time {
	opt, err := rrule.StrToROption(event.RRULE)
	if err != nil {
		return fallbackStarts(event, windowStart, windowEnd)
	}

	opt.Dtstart = event.Start
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return fallbackStarts(event, windowStart, windowEnd)
	}

	set := &rrule.Set{}
	set.RRule(rule)
	for _, exdate := range event.ExDates {
		set.ExDate(exdate)
	}
	for _, rdate := range event.RDates {
		set.RDate(rdate)
	}

	starts := set.Between(windowStart, windowEnd, true)
	if len(starts) == 0 && overlaps(event.Start, event.End, windowStart, windowEnd) {
		starts = append(starts, event.Start)
	}

	sort.Slice(starts, func(i, j int) bool {
		return starts[i].Before(starts[j])
	})
	return starts
}

func fallbackStarts(event RawEvent, windowStart, windowEnd time.Time) []time.Time {
	starts := make([]time.Time, 0, 1)
	if overlaps(event.Start, event.End, windowStart, windowEnd) {
		starts = append(starts, event.Start)
	}
	return starts
}

func overlaps(start, end, windowStart, windowEnd time.Time) bool {
	if end.IsZero() || !end.After(start) {
		end = start.Add(defaultEventLength)
	}
	return start.Before(windowEnd) && end.After(windowStart)
}

func sortInstances(items []Instance) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		if !strings.EqualFold(items[i].Raw.Summary, items[j].Raw.Summary) {
			return strings.ToLower(items[i].Raw.Summary) < strings.ToLower(items[j].Raw.Summary)
		}
		return items[i].Raw.UID < items[j].Raw.UID
	})
}

func dedupeInstances(items []Instance) []Instance {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]Instance)
	order := make([]string, 0, len(items))
	for _, item := range items {
		key := instanceKey(item)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = item
		order = append(order, key)
	}

	results := make([]Instance, 0, len(seen))
	for _, key := range order {
		results = append(results, seen[key])
	}
	return results
}

func instanceKey(item Instance) string {
	return strings.Join([]string{
		item.Raw.UID,
		item.Start.UTC().Format(time.RFC3339Nano),
		item.End.UTC().Format(time.RFC3339Nano),
		item.Raw.Summary,
	}, "|")
}

func overrideKeyForEvent(event RawEvent) string {
	if event.RecurrenceAt != nil {
		return overrideKey(event.UID, *event.RecurrenceAt)
	}
	return overrideKey(event.UID, event.Start)
}

func overrideKey(uid string, start time.Time) string {
	return fmt.Sprintf("%s|%s", uid, start.UTC().Format(time.RFC3339Nano))
}
