package meeting

import "time"

// RawEvent is a single VEVENT as parsed from the feed, before recurrence
// expansion and display normalization.
type RawEvent struct {
	UID          string
	RecurrenceID string
	RecurrenceAt *time.Time

	Summary     string
	Description string
	Location    string
	Status      string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRULE   string
	RDates  []time.Time
	ExDates []time.Time

	URL           string
	ConferenceURL string
}

// Instance is one concrete occurrence of a RawEvent inside the query
// window. Recurring masters produce several instances.
type Instance struct {
	Raw   RawEvent
	Start time.Time
	End   time.Time
}

// Event is the display-ready representation served to every surface.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
	JoinURL     string    `json:"joinUrl,omitempty"`
	EventURL    string    `json:"eventUrl,omitempty"`
	Provider    string    `json:"provider,omitempty"`
}
