// Package bar renders the one-line JSON status for desktop bars.
package bar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sri/dash-to-meeting/internal/meeting"
)

const tooltipItems = 4

type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

func Encode(output Output) ([]byte, error) {
	payload, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal bar output: %w", err)
	}
	return payload, nil
}

// Render builds the status line: countdown to the next joinable meeting,
// or a quiet dash when nothing is coming up.
func Render(now time.Time, upcoming []meeting.Event, lookahead time.Duration) Output {
	next, hasNext := meeting.NextJoinable(upcoming, now, lookahead, true)
	if !hasNext {
		return Output{
			Text:    "—",
			Tooltip: tooltip(now, upcoming, nil),
			Class:   "clear",
		}
	}

	return Output{
		Text:    meeting.CountdownText(now, next),
		Tooltip: tooltip(now, upcoming, &next),
		Class:   "normal",
	}
}

func RenderError(message string) Output {
	return Output{
		Text:    "!",
		Tooltip: strings.TrimSpace(message),
		Class:   "error",
	}
}

func tooltip(now time.Time, upcoming []meeting.Event, next *meeting.Event) string {
	var b strings.Builder

	if next != nil {
		if next.Start.After(now) {
			_, _ = fmt.Fprintf(&b, "Next in %s: %s\n", meeting.HumanizeDuration(next.Start.Sub(now)), next.Title)
		} else {
			_, _ = fmt.Fprintf(&b, "In progress: %s\n", next.Title)
		}
		_, _ = fmt.Fprintf(&b, "Starts: %s\n", next.Start.Format("Mon 15:04"))
		if strings.TrimSpace(next.Provider) != "" {
			_, _ = fmt.Fprintf(&b, "Provider: %s\n", ProviderLabel(next.Provider))
		}
	} else {
		_, _ = fmt.Fprint(&b, "No joinable meeting coming up\n")
	}

	if len(upcoming) > 0 {
		_, _ = fmt.Fprint(&b, "\nUpcoming:\n")
		count := len(upcoming)
		if count > tooltipItems {
			count = tooltipItems
		}
		for i := 0; i < count; i++ {
			item := upcoming[i]
			_, _ = fmt.Fprintf(&b, "%s — %s\n", item.Start.Format("Mon 15:04"), item.Title)
		}
	}

	return strings.TrimSpace(b.String())
}

func ProviderLabel(provider string) string {
	switch provider {
	case "google_meet":
		return "Google Meet"
	case "zoom":
		return "Zoom"
	case "teams":
		return "Microsoft Teams"
	default:
		return provider
	}
}
