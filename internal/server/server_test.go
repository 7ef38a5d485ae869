package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sri/dash-to-meeting/internal/meeting"
)

func testEvents(events []meeting.Event, err error) EventSource {
	return func(context.Context) ([]meeting.Event, error) {
		return events, err
	}
}

func TestHandleEvents_ReturnsEvents(t *testing.T) {
	t.Parallel()

	events := []meeting.Event{
		{
			ID:       "1777885200-0",
			Title:    "Daily standup",
			Start:    time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
			JoinURL:  "https://zoom.us/j/123456",
			Provider: "zoom",
		},
	}
	s := New(testEvents(events, nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []meeting.Event
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Daily standup" {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestHandleEvents_EmptyListNotNull(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("body = %q, want []", body)
	}
}

func TestHandleEvents_BuildFailure(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, errors.New("feed unreachable")))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feed unreachable") {
		t.Fatalf("error body missing cause: %q", rec.Body.String())
	}
}

func TestHandleOpen_LaunchesValidURL(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))
	var opened string
	s.opener = func(url string) error {
		opened = url
		return nil
	}

	body := strings.NewReader(`{"url":"https://zoom.us/j/123456"}`)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/open", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if opened != "https://zoom.us/j/123456" {
		t.Fatalf("opened = %q", opened)
	}

	select {
	case <-s.done:
	default:
		t.Fatalf("expected shutdown signal after a successful open")
	}
}

func TestHandleOpen_RejectsNonMeetingURL(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))
	s.opener = func(string) error {
		t.Fatalf("opener must not run for a rejected url")
		return nil
	}

	for _, payload := range []string{
		`{"url":"https://example.com/phishing"}`,
		`{"url":""}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/open", strings.NewReader(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: status = %d, want 400", payload, rec.Code)
		}
	}

	select {
	case <-s.done:
		t.Fatalf("rejected open must not trigger shutdown")
	default:
	}
}

func TestHandleOpen_LaunchFailure(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))
	s.opener = func(string) error {
		return errors.New("no opener available")
	}

	body := strings.NewReader(`{"url":"https://meet.google.com/abc-defg-hij"}`)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/open", body))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleIndex_ServesPage(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/api/events") {
		t.Fatalf("page does not reference the events api")
	}
}

func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	s := New(testEvents(nil, nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
