// Package server hosts the local widget: an embedded page, the events
// API, and the click-to-join endpoint.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sri/dash-to-meeting/internal/launcher"
	"github.com/sri/dash-to-meeting/internal/meeting"
)

//go:embed static
var embeddedStatic embed.FS

const shutdownGrace = 3 * time.Second

// EventSource produces the current display events on demand.
type EventSource func(ctx context.Context) ([]meeting.Event, error)

type Server struct {
	events EventSource
	opener func(url string) error
	mux    *http.ServeMux

	done     chan struct{}
	doneOnce sync.Once
}

func New(events EventSource) *Server {
	s := &Server{
		events: events,
		opener: launcher.OpenURL,
		done:   make(chan struct{}),
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled or a meeting link has been opened
// (the widget's job is done once the user is in the call). onReady is
// called with the base URL after the listener is bound, which matters
// when listen asks for an OS-assigned port.
func (s *Server) Run(ctx context.Context, listen string, onReady func(baseURL string)) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listen, err)
	}

	baseURL := "http://" + ln.Addr().String()
	slog.Debug("widget server listening", "url", baseURL)
	if onReady != nil {
		onReady(baseURL)
	}

	httpServer := &http.Server{Handler: s.mux}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve widget: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /open", s.handleOpen)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := embeddedStatic.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "widget page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events(r.Context())
	if err != nil {
		slog.Warn("events build failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("failed to load events: %s", err),
		})
		return
	}
	if events == nil {
		events = []meeting.Event{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, events)
}

type openRequest struct {
	URL string `json:"url"`
}

// handleOpen re-validates the posted URL before launching it; the page
// is trusted less than the feed it renders.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}

	joinURL, ok := meeting.CanonicalJoinURL(strings.TrimSpace(req.URL))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid meeting url"})
		return
	}

	// The opener runs detached from the request context; a successful
	// response must not race the child against the handler returning.
	if err := s.opener(joinURL); err != nil {
		slog.Warn("meeting launch failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to open link"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	s.doneOnce.Do(func() { close(s.done) })
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Debug("write json response failed", "err", err)
	}
}
