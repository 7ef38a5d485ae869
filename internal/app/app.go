// Package app wires the pipeline behind each CLI surface: fetch, parse,
// expand, normalize, snapshot.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sri/dash-to-meeting/internal/bar"
	"github.com/sri/dash-to-meeting/internal/config"
	"github.com/sri/dash-to-meeting/internal/feed"
	"github.com/sri/dash-to-meeting/internal/ics"
	"github.com/sri/dash-to-meeting/internal/launcher"
	"github.com/sri/dash-to-meeting/internal/meeting"
	"github.com/sri/dash-to-meeting/internal/notify"
	"github.com/sri/dash-to-meeting/internal/server"
	"github.com/sri/dash-to-meeting/internal/state"
)

// BuildEvents runs the full pipeline for one source and saves the
// result as the current snapshot.
func BuildEvents(ctx context.Context, cfg config.Runtime, source string) ([]meeting.Event, error) {
	resolved := cfg.ResolveSource(source)

	fetcher := feed.NewFetcher(cfg.CacheDir, cfg.Timeout)
	payload, err := fetcher.Load(ctx, resolved)
	if err != nil {
		return nil, err
	}

	rawEvents, err := ics.Parse(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	windowStart := now.Add(-cfg.Lookback)
	windowEnd := now.Add(cfg.Ahead)

	instances := meeting.Expand(rawEvents, windowStart, windowEnd)
	events := meeting.Normalize(instances, now, time.Local)
	slog.Debug("events built", "raw", len(rawEvents), "instances", len(instances), "events", len(events))

	snapshot := state.Snapshot{Source: resolved, FetchedAt: now, Events: events}
	if err := state.SaveSnapshot(cfg.SnapshotPath, snapshot); err != nil {
		return nil, err
	}

	return events, nil
}

// Dump prints events to stdout, one block per event, or the raw JSON
// array with asJSON.
func Dump(ctx context.Context, cfg config.Runtime, source string, stdout io.Writer, asJSON bool) error {
	events, err := BuildEvents(ctx, cfg, source)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)
	}

	if len(events) == 0 {
		_, _ = fmt.Fprintln(stdout, "No events.")
		return nil
	}

	now := time.Now()
	for i, event := range events {
		if i > 0 {
			_, _ = fmt.Fprintln(stdout)
		}
		_, _ = fmt.Fprintf(stdout, "%s\n  %s\n", event.Title, meeting.TimeLine(now, event))
		if event.Description != "" {
			_, _ = fmt.Fprintf(stdout, "  %s\n", event.Description)
		}
		if event.JoinURL != "" {
			_, _ = fmt.Fprintf(stdout, "  %s\n", event.JoinURL)
		}
	}
	return nil
}

// Status writes the one-line bar JSON. Pipeline failures degrade to the
// last snapshot before surfacing an error state, so a flaky feed does
// not blank the bar.
func Status(ctx context.Context, cfg config.Runtime, source string, stdout io.Writer) error {
	now := time.Now()

	events, err := BuildEvents(ctx, cfg, source)
	if err != nil {
		snapshot, loadErr := state.LoadSnapshot(cfg.SnapshotPath)
		if loadErr != nil || len(snapshot.Events) == 0 {
			return writeOutput(stdout, bar.RenderError(fmt.Sprintf("Calendar fetch failed: %s", err)))
		}
		slog.Warn("using snapshot after fetch failure", "err", err, "fetched_at", snapshot.FetchedAt)
		events = snapshot.Events
	}

	upcoming := meeting.Upcoming(events, now, cfg.Lookahead, cfg.MaxItems, cfg.IncludeAllDay)
	return writeOutput(stdout, bar.Render(now, upcoming, cfg.Lookahead))
}

// JoinNext opens the next joinable meeting from the snapshot.
func JoinNext(cfg config.Runtime) error {
	return join(cfg, 0)
}

// JoinItem opens the Nth upcoming event (1-based) regardless of whether
// a join link is present; events without one are skipped with a note.
func JoinItem(cfg config.Runtime, index int) error {
	return join(cfg, index)
}

func join(cfg config.Runtime, index int) error {
	snapshot, err := state.LoadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return err
	}

	now := time.Now()
	upcoming := meeting.Upcoming(snapshot.Events, now, cfg.Lookahead, cfg.MaxItems, cfg.IncludeAllDay)

	var target meeting.Event
	if index <= 0 {
		next, ok := meeting.NextJoinable(upcoming, now, cfg.Lookahead, cfg.IncludeAllDay)
		if !ok {
			notify.Send("Dash to Meeting", "No joinable meeting coming up")
			return nil
		}
		target = next
	} else {
		if index > len(upcoming) {
			return fmt.Errorf("no item %d: only %d upcoming", index, len(upcoming))
		}
		target = upcoming[index-1]
	}

	url := strings.TrimSpace(target.JoinURL)
	if url == "" {
		notify.Send("Dash to Meeting", fmt.Sprintf("%s has no meeting link", target.Title))
		return nil
	}

	if err := launcher.OpenURL(url); err != nil {
		notify.Send("Dash to Meeting", fmt.Sprintf("Could not open %s", target.Title))
		return err
	}
	return nil
}

// Serve runs the widget server until cancelled or a link is opened.
func Serve(ctx context.Context, cfg config.Runtime, source string, openBrowser bool, stdout io.Writer) error {
	srv := server.New(func(ctx context.Context) ([]meeting.Event, error) {
		return BuildEvents(ctx, cfg, source)
	})

	return srv.Run(ctx, cfg.Listen, func(baseURL string) {
		_, _ = fmt.Fprintf(stdout, "Meeting widget at %s\n", baseURL)
		if openBrowser {
			if err := launcher.OpenURL(baseURL); err != nil {
				slog.Warn("could not open browser", "err", err)
			}
		}
	})
}

func writeOutput(w io.Writer, output bar.Output) error {
	payload, err := bar.Encode(output)
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
