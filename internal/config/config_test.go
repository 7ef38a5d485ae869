package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source != DefaultSource {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Lookback != 2*time.Hour {
		t.Fatalf("lookback = %v", cfg.Lookback)
	}
	if cfg.Ahead != 14*24*time.Hour {
		t.Fatalf("ahead = %v", cfg.Ahead)
	}
	if cfg.Lookahead != 12*time.Hour {
		t.Fatalf("lookahead = %v", cfg.Lookahead)
	}
	if cfg.MaxItems != 12 {
		t.Fatalf("max items = %d", cfg.MaxItems)
	}
	if cfg.Listen != "127.0.0.1:0" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
	wantState := filepath.Join(home, ".local", "state", "dash-to-meeting")
	if cfg.StateDir != wantState {
		t.Fatalf("state dir = %q, want %q", cfg.StateDir, wantState)
	}
	if cfg.SnapshotPath != filepath.Join(wantState, "events.json") {
		t.Fatalf("snapshot path = %q", cfg.SnapshotPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DASH_SOURCE", "https://calendar.example.com/team.ics")
	t.Setenv("DASH_LOOKBACK_MINUTES", "30")
	t.Setenv("DASH_MAX_ITEMS", "500")
	t.Setenv("DASH_INCLUDE_ALL_DAY", "true")
	t.Setenv("DASH_LISTEN", "127.0.0.1:8421")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source != "https://calendar.example.com/team.ics" {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Lookback != 30*time.Minute {
		t.Fatalf("lookback = %v", cfg.Lookback)
	}
	if cfg.MaxItems != maxEventItems {
		t.Fatalf("max items = %d, want cap %d", cfg.MaxItems, maxEventItems)
	}
	if !cfg.IncludeAllDay {
		t.Fatalf("include all day not applied")
	}
	if cfg.Listen != "127.0.0.1:8421" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	configFile := filepath.Join(dir, "dash.env")
	content := "DASH_SOURCE=https://calendar.example.com/from-file.ics\nDASH_TIMEOUT_SECONDS=5\n"
	if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("DASH_CONFIG_FILE", configFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source != "https://calendar.example.com/from-file.ics" {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestLoad_SourcesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	sourcesFile := filepath.Join(dir, "sources.ini")
	content := `[work]
url = https://calendar.example.com/work.ics

[personal]
url = https://calendar.example.com/personal.ics

[broken]
note = no url key here
`
	if err := os.WriteFile(sourcesFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	t.Setenv("DASH_SOURCES_FILE", sourcesFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("sources = %v", cfg.Sources)
	}
	if cfg.Sources["work"] != "https://calendar.example.com/work.ics" {
		t.Fatalf("work source = %q", cfg.Sources["work"])
	}
}

func TestResolveSource(t *testing.T) {
	t.Parallel()

	cfg := Runtime{
		Source: "https://calendar.example.com/default.ics",
		Sources: map[string]string{
			"work": "https://calendar.example.com/work.ics",
		},
	}

	tests := []struct {
		arg  string
		want string
	}{
		{"", "https://calendar.example.com/default.ics"},
		{"work", "https://calendar.example.com/work.ics"},
		{"https://elsewhere.example.com/x.ics", "https://elsewhere.example.com/x.ics"},
		{"  work  ", "https://calendar.example.com/work.ics"},
	}
	for _, tc := range tests {
		if got := cfg.ResolveSource(tc.arg); got != tc.want {
			t.Fatalf("ResolveSource(%q) = %q, want %q", tc.arg, got, tc.want)
		}
	}
}
