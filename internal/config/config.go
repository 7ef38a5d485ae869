package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/ini.v1"
)

const maxEventItems = 50

// DefaultSource is the demo feed the widget points at when nothing else
// is configured.
const DefaultSource = "https://calendar.google.com/calendar/ical/9ea2d2e03cd799c6e7fe2e609af19480b1f1cc6fc2535b0c4ea700852522f8f8%40group.calendar.google.com/public/basic.ics"

type Runtime struct {
	ConfigFile  string
	SourcesFile string

	Source  string
	Sources map[string]string

	Lookback      time.Duration
	Ahead         time.Duration
	Lookahead     time.Duration
	IncludeAllDay bool
	MaxItems      int
	Timeout       time.Duration
	Listen        string

	StateDir     string
	CacheDir     string
	SnapshotPath string
}

func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	xdgCache := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME"))
	if xdgCache == "" {
		xdgCache = filepath.Join(home, ".cache")
	}

	configDir := filepath.Join(xdgConfig, "dash-to-meeting")

	configFile := strings.TrimSpace(os.Getenv("DASH_CONFIG_FILE"))
	if configFile == "" {
		configFile = filepath.Join(configDir, "dash.env")
	}
	if _, statErr := os.Stat(configFile); statErr == nil {
		_ = gotenv.Load(configFile)
	}

	v := viper.New()
	v.SetEnvPrefix("DASH")
	v.AutomaticEnv()

	_ = v.BindEnv("source", "DASH_SOURCE")
	_ = v.BindEnv("sources_file", "DASH_SOURCES_FILE")
	_ = v.BindEnv("lookback_minutes", "DASH_LOOKBACK_MINUTES")
	_ = v.BindEnv("ahead_days", "DASH_AHEAD_DAYS")
	_ = v.BindEnv("lookahead_minutes", "DASH_LOOKAHEAD_MINUTES")
	_ = v.BindEnv("include_all_day", "DASH_INCLUDE_ALL_DAY")
	_ = v.BindEnv("max_items", "DASH_MAX_ITEMS")
	_ = v.BindEnv("timeout_seconds", "DASH_TIMEOUT_SECONDS")
	_ = v.BindEnv("listen", "DASH_LISTEN")
	_ = v.BindEnv("state_dir", "DASH_STATE_DIR")
	_ = v.BindEnv("cache_dir", "DASH_CACHE_DIR")

	v.SetDefault("source", DefaultSource)
	v.SetDefault("sources_file", filepath.Join(configDir, "sources.ini"))
	v.SetDefault("lookback_minutes", 120)
	v.SetDefault("ahead_days", 14)
	v.SetDefault("lookahead_minutes", 12*60)
	v.SetDefault("include_all_day", false)
	v.SetDefault("max_items", 12)
	v.SetDefault("timeout_seconds", 15)
	v.SetDefault("listen", "127.0.0.1:0")
	v.SetDefault("state_dir", filepath.Join(xdgState, "dash-to-meeting"))
	v.SetDefault("cache_dir", filepath.Join(xdgCache, "dash-to-meeting"))

	maxItems := v.GetInt("max_items")
	if maxItems < 1 {
		maxItems = 1
	}
	if maxItems > maxEventItems {
		maxItems = maxEventItems
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}

	lookbackMinutes := v.GetInt("lookback_minutes")
	if lookbackMinutes < 0 {
		lookbackMinutes = 0
	}

	aheadDays := v.GetInt("ahead_days")
	if aheadDays <= 0 {
		aheadDays = 14
	}

	lookaheadMinutes := v.GetInt("lookahead_minutes")
	if lookaheadMinutes <= 0 {
		lookaheadMinutes = 12 * 60
	}

	stateDir := strings.TrimSpace(v.GetString("state_dir"))
	if stateDir == "" {
		stateDir = filepath.Join(xdgState, "dash-to-meeting")
	}

	cacheDir := strings.TrimSpace(v.GetString("cache_dir"))
	if cacheDir == "" {
		cacheDir = filepath.Join(xdgCache, "dash-to-meeting")
	}

	sourcesFile := strings.TrimSpace(v.GetString("sources_file"))
	sources, err := loadSources(sourcesFile)
	if err != nil {
		return Runtime{}, err
	}

	return Runtime{
		ConfigFile:    configFile,
		SourcesFile:   sourcesFile,
		Source:        strings.TrimSpace(v.GetString("source")),
		Sources:       sources,
		Lookback:      time.Duration(lookbackMinutes) * time.Minute,
		Ahead:         time.Duration(aheadDays) * 24 * time.Hour,
		Lookahead:     time.Duration(lookaheadMinutes) * time.Minute,
		IncludeAllDay: v.GetBool("include_all_day"),
		MaxItems:      maxItems,
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
		Listen:        strings.TrimSpace(v.GetString("listen")),
		StateDir:      stateDir,
		CacheDir:      cacheDir,
		SnapshotPath:  filepath.Join(stateDir, "events.json"),
	}, nil
}

// ResolveSource maps a CLI argument onto a concrete source: a name from
// the sources file wins, an empty argument falls back to the configured
// default, anything else is taken literally.
func (r Runtime) ResolveSource(arg string) string {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return r.Source
	}
	if url, ok := r.Sources[trimmed]; ok {
		return url
	}
	return trimmed
}

// loadSources reads the optional named-sources file. Each section is a
// calendar name with a url key:
//
//	[work]
//	url = https://example.com/team.ics
func loadSources(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat sources file: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	sources := make(map[string]string)
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		url := strings.TrimSpace(section.Key("url").String())
		if url == "" {
			continue
		}
		sources[section.Name()] = url
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return sources, nil
}
