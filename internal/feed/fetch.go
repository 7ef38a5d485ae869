// Package feed loads calendar payloads from a URL, a local file, or the
// disk cache left behind by an earlier fetch.
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher resolves a source string and returns the ICS payload. Network
// sources go through a disk cache keyed by URL so that a flaky feed
// still renders from the last good copy.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

func NewFetcher(cacheDir string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

// Load resolves source per the widget's rules: http/https/webcal URLs
// are fetched, file:// URLs and existing local paths are read, and
// anything else is tried as a URL.
func (f *Fetcher) Load(ctx context.Context, source string) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, errors.New("empty calendar source")
	}

	if parsed, err := url.Parse(trimmed); err == nil {
		switch strings.ToLower(parsed.Scheme) {
		case "http", "https":
			return f.fetchURL(ctx, trimmed)
		case "webcal":
			parsed.Scheme = "https"
			return f.fetchURL(ctx, parsed.String())
		case "file":
			path := parsed.Path
			if unescaped, uerr := url.PathUnescape(path); uerr == nil {
				path = unescaped
			}
			return readLocalFile(path)
		}
	}

	if path, ok := existingPath(trimmed); ok {
		return readLocalFile(path)
	}

	return f.fetchURL(ctx, trimmed)
}

func existingPath(source string) (string, bool) {
	path := source
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func readLocalFile(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar file: %w", err)
	}
	return body, nil
}

// fetchURL performs a conditional GET, falling back to the cached body
// on 304, network errors, and non-OK statuses.
func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	cachePath, err := f.cachePathForURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	meta, _ := loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			slog.Warn("feed fetch failed, serving cached body", "url", redactURL(rawURL), "err", err)
			return cachedBody, nil
		}
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read calendar response: %w", readErr)
		}

		newMeta := cacheEntry{
			URL:          rawURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if saveErr := saveCache(cachePath, newMeta, body); saveErr != nil {
			slog.Warn("feed cache save failed", "url", redactURL(rawURL), "err", saveErr)
		}

		slog.Debug("feed fetched", "url", redactURL(rawURL), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, errors.New("304 Not Modified without a cached body")
		}
		slog.Debug("feed not modified, serving cache", "url", redactURL(rawURL))
		return cachedBody, nil

	default:
		if len(cachedBody) > 0 {
			slog.Warn("feed returned non-OK status, serving cached body", "url", redactURL(rawURL), "status", resp.StatusCode)
			return cachedBody, nil
		}
		return nil, fmt.Errorf("fetch calendar: %s", resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(rawURL string) (string, error) {
	if strings.TrimSpace(f.cacheDir) == "" {
		return "", errors.New("cache dir not configured")
	}
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8])), nil
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

// saveCache writes the body before the metadata so meta never points at
// a missing body. Both writes go through a temp file and rename.
func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	if err := writeFileAtomically(filepath.Join(cachePath, "body.ics"), body); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomically(filepath.Join(cachePath, "meta.json"), append(data, '\n'))
}

func writeFileAtomically(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// redactURL keeps the host but hides path and query, which often carry
// private calendar tokens.
func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/…"
}
