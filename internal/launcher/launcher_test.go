package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenerCommand(t *testing.T) {
	t.Parallel()

	name, args := openerCommand("darwin", "https://zoom.us/j/123456")
	if name != "open" || len(args) != 1 || args[0] != "https://zoom.us/j/123456" {
		t.Fatalf("darwin opener = %q %v", name, args)
	}

	name, args = openerCommand("linux", "https://meet.google.com/abc-defg-hij")
	if name != "xdg-open" || len(args) != 1 {
		t.Fatalf("linux opener = %q %v", name, args)
	}

	if name, _ = openerCommand("plan9", "https://zoom.us/j/1"); name != "" {
		t.Fatalf("unsupported platform must have no opener, got %q", name)
	}
}

// A slow opener must finish even though the function that started it
// has long since returned; the handler answering an open request does
// not stick around while the child dispatches the URL.
func TestLaunchDetached_ChildOutlivesCaller(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), "opened")

	func() {
		if err := launchDetached("sh", "-c", "sleep 0.2 && : > "+marker); err != nil {
			t.Fatalf("launch: %v", err)
		}
	}()

	waitForFile(t, marker)
}

func TestLaunchDetached_StartFailure(t *testing.T) {
	t.Parallel()

	if err := launchDetached(filepath.Join(t.TempDir(), "missing-opener")); err == nil {
		t.Fatalf("expected error for a missing binary")
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("child never wrote %s", path)
}
