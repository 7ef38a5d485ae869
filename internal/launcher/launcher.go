// Package launcher hands URLs to the desktop's opener.
package launcher

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenURL launches url with the platform opener. The child is started
// detached and never waited on; Zoom and browsers outlive whatever
// command or request handler asked for them.
func OpenURL(url string) error {
	name, args := openerCommand(runtime.GOOS, url)
	if name == "" {
		return fmt.Errorf("no URL opener for %s", runtime.GOOS)
	}

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found", name)
	}

	return launchDetached(name, args...)
}

// launchDetached starts the command unbound from any context, so no
// cancellation can kill the child after the caller returns, and
// releases the process handle since nothing will wait on it.
func launchDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}
	return nil
}

func openerCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux":
		return "xdg-open", []string{url}
	default:
		return "", nil
	}
}
