// Package notify posts best-effort desktop notifications. Failures are
// logged and swallowed; a missed notification never fails a command.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/godbus/dbus/v5"
)

const appName = "Dash to Meeting"

func Send(title, body string) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		title = appName
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = sendFreedesktop(title, body)
		if err != nil {
			err = sendNotifySend(title, body)
		}
	case "darwin":
		err = sendOsascript(title, body)
	default:
		return
	}

	if err != nil {
		slog.Debug("desktop notification failed", "err", err)
	}
}

// sendFreedesktop talks to org.freedesktop.Notifications directly over
// the session bus.
func sendFreedesktop(title, body string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call(
		"org.freedesktop.Notifications.Notify", 0,
		appName,
		uint32(0),
		"",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1),
	)
	if call.Err != nil {
		return fmt.Errorf("notify call: %w", call.Err)
	}
	return nil
}

func sendNotifySend(title, body string) error {
	return runDetached("notify-send", title, body)
}

func sendOsascript(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	return runDetached("osascript", "-e", script)
}

// runDetached starts a fire-and-forget child unbound from any context;
// the notification must still appear after the command that triggered
// it has exited.
func runDetached(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found", name)
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}
	return nil
}
