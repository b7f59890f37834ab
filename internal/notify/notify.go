// Package notify posts desktop notifications.
package notify

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupported is returned on platforms without a notification command
var ErrUnsupported = errors.New("desktop notifications are not supported on " + runtime.GOOS)

// run executes a notification command; replaced in tests
var run = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Send posts a notification with the given title and message.
// On macOS, uses osascript. On Linux, uses notify-send.
func Send(title, message string) error {
	name, args, err := command(runtime.GOOS, title, message)
	if err != nil {
		return err
	}
	if err := run(name, args...); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func command(goos, title, message string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "osascript", []string{"-e", fmt.Sprintf(`display notification %q with title %q`, message, title)}, nil
	case "linux", "freebsd", "openbsd":
		return "notify-send", []string{"--app-name=apptcal", title, message}, nil
	}
	return "", nil, ErrUnsupported
}
