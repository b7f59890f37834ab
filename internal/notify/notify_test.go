package notify

import (
	"errors"
	"runtime"
	"testing"
)

func TestCommand(t *testing.T) {
	name, args, err := command("darwin", "Next appointment", `Ada "Checkup"`)
	if err != nil || name != "osascript" {
		t.Fatalf("darwin: %s %v", name, err)
	}
	if want := `display notification "Ada \"Checkup\"" with title "Next appointment"`; args[1] != want {
		t.Errorf("script = %s, want %s", args[1], want)
	}

	name, args, _ = command("linux", "T", "M")
	if name != "notify-send" || args[len(args)-2] != "T" || args[len(args)-1] != "M" {
		t.Errorf("linux: %s %v", name, args)
	}

	if _, _, err := command("windows", "T", "M"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("windows err = %v", err)
	}
}

func TestSend(t *testing.T) {
	if _, _, err := command(runtime.GOOS, "", ""); err != nil {
		t.Skip("no notification command on " + runtime.GOOS)
	}

	orig := run
	defer func() { run = orig }()

	var called string
	run = func(name string, args ...string) error {
		called = name
		return errors.New("exit status 1")
	}
	err := Send("T", "M")
	if called == "" || err == nil {
		t.Fatalf("Send: called=%q err=%v", called, err)
	}
}
