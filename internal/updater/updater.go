package updater

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"go.uber.org/zap"

	"apptcal/internal/logging"
	"apptcal/internal/version"
)

const repoSlug = "apptcal/apptcal"

// ErrDevBuild is returned when the running binary has no release version
var ErrDevBuild = errors.New("development build: install a tagged release to use update")

// Check finds the latest release and reports whether it is newer than current
func Check(ctx context.Context, current string) (*selfupdate.Release, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, false, fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	return latest, !latest.LessOrEqual(current), nil
}

// Update replaces the running executable with the latest release
func Update(ctx context.Context) error {
	if version.IsDev() {
		return ErrDevBuild
	}

	current := strings.TrimPrefix(version.Version, "v")
	latest, newer, err := Check(ctx, current)
	if err != nil {
		return err
	}
	if !newer {
		fmt.Printf("apptcal %s is already the latest version.\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	fmt.Printf("Updating apptcal %s -> %s...\n", current, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}
	logging.Log.Info("updated", zap.String("from", current), zap.String("to", latest.Version()))

	fmt.Printf("Updated to %s.\n", latest.Version())
	return nil
}

// ManagedByHomebrew reports whether exe lives in a Homebrew Cellar
func ManagedByHomebrew(exe string) bool {
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		resolved = exe
	}
	return strings.Contains(filepath.ToSlash(resolved), "/Cellar/")
}
