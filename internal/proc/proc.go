// Package proc keeps a single `apptcal serve` per config directory with a pid lock file.
package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockedError is returned by Acquire when a live process holds the lock
type LockedError struct {
	PID int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("another apptcal server is running (pid %d)", e.PID)
}

// LockInfo is the content of a lock file
type LockInfo struct {
	PID   int
	Start string
}

// ParseLockInfo parses lock file contents in "PID[:START]" format.
func ParseLockInfo(data []byte) (LockInfo, error) {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return LockInfo{}, errors.New("empty lock file")
	}

	pidText, start, _ := strings.Cut(content, ":")
	pid, err := strconv.Atoi(strings.TrimSpace(pidText))
	if err != nil || pid <= 0 {
		return LockInfo{}, errors.New("invalid PID")
	}
	return LockInfo{PID: pid, Start: strings.TrimSpace(start)}, nil
}

func (l LockInfo) String() string {
	if l.Start == "" {
		return strconv.Itoa(l.PID)
	}
	return fmt.Sprintf("%d:%s", l.PID, l.Start)
}

// StartTime reports when pid started, as printed by ps
var StartTime = processStartTime

func processStartTime(pid int) (string, error) {
	output, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "lstart=").Output()
	if err != nil {
		return "", err
	}
	start := strings.TrimSpace(string(output))
	if start == "" {
		return "", errors.New("empty start time")
	}
	return start, nil
}

// IsApptcalProcess reports whether pid runs an apptcal binary
var IsApptcalProcess = isApptcalProcess

func isApptcalProcess(pid int) bool {
	output, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "comm=").Output()
	if err != nil {
		return false
	}
	comm := strings.TrimSpace(string(output))
	return comm == "apptcal" || strings.HasSuffix(comm, "/apptcal")
}

// Exists reports whether pid is alive
var Exists = processExists

func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil || process == nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Active reports whether the process that wrote info still holds the lock.
// A recorded start time guards against pid reuse.
func Active(info LockInfo) bool {
	if info.PID <= 0 {
		return false
	}
	if info.Start != "" {
		if start, err := StartTime(info.PID); err == nil && start != "" {
			return start == info.Start
		}
		return Exists(info.PID)
	}
	if IsApptcalProcess(info.PID) {
		return true
	}
	return Exists(info.PID)
}

// Lock is a held lock file
type Lock struct {
	path string
}

// Acquire takes the lock at path, replacing a stale or unreadable one
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(path); err == nil {
		info, err := ParseLockInfo(data)
		if err == nil && Active(info) {
			return nil, &LockedError{PID: info.PID}
		}
		os.Remove(path)
	}

	pid := os.Getpid()
	info := LockInfo{PID: pid}
	if start, err := StartTime(pid); err == nil {
		info.Start = start
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			// Lost a race with another starting server
			return nil, &LockedError{}
		}
		return nil, err
	}
	if _, err := f.WriteString(info.String()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
