// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "tsgraph.lock"
	portFileName = "tsgraph.port"
)

// ErrAlreadyRunning is returned when another watcher holds the workspace lock.
var ErrAlreadyRunning = errors.New("another tsgraph watcher is already running for this workspace")

// Lock acquires an exclusive file lock so only one watcher serves a workspace.
// Returns the flock handle (caller must defer Cleanup) or ErrAlreadyRunning.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return fl, nil
}

// WritePort writes the web server's listener address to the port file.
func WritePort(dataDir, addr string) error {
	return os.WriteFile(filepath.Join(dataDir, portFileName), []byte(addr), 0600)
}

// Cleanup removes the port file and releases the file lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, portFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}

// RemoveStale deletes the lock and port files left behind by a watcher that
// exited without cleaning up. It refuses while a live watcher holds the lock.
// The returned list names the files that were removed.
func RemoveStale(dataDir string) ([]string, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil, nil
	}
	lockPath := filepath.Join(dataDir, lockFileName)
	_, statErr := os.Stat(lockPath)
	lockExisted := statErr == nil

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to check lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = fl.Unlock() }()

	var removed []string
	for _, name := range []string{portFileName, lockFileName} {
		path := filepath.Join(dataDir, name)
		if name == lockFileName && !lockExisted {
			// Created by the probe above.
			_ = os.Remove(path)
			continue
		}
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		} else if !os.IsNotExist(err) {
			return removed, err
		}
	}
	return removed, nil
}
