// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

var errNoWatcher = errors.New("no running tsgraph watcher found (start one with 'tsgraph watch --serve')")

// Discover checks whether a watcher is running for the workspace whose data
// directory is dataDir and returns its base URL (e.g. "http://127.0.0.1:12345").
// Returns an error if no watcher is running, the port file is missing, or the
// health check fails.
func Discover(dataDir string) (string, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return "", errNoWatcher
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return "", fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return "", errNoWatcher
	}

	data, err := os.ReadFile(filepath.Join(dataDir, portFileName))
	if err != nil {
		return "", fmt.Errorf("watcher detected but port file missing (is it running without --serve?): %w", err)
	}

	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("tsgraph port file is empty (try 'tsgraph instance cleanup')")
	}

	baseURL := "http://" + addr

	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return "", fmt.Errorf("tsgraph watcher not responding (try 'tsgraph instance cleanup'): %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tsgraph health check failed (status %d)", resp.StatusCode)
	}

	return baseURL, nil
}
