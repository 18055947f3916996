// pattern: Imperative Shell

// Package watch re-runs inference when files that shape the project graph
// change. Events are debounced so an editor's write-rename dance or a branch
// switch produces a single callback with every changed path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"tsgraph/internal/discovery"
	"tsgraph/internal/logging"
)

const defaultDebounce = 300 * time.Millisecond

// DefaultPatterns select the files whose changes can alter inferred nodes.
var DefaultPatterns = []string{
	"**/tsconfig*.json",
	"**/package.json",
	"**/project.json",
	"nx.json",
	"pnpm-workspace.yaml",
	".tsgraph.yaml",
}

// Config holds the parameters for a Watcher.
type Config struct {
	Root     string        // Workspace root to watch recursively
	Patterns []string      // Doublestar globs relative to Root; empty means DefaultPatterns
	Ignore   []string      // Directories matching these globs are not watched
	Debounce time.Duration // Quiet period before OnChange fires (default 300ms)

	// OnChange receives the sorted, deduplicated list of changed paths
	// relative to Root. Calls never overlap.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors a workspace and fires a debounced callback.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	patterns []string
	debounce time.Duration
	logger   *logging.ScopedLogger
	started  atomic.Bool

	dirsMu sync.Mutex
	dirs   map[string]bool
}

// New creates a Watcher and registers every non-ignored directory under
// cfg.Root.
func New(cfg Config, logger *logging.ScopedLogger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		patterns: patterns,
		debounce: debounce,
		logger:   logger,
		dirs:     make(map[string]bool),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.logger.Info("watching workspace", "root", root, "dirs", w.watchedDirs())
	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation. Run must be called exactly once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			// Previous callback still running; retry once it had time to finish.
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("change batch", "paths", changed)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Warn("change callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			rel, relevant := w.handle(evt)
			if !relevant {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("event queue overflowed, some changes may be missed", "error", err)
				continue
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}

// handle updates the watch set for an event and reports whether it should
// trigger re-inference. A removed or renamed watched directory is relevant
// because every project beneath it disappears.
func (w *Watcher) handle(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		if w.forgetDir(evt.Name) {
			return rel, true
		}
	}
	if evt.Has(fsnotify.Create) {
		if added, err := w.addNewDir(evt.Name); err != nil {
			w.logger.Warn("watch new directory", "path", evt.Name, "error", err)
		} else if added {
			return rel, true
		}
	}
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	return rel, w.matches(rel)
}

// addTree registers dir and every non-ignored directory beneath it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		w.dirsMu.Lock()
		w.dirs[path] = true
		w.dirsMu.Unlock()
		return nil
	})
}

// addNewDir starts watching a directory created after startup. Files that
// were written into it before the watch was added are picked up by the
// re-inference the creation triggers.
func (w *Watcher) addNewDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false, nil
	}
	if w.skipDir(path) {
		return false, nil
	}
	return true, w.addTree(path)
}

func (w *Watcher) forgetDir(path string) bool {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	if !w.dirs[path] {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
	return true
}

func (w *Watcher) skipDir(path string) bool {
	if discovery.AlwaysPruned(filepath.Base(path)) {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.cfg.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) matches(rel string) bool {
	for _, pattern := range w.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) watchedDirs() int {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	return len(w.dirs)
}

func validatePatterns(patterns []string, label string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pattern)
		}
	}
	return nil
}
