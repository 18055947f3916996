// pattern: Imperative Shell

// Package discovery finds the configuration files a plugin matches on.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"tsgraph/internal/logging"
)

// prunedDirs are never descended into, whatever the ignore patterns say.
// Other dot-directories such as .storybook are walked unless an ignore glob
// prunes them.
var prunedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".tsgraph":     true,
}

// AlwaysPruned reports whether a directory name is skipped regardless of
// the configured ignore globs.
func AlwaysPruned(name string) bool {
	return prunedDirs[name]
}

// Scanner walks a workspace for files matching a glob pattern.
type Scanner struct {
	fs     afero.Fs
	ignore []string
	logger *logging.ScopedLogger
}

// NewScanner creates a scanner. Ignore patterns are doublestar globs
// relative to the workspace root; a matching directory is pruned.
func NewScanner(fs afero.Fs, ignore []string, logger *logging.ScopedLogger) (*Scanner, error) {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{fs: fs, ignore: ignore, logger: logger}, nil
}

// Scan returns the workspace-relative, slash-separated paths of all files
// under root matching pattern, sorted.
func (s *Scanner) Scan(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var matches []string
	err := afero.Walk(s.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && s.skipDir(rel, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignored(rel) {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.Sort(matches)
	s.logger.Debug("scan finished", "root", root, "pattern", pattern, "matches", len(matches))
	return matches, nil
}

func (s *Scanner) skipDir(rel, name string) bool {
	if AlwaysPruned(name) {
		return true
	}
	return s.ignored(rel)
}

func (s *Scanner) ignored(rel string) bool {
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
