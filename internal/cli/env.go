// pattern: Imperative Shell
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"tsgraph/internal/config"
	"tsgraph/internal/inference"
	"tsgraph/internal/logging"
)

// Env carries the global options and I/O shared by every command.
type Env struct {
	Workspace string // Absolute workspace root
	ConfigDir string // Explicit config directory; empty means workspace or user config
	LogLevel  string // Overrides the configured log level when set
	FS        afero.Fs
	Stdout    io.Writer
	Stderr    io.Writer
}

// NewEnv resolves the workspace root and fills in OS defaults.
func NewEnv(workspace, configDir, logLevel string) (*Env, error) {
	root, err := ResolveWorkspace(workspace)
	if err != nil {
		return nil, err
	}
	return &Env{
		Workspace: root,
		ConfigDir: configDir,
		LogLevel:  logLevel,
		FS:        afero.NewOsFs(),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}, nil
}

// ResolveWorkspace returns the absolute workspace root. An explicit path is
// used as is; otherwise the nearest ancestor of the working directory that
// holds nx.json wins, falling back to the working directory itself.
func ResolveWorkspace(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve workspace: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("resolve workspace: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("resolve workspace: %s is not a directory", abs)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return FindWorkspaceRoot(cwd), nil
}

// FindWorkspaceRoot walks up from start looking for nx.json and returns
// start when none is found.
func FindWorkspaceRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, config.NxFile)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// LoadConfig loads the tool config and applies the --log-level override.
func (e *Env) LoadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if e.ConfigDir != "" {
		cfg, err = config.LoadFromDir(e.ConfigDir)
	} else {
		cfg, err = config.Load(e.Workspace)
	}
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// OpenLogs creates the log manager for a command run. console receives
// warnings and errors in human-readable form; nil keeps the terminal clean
// for the TUI.
func (e *Env) OpenLogs(cfg config.Config, console io.Writer) (*logging.Manager, error) {
	logs, err := logging.NewManager(logging.Config{
		FilePath:       cfg.ResolveLogFile(e.Workspace),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
		Console:        console,
		ConsoleLevel:   "warn",
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	return logs, nil
}

// NewService wires an inference service for the workspace.
func (e *Env) NewService(cfg config.Config, targetName string, logs logging.LoggerProvider) (*inference.Service, error) {
	return inference.New(e.Workspace, e.FS, cfg, inference.Overrides{TargetName: targetName}, logs)
}
