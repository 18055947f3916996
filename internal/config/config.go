// Package config loads tsgraph's own settings and the plugin entry from nx.json.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// FileName is the per-workspace config file, looked up at the workspace root.
const FileName = ".tsgraph.yaml"

// DataDirName holds the lock file, port file and logs inside a workspace.
const DataDirName = ".tsgraph"

const defaultCacheSize = 1024

type Config struct {
	Theme         string         `yaml:"theme"`
	LogLevel      string         `yaml:"log_level"`
	LogFile       string         `yaml:"log_file"`
	Output        string         `yaml:"output"`
	Ignore        []string       `yaml:"ignore"`
	Concurrency   int            `yaml:"concurrency"`
	CacheSize     *int           `yaml:"cache_size"`
	SolutionSetup string         `yaml:"solution_setup"`
	PluginName    string         `yaml:"plugin_name"`
	PluginOptions map[string]any `yaml:"plugin_options"`
}

func DefaultConfig() Config {
	return Config{
		Theme:         "mocha",
		LogLevel:      "info",
		Output:        "table",
		Ignore:        []string{"**/dist", "**/coverage", "tmp", "**/.nx", "**/.angular"},
		SolutionSetup: "auto",
		PluginName:    "nx-typecheck",
	}
}

// Load reads <workspaceRoot>/.tsgraph.yaml, falling back to the user config
// file. A missing file yields the defaults.
func Load(workspaceRoot string) (Config, error) {
	local := filepath.Join(workspaceRoot, FileName)
	if _, err := os.Stat(local); err == nil {
		return LoadFrom(local)
	}
	return LoadFrom(userConfigPath())
}

// LoadFromDir reads config.yaml from an explicit config directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// applyDefaults restores defaults for fields set to their zero value.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.SolutionSetup == "" {
		c.SolutionSetup = def.SolutionSetup
	}
	if c.PluginName == "" {
		c.PluginName = def.PluginName
	}
}

var (
	validOutputs = []string{"table", "json", "yaml"}
	validThemes  = []string{"latte", "frappe", "macchiato", "mocha"}
	validSetups  = []string{"auto", "on", "off"}
	validLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if !slices.Contains(validOutputs, c.Output) {
		return fmt.Errorf("output must be one of %v, got: %s", validOutputs, c.Output)
	}
	if !slices.Contains(validThemes, c.Theme) {
		return fmt.Errorf("theme must be one of %v, got: %s", validThemes, c.Theme)
	}
	if !slices.Contains(validSetups, c.SolutionSetup) {
		return fmt.Errorf("solution_setup must be one of %v, got: %s", validSetups, c.SolutionSetup)
	}
	if !slices.Contains(validLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got: %s", validLevels, c.LogLevel)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got: %d", c.Concurrency)
	}
	if c.CacheSize != nil && *c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got: %d", *c.CacheSize)
	}
	return nil
}

// ResolvedCacheSize returns the configured cache size; an explicit 0
// disables caching.
func (c *Config) ResolvedCacheSize() int {
	if c.CacheSize == nil {
		return defaultCacheSize
	}
	return *c.CacheSize
}

// DataDir returns the per-workspace directory for lock, port and log files.
func DataDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, DataDirName)
}

// ResolveLogFile returns the log file path, relative paths being anchored
// at the workspace data directory.
func (c *Config) ResolveLogFile(workspaceRoot string) string {
	if c.LogFile == "" {
		return filepath.Join(DataDir(workspaceRoot), "tsgraph.log")
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(DataDir(workspaceRoot), c.LogFile)
}

func userConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tsgraph", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "tsgraph", "config.yaml")
	}

	return filepath.Join(home, ".config", "tsgraph", "config.yaml")
}
