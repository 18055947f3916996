package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/tailscale/hujson"
)

// NxFile is the workspace file that registers plugins.
const NxFile = "nx.json"

// PluginEntry is one registration from the nx.json plugins array.
type PluginEntry struct {
	Plugin  string         `json:"plugin"`
	Options map[string]any `json:"options,omitempty"`
	Include []string       `json:"include,omitempty"`
	Exclude []string       `json:"exclude,omitempty"`
}

// UnmarshalJSON accepts both the bare-string and the object form.
func (e *PluginEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*e = PluginEntry{Plugin: name}
		return nil
	}
	type entry PluginEntry
	var obj entry
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = PluginEntry(obj)
	return nil
}

// Matches reports whether the entry registers the named plugin. Entries may
// carry a scope or a local path prefix, e.g. "./tools/nx-typecheck".
func (e PluginEntry) Matches(name string) bool {
	p := strings.TrimSuffix(e.Plugin, "/")
	return p == name || strings.HasSuffix(p, "/"+name)
}

// Applies reports whether a matched configuration file (workspace-relative,
// slash separated) falls inside the entry's include and outside its exclude
// globs. No include globs means every file is included.
func (e PluginEntry) Applies(configFile string) bool {
	if len(e.Include) > 0 {
		included := false
		for _, pattern := range e.Include {
			if ok, _ := doublestar.Match(pattern, configFile); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pattern := range e.Exclude {
		if ok, _ := doublestar.Match(pattern, configFile); ok {
			return false
		}
	}
	return true
}

// ReadNxPlugins returns the plugin entries from <root>/nx.json. A missing
// nx.json yields no entries and no error.
func ReadNxPlugins(fs afero.Fs, root string) ([]PluginEntry, error) {
	path := filepath.Join(root, NxFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var nx struct {
		Plugins []PluginEntry `json:"plugins"`
	}
	if err := json.Unmarshal(std, &nx); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return nx.Plugins, nil
}

// LoadNxPluginOptions returns the entry registering pluginName. When nx.json
// does not register the plugin, an entry with no options is returned and
// found is false.
func LoadNxPluginOptions(fs afero.Fs, root, pluginName string) (entry PluginEntry, found bool, err error) {
	entries, err := ReadNxPlugins(fs, root)
	if err != nil {
		return PluginEntry{Plugin: pluginName}, false, err
	}
	for _, e := range entries {
		if e.Matches(pluginName) {
			return e, true, nil
		}
	}
	return PluginEntry{Plugin: pluginName}, false, nil
}

// MergePluginOptions overlays the tool config's plugin_options on the
// options from nx.json, key by key. Neither input is modified.
func (c *Config) MergePluginOptions(nxOptions map[string]any) map[string]any {
	merged := make(map[string]any, len(nxOptions)+len(c.PluginOptions))
	for k, v := range nxOptions {
		merged[k] = v
	}
	for k, v := range c.PluginOptions {
		merged[k] = v
	}
	return merged
}
