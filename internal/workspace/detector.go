// pattern: Imperative Shell

package workspace

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"tsgraph/internal/logging"
)

// Mode overrides solution-setup detection.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

// ParseMode validates a configured mode; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeOn, ModeOff:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid solution_setup %q (want auto, on or off)", s)
	}
}

const (
	packageJSONFile   = "package.json"
	pnpmWorkspaceFile = "pnpm-workspace.yaml"
	rootTsconfigFile  = "tsconfig.json"
	baseTsconfigFile  = "tsconfig.base.json"
)

// Detector decides whether a workspace uses the solution-style TypeScript
// setup: package-manager workspaces plus a root tsconfig.json that only
// references projects and extends a composite tsconfig.base.json.
type Detector struct {
	FS     afero.Fs
	Mode   Mode
	logger *logging.ScopedLogger
}

// NewDetector creates a Detector. A nil fs means the OS filesystem.
func NewDetector(fs afero.Fs, mode Mode, logger *logging.ScopedLogger) *Detector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Detector{FS: fs, Mode: mode, logger: logger}
}

// IsUsingTSSolutionSetup implements plugin.SolutionDetector. Unreadable or
// malformed files count as "not a solution setup".
func (d *Detector) IsUsingTSSolutionSetup(workspaceRoot string) bool {
	switch d.Mode {
	case ModeOn:
		return true
	case ModeOff:
		return false
	}

	if !d.usesPackageManagerWorkspaces(workspaceRoot) {
		return false
	}
	ok := d.hasSolutionTsconfig(workspaceRoot)
	d.logger.Debug("solution setup detected", "root", workspaceRoot, "enabled", ok)
	return ok
}

func (d *Detector) usesPackageManagerWorkspaces(root string) bool {
	if data, err := afero.ReadFile(d.FS, filepath.Join(root, pnpmWorkspaceFile)); err == nil {
		var pnpm struct {
			Packages []string `yaml:"packages"`
		}
		if err := yaml.Unmarshal(data, &pnpm); err != nil {
			d.logger.Debug("unreadable pnpm workspace file", "error", err)
		} else if len(pnpm.Packages) > 0 {
			return true
		}
	}

	var pkg struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := d.readJSONC(filepath.Join(root, packageJSONFile), &pkg); err != nil || len(pkg.Workspaces) == 0 {
		return false
	}

	var list []string
	if err := json.Unmarshal(pkg.Workspaces, &list); err == nil {
		return len(list) > 0
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(pkg.Workspaces, &obj); err == nil {
		return len(obj.Packages) > 0
	}
	return false
}

type rootTsconfig struct {
	Extends string    `json:"extends"`
	Files   *[]string `json:"files"`
	Include []string  `json:"include"`
}

type baseTsconfig struct {
	CompilerOptions *struct {
		Composite   *bool           `json:"composite"`
		Declaration *bool           `json:"declaration"`
		Paths       json.RawMessage `json:"paths"`
	} `json:"compilerOptions"`
}

func (d *Detector) hasSolutionTsconfig(root string) bool {
	var rootCfg rootTsconfig
	if err := d.readJSONC(filepath.Join(root, rootTsconfigFile), &rootCfg); err != nil {
		return false
	}
	if rootCfg.Extends != "./"+baseTsconfigFile && rootCfg.Extends != baseTsconfigFile {
		return false
	}
	if rootCfg.Files == nil || len(*rootCfg.Files) != 0 || len(rootCfg.Include) != 0 {
		return false
	}

	var baseCfg baseTsconfig
	if err := d.readJSONC(filepath.Join(root, baseTsconfigFile), &baseCfg); err != nil {
		return false
	}
	opts := baseCfg.CompilerOptions
	if opts == nil || opts.Composite == nil || !*opts.Composite {
		return false
	}
	if opts.Declaration != nil && !*opts.Declaration {
		return false
	}
	return len(opts.Paths) == 0
}

// readJSONC decodes a JSON file that may contain comments and trailing commas.
func (d *Detector) readJSONC(path string, v any) error {
	data, err := afero.ReadFile(d.FS, path)
	if err != nil {
		return err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := json.Unmarshal(std, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
