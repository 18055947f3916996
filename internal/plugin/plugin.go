// pattern: Imperative Shell

// Package plugin infers a type-check target for every project that carries
// a tsconfig.json next to a package.json or project.json.
package plugin

import (
	"context"
	"fmt"

	"tsgraph/internal/graph"
	"tsgraph/internal/logging"
)

const (
	// Name identifies the plugin in nx.json.
	Name = "nx-typecheck"

	// Pattern matches every base configuration file in the workspace.
	Pattern = "**/" + BaseConfigFile
)

// SolutionDetector reports whether the workspace uses the solution-style
// TypeScript setup (package-manager workspaces plus project references).
type SolutionDetector interface {
	IsUsingTSSolutionSetup(workspaceRoot string) bool
}

// SolutionDetectorFunc adapts a function to SolutionDetector.
type SolutionDetectorFunc func(workspaceRoot string) bool

// IsUsingTSSolutionSetup implements SolutionDetector.
func (f SolutionDetectorFunc) IsUsingTSSolutionSetup(workspaceRoot string) bool {
	return f(workspaceRoot)
}

// Batcher invokes a per-file resolver over a set of matched files and merges
// the results. Implementations may dedupe and run resolutions concurrently.
type Batcher interface {
	CreateNodesFromFiles(ctx context.Context, resolve graph.ResolveFunc, configFiles []string, fingerprint string, cctx graph.Context) (graph.Result, error)
}

// Plugin is the host-facing registration: a match pattern plus CreateNodes.
type Plugin struct {
	lister   DirLister
	detector SolutionDetector
	batcher  Batcher
	logger   *logging.ScopedLogger
}

// New creates the plugin. A nil logger discards output.
func New(lister DirLister, detector SolutionDetector, batcher Batcher, logger *logging.ScopedLogger) *Plugin {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Plugin{
		lister:   lister,
		detector: detector,
		batcher:  batcher,
		logger:   logger,
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return Name }

// Pattern returns the glob the host matches configuration files against.
func (p *Plugin) Pattern() string { return Pattern }

// Outcome is a batch result together with the settings it was built with.
type Outcome struct {
	Result        graph.Result
	Options       Options
	SolutionSetup bool
}

// CreateNodes resolves a batch of matched configuration files. Options are
// normalized and the solution setup is detected once per batch.
func (p *Plugin) CreateNodes(ctx context.Context, configFiles []string, raw map[string]any, cctx graph.Context) (graph.Result, error) {
	outcome, err := p.Run(ctx, configFiles, raw, cctx)
	return outcome.Result, err
}

// Run is CreateNodes that also reports the normalized options and the
// solution-setup flag every node in the result was synthesized with.
func (p *Plugin) Run(ctx context.Context, configFiles []string, raw map[string]any, cctx graph.Context) (Outcome, error) {
	partial, ignored := DecodeOptions(raw)
	if len(ignored) > 0 {
		p.logger.Debug("ignoring unrecognized plugin options", "keys", ignored)
	}
	opts := NormalizeOptions(&partial)
	syncEnabled := p.detector.IsUsingTSSolutionSetup(cctx.WorkspaceRoot)

	p.logger.Debug("creating nodes",
		"files", len(configFiles),
		"target", opts.TypecheckTargetName,
		"sync", syncEnabled,
	)

	resolve := func(_ context.Context, configFile string) (graph.Result, error) {
		result, err := ResolveNode(configFile, opts, syncEnabled, cctx, p.lister)
		if err != nil {
			return graph.Result{}, err
		}
		if result.Empty() {
			p.logger.Debug("no project marker, skipping", "config", configFile)
		}
		return result, nil
	}

	fingerprint := fmt.Sprintf("%s|target=%s|sync=%t", Name, opts.TypecheckTargetName, syncEnabled)
	result, err := p.batcher.CreateNodesFromFiles(ctx, resolve, configFiles, fingerprint, cctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: result, Options: opts, SolutionSetup: syncEnabled}, nil
}
