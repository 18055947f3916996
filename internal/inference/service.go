// pattern: Imperative Shell

// Package inference runs the typecheck plugin over a workspace: it loads the
// plugin registration, discovers matching files and builds the graph.
package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"

	"tsgraph/internal/batch"
	"tsgraph/internal/config"
	"tsgraph/internal/discovery"
	"tsgraph/internal/graph"
	"tsgraph/internal/logging"
	"tsgraph/internal/plugin"
	"tsgraph/internal/workspace"
)

// Snapshot is the outcome of one inference run.
type Snapshot struct {
	Workspace     string        `json:"workspace"`
	Result        graph.Result  `json:"result"`
	ConfigFiles   []string      `json:"configFiles"`
	SolutionSetup bool          `json:"solutionSetup"`
	TargetName    string        `json:"targetName"`
	GeneratedAt   time.Time     `json:"generatedAt"`
	Duration      time.Duration `json:"duration"`
	Cache         batch.Stats   `json:"cache"`
}

// Overrides are per-run settings taken from the command line.
type Overrides struct {
	TargetName string
}

// Service infers project nodes for a single workspace.
type Service struct {
	root      string
	fs        afero.Fs
	cfg       config.Config
	scanner   *discovery.Scanner
	batcher   *batch.Batcher
	plugin    *plugin.Plugin
	overrides Overrides
	logger    *logging.ScopedLogger

	mu   sync.RWMutex
	last *Snapshot
}

// New wires the plugin and its collaborators for the workspace at root.
func New(root string, fs afero.Fs, cfg config.Config, overrides Overrides, logs logging.LoggerProvider) (*Service, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	mode, err := workspace.ParseMode(cfg.SolutionSetup)
	if err != nil {
		return nil, err
	}
	scanner, err := discovery.NewScanner(fs, cfg.Ignore, logs.For("discovery"))
	if err != nil {
		return nil, err
	}
	batcher, err := batch.New(batch.Config{
		Concurrency: cfg.Concurrency,
		CacheSize:   cfg.ResolvedCacheSize(),
	}, fs, logs.For("batch"))
	if err != nil {
		return nil, err
	}
	detector := workspace.NewDetector(fs, mode, logs.For("workspace"))

	return &Service{
		root:      root,
		fs:        fs,
		cfg:       cfg,
		scanner:   scanner,
		batcher:   batcher,
		plugin:    plugin.New(workspace.NewLister(fs), detector, batcher, logs.For("plugin")),
		overrides: overrides,
		logger:    logs.For("inference"),
	}, nil
}

// Root returns the workspace root.
func (s *Service) Root() string { return s.root }

// Infer runs one full inference pass and records it as the latest snapshot.
func (s *Service) Infer(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	entry, found, err := config.LoadNxPluginOptions(s.fs, s.root, s.cfg.PluginName)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load plugin registration: %w", err)
	}
	if !found {
		s.logger.Debug("plugin not registered in nx.json, using defaults", "plugin", s.cfg.PluginName)
	}
	options := s.cfg.MergePluginOptions(entry.Options)
	if s.overrides.TargetName != "" {
		options[plugin.OptionTypecheckTargetName] = s.overrides.TargetName
	}

	matched, err := s.scanner.Scan(s.root, s.plugin.Pattern())
	if err != nil {
		return Snapshot{}, fmt.Errorf("discover config files: %w", err)
	}
	files := make([]string, 0, len(matched))
	for _, f := range matched {
		if entry.Applies(f) {
			files = append(files, f)
		}
	}

	outcome, err := s.plugin.Run(ctx, files, options, graph.Context{WorkspaceRoot: s.root})
	if err != nil {
		s.logger.Error("inference failed", "error", err)
		return Snapshot{}, err
	}
	result := outcome.Result

	snap := Snapshot{
		Workspace:     s.root,
		Result:        result,
		ConfigFiles:   files,
		SolutionSetup: outcome.SolutionSetup,
		TargetName:    outcome.Options.TypecheckTargetName,
		GeneratedAt:   time.Now(),
		Duration:      time.Since(start),
		Cache:         s.batcher.Stats(),
	}

	s.logger.Info("inference complete",
		"files", len(files),
		"projects", len(result.Projects),
		"duration", snap.Duration.String(),
	)

	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
	return snap, nil
}

// Last returns the most recent successful snapshot.
func (s *Service) Last() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Invalidate drops cached resolutions so the next run re-reads every project.
func (s *Service) Invalidate() {
	s.batcher.Purge()
}
