// pattern: Functional Core

// Package graph holds the project-graph fragments produced by node inference
// and consumed by the host build graph.
package graph

import (
	"context"
	"maps"
	"slices"
)

// Context carries the host-provided information shared by every resolution
// in a batch.
type Context struct {
	WorkspaceRoot string // Absolute path to the workspace root
}

// RunCommandsOptions are the options passed to the run-commands executor.
type RunCommandsOptions struct {
	Commands []string `json:"commands" yaml:"commands"`
	Parallel bool     `json:"parallel" yaml:"parallel"`
	Cwd      string   `json:"cwd" yaml:"cwd"`
}

// TargetMetadata describes a target for humans and tooling.
type TargetMetadata struct {
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// TargetDefinition is a declarative unit of work attached to a project.
//
// SyncGenerators is a pointer so that "no sync needed" (nil) stays distinct
// from "sync list empty" (pointer to an empty slice) on the wire.
type TargetDefinition struct {
	Executor       string             `json:"executor" yaml:"executor"`
	Options        RunCommandsOptions `json:"options" yaml:"options"`
	Cache          bool               `json:"cache" yaml:"cache"`
	Inputs         []Input            `json:"inputs" yaml:"inputs"`
	Parallelism    bool               `json:"parallelism" yaml:"parallelism"`
	Metadata       TargetMetadata     `json:"metadata" yaml:"metadata"`
	SyncGenerators *[]string          `json:"syncGenerators,omitempty" yaml:"syncGenerators,omitempty"`
}

// HasSyncGenerators reports whether the sync-generator field is present.
func (t TargetDefinition) HasSyncGenerators() bool {
	return t.SyncGenerators != nil
}

// SyncGeneratorList returns the sync generators, or nil when the field is absent.
func (t TargetDefinition) SyncGeneratorList() []string {
	if t.SyncGenerators == nil {
		return nil
	}
	return *t.SyncGenerators
}

// ProjectNode is a project keyed by its root in a Result.
type ProjectNode struct {
	Root    string                      `json:"root" yaml:"root"`
	Targets map[string]TargetDefinition `json:"targets" yaml:"targets"`
}

// TargetNames returns the node's target names in sorted order.
func (p ProjectNode) TargetNames() []string {
	return slices.Sorted(maps.Keys(p.Targets))
}

// Result is a partial project graph keyed by project root.
type Result struct {
	Projects map[string]ProjectNode `json:"projects,omitempty" yaml:"projects,omitempty"`
}

// Empty reports whether the result carries no projects.
func (r Result) Empty() bool {
	return len(r.Projects) == 0
}

// Roots returns the project roots in sorted order.
func (r Result) Roots() []string {
	return slices.Sorted(maps.Keys(r.Projects))
}

// Project looks up a node by root.
func (r Result) Project(root string) (ProjectNode, bool) {
	p, ok := r.Projects[root]
	return p, ok
}

// ResolveFunc resolves a single matched configuration file into a partial graph.
type ResolveFunc func(ctx context.Context, configFile string) (Result, error)
