// pattern: Functional Core

package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"gopkg.in/yaml.v3"
)

// Merge combines partial results into one keyed mapping. Nodes sharing a
// root have their targets unioned; on a target-name clash the later result wins.
func Merge(results ...Result) Result {
	var merged Result
	for _, r := range results {
		for root, node := range r.Projects {
			if merged.Projects == nil {
				merged.Projects = make(map[string]ProjectNode)
			}
			existing, ok := merged.Projects[root]
			if !ok {
				merged.Projects[root] = ProjectNode{
					Root:    node.Root,
					Targets: maps.Clone(node.Targets),
				}
				continue
			}
			if existing.Targets == nil {
				existing.Targets = make(map[string]TargetDefinition)
			}
			maps.Copy(existing.Targets, node.Targets)
			merged.Projects[root] = existing
		}
	}
	return merged
}

// Format selects an encoding for Encode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// Encode writes the result in the requested format. Map keys are emitted in
// sorted order by both encoders, so output is stable for a stable graph.
func Encode(w io.Writer, r Result, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
