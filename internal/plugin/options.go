// pattern: Functional Core

package plugin

import (
	"maps"
	"slices"
)

// DefaultTypecheckTargetName is used when no target name is configured.
const DefaultTypecheckTargetName = "typecheck"

// OptionTypecheckTargetName is the only recognized plugin option key.
const OptionTypecheckTargetName = "typecheckTargetName"

// Options are the normalized plugin options.
type Options struct {
	TypecheckTargetName string `json:"typecheckTargetName" yaml:"typecheckTargetName"`
}

// PartialOptions are caller-supplied options where any field may be absent.
type PartialOptions struct {
	TypecheckTargetName *string
}

// NormalizeOptions fills absent fields with their defaults. A nil argument
// yields the defaults.
func NormalizeOptions(p *PartialOptions) Options {
	opts := Options{TypecheckTargetName: DefaultTypecheckTargetName}
	if p == nil {
		return opts
	}
	if p.TypecheckTargetName != nil && *p.TypecheckTargetName != "" {
		opts.TypecheckTargetName = *p.TypecheckTargetName
	}
	return opts
}

// DecodeOptions extracts recognized keys from a raw option map. Values of
// the wrong type or empty strings are treated as absent. Unrecognized keys
// are returned in sorted order.
func DecodeOptions(raw map[string]any) (PartialOptions, []string) {
	var p PartialOptions
	var ignored []string
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		switch key {
		case OptionTypecheckTargetName:
			if s, ok := raw[key].(string); ok && s != "" {
				p.TypecheckTargetName = &s
			}
		default:
			ignored = append(ignored, key)
		}
	}
	return p, ignored
}
