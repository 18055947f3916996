// pattern: Functional Core

package graph

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Input is a cache-input descriptor. On the wire it is either a named input
// set ("default", "^default") or an object fingerprinting external packages.
type Input struct {
	Named                string
	ExternalDependencies []string
}

// NamedInput returns a descriptor referencing a named input set.
func NamedInput(name string) Input {
	return Input{Named: name}
}

// ExternalDependenciesInput returns a descriptor keyed to the installed
// versions of the given packages.
func ExternalDependenciesInput(packages ...string) Input {
	return Input{ExternalDependencies: packages}
}

// String returns a compact human-readable form.
func (in Input) String() string {
	if in.Named != "" {
		return in.Named
	}
	return fmt.Sprintf("externalDependencies%v", in.ExternalDependencies)
}

type externalDependenciesJSON struct {
	ExternalDependencies []string `json:"externalDependencies" yaml:"externalDependencies"`
}

// MarshalJSON implements json.Marshaler.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.Named != "" {
		return json.Marshal(in.Named)
	}
	return json.Marshal(externalDependenciesJSON{ExternalDependencies: in.ExternalDependencies})
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Input) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*in = Input{Named: name}
		return nil
	}
	var obj externalDependenciesJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("input must be a string or an externalDependencies object: %w", err)
	}
	*in = Input{ExternalDependencies: obj.ExternalDependencies}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (in Input) MarshalYAML() (any, error) {
	if in.Named != "" {
		return in.Named, nil
	}
	return externalDependenciesJSON{ExternalDependencies: in.ExternalDependencies}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (in *Input) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*in = Input{Named: node.Value}
		return nil
	}
	var obj externalDependenciesJSON
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("input must be a string or an externalDependencies mapping: %w", err)
	}
	*in = Input{ExternalDependencies: obj.ExternalDependencies}
	return nil
}
