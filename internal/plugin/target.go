// pattern: Functional Core

package plugin

import (
	"strings"

	"tsgraph/internal/graph"
)

const (
	// BaseConfigFile is the file the plugin matches on; it is never type-checked itself.
	BaseConfigFile = "tsconfig.json"

	configPrefix = "tsconfig"
	configSuffix = ".json"

	// RunCommandsExecutor runs a list of shell commands.
	RunCommandsExecutor = "nx:run-commands"

	// TypeScriptPackage is fingerprinted as an external dependency so a
	// compiler upgrade invalidates cached results.
	TypeScriptPackage = "typescript"

	// TypeScriptSyncGenerator keeps project references in sync in a
	// solution-style workspace.
	TypeScriptSyncGenerator = "@nx/js:typescript-sync"

	targetDescription = "Run Typechecking"
)

// IsTypecheckConfig reports whether a sibling file is a configuration
// variant that gets its own type-check command.
func IsTypecheckConfig(name string) bool {
	return name != BaseConfigFile &&
		strings.HasPrefix(name, configPrefix) &&
		strings.HasSuffix(name, configSuffix)
}

// TypecheckCommand returns the no-emit compiler invocation for one config file.
func TypecheckCommand(configFile string) string {
	return "tsc --noEmit -p " + configFile
}

// SynthesizeTarget builds the type-check target for a project from its
// directory listing. Commands follow the order of siblings. A listing with
// no configuration variants yields a target with an empty command list.
func SynthesizeTarget(siblings []string, syncEnabled bool, projectRoot string) graph.TargetDefinition {
	commands := make([]string, 0, len(siblings))
	for _, name := range siblings {
		if IsTypecheckConfig(name) {
			commands = append(commands, TypecheckCommand(name))
		}
	}

	target := graph.TargetDefinition{
		Executor: RunCommandsExecutor,
		Options: graph.RunCommandsOptions{
			Commands: commands,
			Parallel: true,
			Cwd:      projectRoot,
		},
		Cache: true,
		Inputs: []graph.Input{
			graph.NamedInput("default"),
			graph.NamedInput("^default"),
			graph.ExternalDependenciesInput(TypeScriptPackage),
		},
		Parallelism: true,
		Metadata: graph.TargetMetadata{
			Description:  targetDescription,
			Technologies: []string{TypeScriptPackage},
		},
	}

	if syncEnabled {
		generators := []string{TypeScriptSyncGenerator}
		target.SyncGenerators = &generators
	}

	return target
}
