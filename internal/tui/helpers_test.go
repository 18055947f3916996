package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tsgraph/internal/graph"
	"tsgraph/internal/inference"
	"tsgraph/internal/plugin"
)

// sampleResult returns two projects: one with two type-check configs and
// sync generators, one without any config variants.
func sampleResult() graph.Result {
	return graph.Result{Projects: map[string]graph.ProjectNode{
		"packages/b": {
			Root: "packages/b",
			Targets: map[string]graph.TargetDefinition{
				"typecheck": plugin.SynthesizeTarget([]string{"package.json", "tsconfig.json"}, false, "packages/b"),
			},
		},
		"packages/a": {
			Root: "packages/a",
			Targets: map[string]graph.TargetDefinition{
				"typecheck": plugin.SynthesizeTarget(
					[]string{"package.json", "tsconfig.json", "tsconfig.lib.json", "tsconfig.spec.json"},
					true, "packages/a"),
			},
		},
	}}
}

func sampleSnapshot() inference.Snapshot {
	return inference.Snapshot{
		Workspace:     "/ws",
		Result:        sampleResult(),
		ConfigFiles:   []string{"packages/a/tsconfig.json", "packages/b/tsconfig.json", "tsconfig.json"},
		SolutionSetup: true,
		TargetName:    "typecheck",
	}
}

// newTestModel returns a sized model with no inference function and no log feed.
func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel("mocha", "/ws", nil, nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
