// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tsgraph/internal/graph"
)

func TestBuildApp_RegistersCommands(t *testing.T) {
	env, _, _ := newTestEnv(t)
	app := BuildApp("1.0.0", env)

	for _, name := range []string{"infer", "show", "watch", "version"} {
		cmd, ok := app.commands[name]
		if !ok {
			t.Errorf("%s command not registered", name)
			continue
		}
		if cmd.Summary == "" || cmd.Usage == "" {
			t.Errorf("%s command should have summary and usage", name)
		}
	}

	group, ok := app.groups["instance"]
	if !ok {
		t.Fatal("instance group not registered")
	}
	for _, name := range []string{"status", "refresh", "cleanup"} {
		if _, ok := group.Commands[name]; !ok {
			t.Errorf("instance %s not registered", name)
		}
	}
}

func TestBuildApp_VersionCommand_PrintsVersion(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	app := BuildApp("1.2.3", env)

	if _, err := app.Execute(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if stdout.String() != "1.2.3\n" {
		t.Errorf("version output = %q, want \"1.2.3\\n\"", stdout.String())
	}
}

func decodeResult(t *testing.T, data []byte) graph.Result {
	t.Helper()
	var result graph.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, data)
	}
	return result
}

func TestInfer_JSON(t *testing.T) {
	env, stdout, _ := newTestEnv(t)

	if err := runInfer(context.Background(), env, []string{"--format", "json"}); err != nil {
		t.Fatalf("infer error = %v", err)
	}

	result := decodeResult(t, stdout.Bytes())
	if diff := cmp.Diff([]string{"packages/a", "packages/b"}, result.Roots()); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}

	a := result.Projects["packages/a"].Targets["typecheck"]
	if diff := cmp.Diff([]string{"tsc --noEmit -p tsconfig.lib.json"}, a.Options.Commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if a.Options.Cwd != "packages/a" {
		t.Errorf("cwd = %q, want packages/a", a.Options.Cwd)
	}
	if a.HasSyncGenerators() {
		t.Error("workspace without package-manager workspaces should not get sync generators")
	}

	b := result.Projects["packages/b"].Targets["typecheck"]
	if b.Options.Commands == nil || len(b.Options.Commands) != 0 {
		t.Errorf("packages/b commands = %#v, want empty list", b.Options.Commands)
	}
}

func TestInfer_TargetNameOverride(t *testing.T) {
	env, stdout, _ := newTestEnv(t)

	if err := runInfer(context.Background(), env, []string{"-f", "json", "--target-name", "tsc"}); err != nil {
		t.Fatalf("infer error = %v", err)
	}

	result := decodeResult(t, stdout.Bytes())
	targets := result.Projects["packages/a"].Targets
	if _, ok := targets["tsc"]; !ok {
		t.Errorf("targets = %v, want tsc", targets)
	}
	if _, ok := targets["typecheck"]; ok {
		t.Error("default target name should be replaced")
	}
}

func TestInfer_NxOptions(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	writeFiles(t, env.Workspace, map[string]string{
		"nx.json": `{
			// JSONC is accepted
			"plugins": [{"plugin": "nx-typecheck", "options": {"typecheckTargetName": "check"}},],
		}`,
	})

	if err := runInfer(context.Background(), env, []string{"--format=json"}); err != nil {
		t.Fatalf("infer error = %v", err)
	}

	result := decodeResult(t, stdout.Bytes())
	if _, ok := result.Projects["packages/b"].Targets["check"]; !ok {
		t.Errorf("targets = %v, want check from nx.json", result.Projects["packages/b"].Targets)
	}
}

func TestInfer_YAML(t *testing.T) {
	env, stdout, _ := newTestEnv(t)

	if err := runInfer(context.Background(), env, []string{"--format", "yaml"}); err != nil {
		t.Fatalf("infer error = %v", err)
	}
	for _, want := range []string{"projects:", "packages/a:", "typecheck:"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("yaml output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestInfer_TableIsDefault(t *testing.T) {
	env, stdout, _ := newTestEnv(t)

	if err := runInfer(context.Background(), env, nil); err != nil {
		t.Fatalf("infer error = %v", err)
	}
	for _, want := range []string{"PROJECT", "packages/a", "packages/b", "2 projects, 1 type-check commands"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestInfer_OutFile(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	if err := runInfer(context.Background(), env, []string{"--format", "json", "--out", out}); err != nil {
		t.Fatalf("infer error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty with --out, got %q", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(decodeResult(t, data).Projects) != 2 {
		t.Errorf("output file should hold both projects:\n%s", data)
	}
}

func TestInfer_InvalidArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown format", []string{"--format", "xml"}, "unknown format"},
		{"positional argument", []string{"packages/a"}, "unexpected arguments"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := newTestEnv(t)
			err := runInfer(context.Background(), env, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInfer_InvalidLogLevel(t *testing.T) {
	env, _, _ := newTestEnv(t)
	env.LogLevel = "loud"

	if err := runInfer(context.Background(), env, nil); err == nil {
		t.Error("expected error for invalid --log-level")
	}
}

func TestShow(t *testing.T) {
	env, stdout, _ := newTestEnv(t)

	if err := runShow(context.Background(), env, []string{"./packages/a/"}); err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"packages/a", "typecheck", "tsc --noEmit -p tsconfig.lib.json"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestShow_JSON(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	abs := filepath.Join(env.Workspace, "packages", "b")

	if err := runShow(context.Background(), env, []string{"--format", "json", abs}); err != nil {
		t.Fatalf("show error = %v", err)
	}

	result := decodeResult(t, stdout.Bytes())
	if diff := cmp.Diff([]string{"packages/b"}, result.Roots()); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestShow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no argument", nil, "usage: tsgraph show"},
		{"no project marker", []string{"tools/scripts"}, `no inferred project at "tools/scripts"`},
		{"outside workspace", []string{"../elsewhere"}, "outside the workspace"},
		{"bad format", []string{"--format", "xml", "packages/a"}, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := newTestEnv(t)
			err := runShow(context.Background(), env, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestProjectRootArg(t *testing.T) {
	ws := filepath.Join(string(filepath.Separator), "ws")
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"packages/a", "packages/a", false},
		{"./packages/a/", "packages/a", false},
		{".", ".", false},
		{"", ".", false},
		{filepath.Join(ws, "libs", "ui"), "libs/ui", false},
		{ws, ".", false},
		{"../other", "", true},
		{filepath.Join(string(filepath.Separator), "other"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ProjectRootArg(ws, tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProjectRootArg(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFindWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"nx.json":                 `{}`,
		"packages/a/src/index.ts": ``,
	})

	nested := filepath.Join(root, "packages", "a", "src")
	if got := FindWorkspaceRoot(nested); got != root {
		t.Errorf("FindWorkspaceRoot(nested) = %q, want %q", got, root)
	}
	if got := FindWorkspaceRoot(root); got != root {
		t.Errorf("FindWorkspaceRoot(root) = %q, want %q", got, root)
	}
}

func TestResolveWorkspace_Explicit(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveWorkspace(dir)
	if err != nil {
		t.Fatalf("ResolveWorkspace error = %v", err)
	}
	if got != dir {
		t.Errorf("ResolveWorkspace = %q, want %q", got, dir)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveWorkspace(file); err == nil {
		t.Error("expected error for a file path")
	}
	if _, err := ResolveWorkspace(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestLoadConfig_ConfigDir(t *testing.T) {
	env, _, _ := newTestEnv(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"config.yaml": "theme: latte\noutput: json\n"})
	env.ConfigDir = dir

	cfg, err := env.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if cfg.Theme != "latte" || cfg.Output != "json" {
		t.Errorf("cfg = %+v, want theme latte and output json", cfg)
	}
}
