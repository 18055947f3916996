package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// workspaceFiles is a small Nx workspace: two projects and one tsconfig
// without a project marker.
var workspaceFiles = map[string]string{
	"nx.json":                      `{"plugins": ["nx-typecheck"]}`,
	"packages/a/package.json":      `{"name": "a"}`,
	"packages/a/tsconfig.json":     `{}`,
	"packages/a/tsconfig.lib.json": `{}`,
	"packages/b/project.json":      `{"name": "b"}`,
	"packages/b/tsconfig.json":     `{}`,
	"tools/scripts/tsconfig.json":  `{}`,
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// newTestEnv creates a workspace in a temp dir and an Env writing to buffers.
// The user config directory is isolated so a developer's settings never leak in.
func newTestEnv(t *testing.T) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	writeFiles(t, root, workspaceFiles)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Env{
		Workspace: root,
		FS:        afero.NewOsFs(),
		Stdout:    stdout,
		Stderr:    stderr,
	}, stdout, stderr
}
