package workspace

import (
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestLister_ReadDirNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/ws/libs/a/tsconfig.json":     "{}",
		"/ws/libs/a/tsconfig.lib.json": "{}",
		"/ws/libs/a/package.json":      "{}",
		"/ws/libs/a/src/index.ts":      "",
	})

	names, err := NewLister(fs).ReadDirNames("/ws/libs/a")
	if err != nil {
		t.Fatalf("ReadDirNames() error = %v", err)
	}
	slices.Sort(names)
	want := []string{"package.json", "src", "tsconfig.json", "tsconfig.lib.json"}
	if !slices.Equal(names, want) {
		t.Errorf("ReadDirNames() = %v, want %v", names, want)
	}
}

func TestLister_MissingDirectory(t *testing.T) {
	_, err := NewLister(afero.NewMemMapFs()).ReadDirNames("/ws/gone")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestLister_NotADirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/ws/file": "x"})

	if _, err := NewLister(fs).ReadDirNames("/ws/file"); err == nil {
		t.Error("expected error listing a regular file")
	}
}

func TestLister_OSFilesystem(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/project.json", []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := NewLister(nil).ReadDirNames(dir)
	if err != nil {
		t.Fatalf("ReadDirNames() error = %v", err)
	}
	if !slices.Equal(names, []string{"project.json"}) {
		t.Errorf("ReadDirNames() = %v", names)
	}
}
