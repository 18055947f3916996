// pattern: Functional Core

package plugin

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"tsgraph/internal/graph"
)

// DirLister lists the entry names of a directory.
type DirLister interface {
	ReadDirNames(dir string) ([]string, error)
}

// DirListerFunc adapts a function to DirLister.
type DirListerFunc func(dir string) ([]string, error)

// ReadDirNames implements DirLister.
func (f DirListerFunc) ReadDirNames(dir string) ([]string, error) {
	return f(dir)
}

// FilesystemError reports a project directory that could not be listed.
type FilesystemError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("list project directory %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ProjectRoot returns the workspace-relative directory containing a
// configuration file. The workspace root itself is ".".
func ProjectRoot(configFile string) string {
	return path.Dir(filepath.ToSlash(configFile))
}

// ResolveNode infers the project node for one configuration file. It
// returns an empty result when the directory holds no project marker, and a
// *FilesystemError when the directory cannot be listed.
//
// The listing is sorted before use so the command order does not depend on
// the order the filesystem enumerates entries in.
func ResolveNode(configFile string, opts Options, syncEnabled bool, cctx graph.Context, lister DirLister) (graph.Result, error) {
	root := ProjectRoot(configFile)
	dir := filepath.Join(cctx.WorkspaceRoot, filepath.FromSlash(root))

	names, err := lister.ReadDirNames(dir)
	if err != nil {
		return graph.Result{}, &FilesystemError{Path: dir, Err: err}
	}
	siblings := slices.Sorted(slices.Values(names))

	if !IsValidProject(siblings) {
		return graph.Result{}, nil
	}

	node := graph.ProjectNode{
		Root: root,
		Targets: map[string]graph.TargetDefinition{
			opts.TypecheckTargetName: SynthesizeTarget(siblings, syncEnabled, root),
		},
	}
	return graph.Result{Projects: map[string]graph.ProjectNode{root: node}}, nil
}
