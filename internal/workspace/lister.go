// pattern: Imperative Shell

// Package workspace provides the filesystem-facing collaborators of node
// inference: directory listing and solution-setup detection.
package workspace

import (
	"os"

	"github.com/spf13/afero"
)

// Lister lists directory entries through an afero filesystem.
type Lister struct {
	FS afero.Fs
}

// NewLister returns a Lister over fs; a nil fs means the OS filesystem.
func NewLister(fs afero.Fs) *Lister {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Lister{FS: fs}
}

// ReadDirNames returns the names of all entries in dir, in the order the
// filesystem reports them.
func (l *Lister) ReadDirNames(dir string) ([]string, error) {
	info, err := l.FS.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: dir, Err: os.ErrInvalid}
	}

	f, err := l.FS.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return f.Readdirnames(-1)
}
