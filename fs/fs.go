// Package fs defines the filesystem abstraction used to read build output
// and configuration files.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the set of filesystem operations the deploy tooling needs.
// Paths are interpreted by the implementation; the go-billy backed
// implementation in fs/billy resolves relative paths against its root.
type Filesystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
	Stat(name string) (os.FileInfo, error)
	Walk(root string, walkFn filepath.WalkFunc) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
