package deploy

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/input-output-hk/catalyst-forge-deploy/fs"
)

// FileEntry is a regular file found under the source directory.
type FileEntry struct {
	// Path locates the file on the source filesystem. A Deployer reading
	// the native filesystem always produces absolute paths.
	Path string

	// RelPath is relative to the source directory and always uses forward
	// slashes.
	RelPath string
}

// Enumerate returns every regular file beneath root, sorted by RelPath.
// A missing or unreadable root is a filesystem error.
func Enumerate(fsys fs.Filesystem, root string) ([]FileEntry, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fileSystemError(err, "deploy.enumerate", root)
	}
	if !info.IsDir() {
		return nil, fileSystemError(
			&os.PathError{Op: "enumerate", Path: root, Err: os.ErrInvalid},
			"deploy.enumerate", root)
	}

	var entries []FileEntry
	err = fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			// Symlinked files are published with their target's contents;
			// symlinked directories are not followed.
			target, statErr := fsys.Stat(path)
			if statErr != nil {
				return statErr
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fileSystemError(err, "deploy.enumerate", root)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})
	return entries, nil
}
