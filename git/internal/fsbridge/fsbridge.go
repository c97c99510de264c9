// Package fsbridge connects fs.Filesystem to go-git's billy-based storage.
package fsbridge

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	fsb "github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
)

// MinCacheSize is used when a non-positive object cache size is requested.
const MinCacheSize = 100

// ToBillyFilesystem returns the go-billy filesystem behind fsys. Only
// filesystems created by the fs/billy package can be converted.
//
//nolint:ireturn // go-git consumes billy.Filesystem
func ToBillyFilesystem(fsys fs.Filesystem) (billy.Filesystem, error) {
	b, ok := fsys.(*fsb.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be a billy.FS from fs/billy package, got %T", fsys)
	}
	return b.Raw(), nil
}

// NewStorage returns git object storage on billyFS with an LRU object cache
// of cacheSize entries.
func NewStorage(billyFS billy.Filesystem, cacheSize int) *filesystem.Storage {
	if cacheSize <= 0 {
		cacheSize = MinCacheSize
	}
	return filesystem.NewStorage(billyFS, cache.NewObjectLRU(cache.FileSize(cacheSize)))
}
