package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	"github.com/input-output-hk/catalyst-forge-deploy/git/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."

	// DefaultRemoteName is the remote queried when none is given.
	DefaultRemoteName = "origin"
)

// Options configures repository discovery and creation.
type Options struct {
	// FS is the REQUIRED filesystem holding the repository. It must come
	// from the fs/billy package.
	FS fs.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Defaults to "." (current directory in FS).
	Workdir string

	// Bare indicates a repository without a worktree.
	Bare bool

	// DetectDotGit makes Open search Workdir and its parents for the
	// repository, like the git command does.
	DetectDotGit bool

	// StorerCacheSize sets the LRU objects cache entries.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}

	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidRef, "StorerCacheSize cannot be negative")
	}

	return nil
}

func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}

	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

// Repo is a git repository opened through the project's filesystem
// abstraction. It answers the read-only queries a deployment needs.
type Repo struct {
	repo    *git.Repository
	fs      fs.Filesystem
	options Options
}

// Init creates a new repository at opts.Workdir.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "context cancelled")
	}
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts, opts.Workdir)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return &Repo{repo: repo, fs: opts.FS, options: *opts}, nil
}

// Open opens an existing repository at opts.Workdir, or at the closest
// parent holding one when opts.DetectDotGit is set.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "context cancelled")
	}
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	root := opts.Workdir
	if opts.DetectDotGit && !opts.Bare {
		found, err := findRoot(opts.FS, opts.Workdir)
		if err != nil {
			return nil, err
		}
		root = found
	}

	storage, worktreeFS, err := openStorage(opts, root)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(storage, worktreeFS)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapErrorf(ErrRepositoryNotFound, "open %s", root)
		}
		return nil, WrapError(err, "failed to open repository")
	}

	o := *opts
	o.Workdir = root
	return &Repo{repo: repo, fs: opts.FS, options: o}, nil
}

// Workdir returns the worktree root the repository was opened at.
func (r *Repo) Workdir() string {
	return r.options.Workdir
}

// openStorage scopes the filesystem to root and returns the object storage
// and, for non-bare repositories, the worktree filesystem.
func openStorage(opts *Options, root string) (*filesystem.Storage, gobilly.Filesystem, error) {
	billyFS, err := fsbridge.ToBillyFilesystem(opts.FS)
	if err != nil {
		return nil, nil, fmt.Errorf("filesystem conversion failed: %w", err)
	}

	scopedFS, err := billyFS.Chroot(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to chroot to workdir %q: %w", root, err)
	}

	if opts.Bare {
		return fsbridge.NewStorage(scopedFS, opts.StorerCacheSize), nil, nil
	}

	dotGitFS, err := scopedFS.Chroot(".git")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access .git directory: %w", err)
	}
	return fsbridge.NewStorage(dotGitFS, opts.StorerCacheSize), scopedFS, nil
}

// findRoot returns the first of dir and its parents that contains .git.
func findRoot(fsys fs.Filesystem, dir string) (string, error) {
	for {
		ok, err := fsys.Exists(filepath.Join(dir, ".git"))
		if err != nil {
			return "", WrapErrorf(err, "looking for repository in %s", dir)
		}
		if ok {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", WrapErrorf(ErrRepositoryNotFound, "no repository at or above %s", dir)
		}
		dir = parent
	}
}
