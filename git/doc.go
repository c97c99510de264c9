// Package git provides a small facade over go-git for the repository
// queries a deployment needs: the current branch, the HEAD commit, tags
// (optionally those pointing at a revision) and remote URLs.
//
// Repositories are opened exclusively through the project's filesystem
// abstraction, so the same code serves on-disk and in-memory repositories.
//
// # Basic Usage
//
//	import (
//	    "context"
//
//	    billyfs "github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
//	    "github.com/input-output-hk/catalyst-forge-deploy/git"
//	)
//
//	repo, err := git.Open(context.Background(), &git.Options{
//	    FS:           billyfs.NewBaseOSFS(),
//	    Workdir:      cwd,
//	    DetectDotGit: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	branch, err := repo.CurrentBranch(ctx)
//	tags, err := repo.ListTags(ctx, "HEAD")
//	origin, err := repo.RemoteURL(ctx, "origin")
//
// # Tags
//
// Tags are returned sorted by name. Filters narrow the result:
//
//	tags, err := repo.Tags(ctx,
//	    git.TagPrefixFilter("v"),
//	    git.TagExcludeFilter("*-rc*"),
//	)
//
// ListTags(ctx, ref) lists the tags pointing at ref, the way
// "git tag --points-at" does, and every tag when ref is empty. *Repo
// therefore satisfies the deploy package's TagLister.
//
// # Errors
//
// Errors wrap the sentinels declared in this package and can be checked
// with errors.Is, for example ErrDetachedHead or ErrRemoteMissing.
package git
