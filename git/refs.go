package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
)

// RefKind represents the type of git reference.
type RefKind int

const (
	// RefBranch indicates a local branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefRemoteBranch indicates a remote branch reference (refs/remotes/*/*).
	RefRemoteBranch

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag

	// RefCommit indicates a commit hash (not a symbolic reference).
	RefCommit

	// RefOther indicates any other type of reference, HEAD included.
	RefOther
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefRemoteBranch:
		return "remote-branch"
	case RefTag:
		return "tag"
	case RefCommit:
		return "commit"
	case RefOther:
		return "other"
	default:
		return "unknown"
	}
}

// ResolvedRef is a revision resolved to a commit.
type ResolvedRef struct {
	// Kind indicates the type of reference (branch, tag, commit, etc.).
	Kind RefKind

	// Hash is the resolved commit hash in full SHA-1 format.
	Hash string

	// CanonicalName is the canonical reference name (e.g., "refs/heads/main").
	// For commit hashes, this is the hash itself.
	CanonicalName string
}

// Resolve resolves a revision specification (commit hash, branch, tag,
// HEAD) to the commit it designates. Annotated tags are peeled.
func (r *Repo) Resolve(ctx context.Context, rev string) (*ResolvedRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "context cancelled")
	}
	if rev == "" {
		return nil, WrapError(ErrInvalidRef, "revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}

	kind, name := r.classify(rev, *hash)
	return &ResolvedRef{
		Kind:          kind,
		Hash:          hash.String(),
		CanonicalName: name,
	}, nil
}

// classify determines the kind and canonical name of a resolved revision.
// Branches win over tags of the same name, as in git.
func (r *Repo) classify(rev string, hash plumbing.Hash) (RefKind, string) {
	if rev == "HEAD" {
		return RefOther, "HEAD"
	}

	candidates := []struct {
		name plumbing.ReferenceName
		kind RefKind
	}{
		{plumbing.ReferenceName(rev), RefOther},
		{plumbing.NewBranchReferenceName(rev), RefBranch},
		{plumbing.NewTagReferenceName(rev), RefTag},
		{plumbing.ReferenceName("refs/remotes/" + rev), RefRemoteBranch},
	}
	for _, c := range candidates {
		ref, err := r.repo.Reference(c.name, false)
		if err != nil {
			continue
		}
		kind := c.kind
		if kind == RefOther {
			kind = kindOf(ref.Name())
		}
		return kind, ref.Name().String()
	}

	return RefCommit, hash.String()
}

func kindOf(name plumbing.ReferenceName) RefKind {
	switch {
	case name.IsBranch():
		return RefBranch
	case name.IsTag():
		return RefTag
	case name.IsRemote():
		return RefRemoteBranch
	default:
		return RefOther
	}
}
