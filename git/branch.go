package git

import (
	"context"
)

// CurrentBranch returns the name of the currently checked out branch.
// It returns ErrDetachedHead if HEAD does not point at a branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", WrapErrorf(ErrDetachedHead, "HEAD at %s", head.Hash().String())
	}

	return head.Name().Short(), nil
}

// HeadCommit returns the full hash of the commit HEAD points at.
func (r *Repo) HeadCommit(ctx context.Context) (string, error) {
	ref, err := r.Resolve(ctx, "HEAD")
	if err != nil {
		return "", err
	}
	return ref.Hash, nil
}
