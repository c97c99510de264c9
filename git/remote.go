package git

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
)

// RemoteURL returns the first fetch URL of the named remote, or of
// DefaultRemoteName when name is empty.
func (r *Repo) RemoteURL(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}
	if name == "" {
		name = DefaultRemoteName
	}

	remote, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", WrapErrorf(ErrRemoteMissing, "remote %s", name)
		}
		return "", WrapErrorf(err, "failed to read remote %s", name)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", WrapErrorf(ErrRemoteMissing, "remote %s has no URL", name)
	}
	return urls[0], nil
}
