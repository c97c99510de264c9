package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/git"
	"github.com/input-output-hk/catalyst-forge-deploy/git/gitcli"
)

// VCS answers the repository questions needed to infer deploy targets.
type VCS interface {
	CurrentBranch(ctx context.Context) (string, error)
	HeadCommit(ctx context.Context) (string, error)
	ListTags(ctx context.Context, ref string) ([]string, error)
	RemoteURL(ctx context.Context, name string) (string, error)
}

// Verifier is implemented by VCS backends that depend on an external tool
// whose version must be checked before use.
type Verifier interface {
	Verify(ctx context.Context) error
}

var (
	_ VCS      = (*git.Repo)(nil)
	_ VCS      = (*gitcli.Client)(nil)
	_ Verifier = (*gitcli.Client)(nil)
)

// GitHubHost is the only host project names are inferred from.
const GitHubHost = "github.com"

// ParseProject derives the project name from a git remote URL. The remote
// must point at github.com; the result is "owner/name" in lower case.
func ParseProject(remoteURL string) (string, error) {
	raw := strings.TrimSpace(remoteURL)
	notGitHub := ferrors.Newf(ferrors.CodeVCS,
		"Expected git remote %q to be a github.com URL, but it was: %s", git.DefaultRemoteName, raw).
		WithOp("config.project")

	ep, err := transport.NewEndpoint(raw)
	if err != nil || !strings.EqualFold(ep.Host, GitHubHost) {
		return "", notGitHub
	}

	path := strings.Trim(ep.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", notGitHub
	}
	return strings.ToLower(parts[0] + "/" + parts[1]), nil
}

// inferProject reads the origin remote and parses it with ParseProject.
func inferProject(ctx context.Context, vcs VCS) (string, error) {
	url, err := vcs.RemoteURL(ctx, git.DefaultRemoteName)
	if err != nil {
		return "", vcsError(err, "reading origin remote")
	}
	return ParseProject(url)
}

// inferBranch returns the checked out branch. A detached HEAD yields
// "HEAD", matching `git rev-parse --abbrev-ref HEAD`.
func inferBranch(ctx context.Context, vcs VCS) (string, error) {
	branch, err := vcs.CurrentBranch(ctx)
	if errors.Is(err, git.ErrDetachedHead) {
		return "HEAD", nil
	}
	if err != nil {
		return "", vcsError(err, "reading current branch")
	}
	return branch, nil
}

func tagsAtHead(ctx context.Context, vcs VCS) ([]string, error) {
	tags, err := vcs.ListTags(ctx, "HEAD")
	if err != nil {
		return nil, vcsError(err, "listing tags at HEAD")
	}
	return tags, nil
}

func vcsError(err error, what string) error {
	return ferrors.Wrap(err, ferrors.CodeVCS, fmt.Sprintf("inferring deploy targets: %s", what)).
		WithOp("config.vcs")
}
