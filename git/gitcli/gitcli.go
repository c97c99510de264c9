// Package gitcli answers repository queries by running the git binary.
// It mirrors the read-only surface of package git for environments where
// the git command is the source of truth, e.g. CI checkouts with
// worktrees or partial clones.
package gitcli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/input-output-hk/catalyst-forge-deploy/executor"
	"github.com/input-output-hk/catalyst-forge-deploy/git"
)

// MinimumVersion is the oldest git release Verify accepts.
const MinimumVersion = "2.0.0"

const (
	defaultRetries    = 2
	defaultRetryDelay = 200 * time.Millisecond
)

var versionPattern = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)

// ErrUnsupportedVersion is returned by Verify for git releases older than
// MinimumVersion.
var ErrUnsupportedVersion = errors.New("unsupported git version")

// lockMarkers appear in git's stderr when another process holds a
// repository lock. The command usually succeeds once it is released.
var lockMarkers = []string{
	"index.lock",
	"cannot lock ref",
	"Unable to create",
}

// Client runs git queries.
type Client struct {
	runner     executor.Runner
	dir        string
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRunner sets the runner git is invoked through. The runner is used
// as is: WithDir and WithRetry only configure the default runner.
func WithRunner(r executor.Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// WithDir runs every command in dir.
func WithDir(dir string) Option {
	return func(c *Client) {
		c.dir = dir
	}
}

// WithRetry sets how often a command failing on a held repository lock is
// retried, and the delay between attempts.
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a Client. By default it runs the git found on PATH with a C
// locale so output can be parsed.
func New(opts ...Option) *Client {
	c := &Client{
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = executor.NewWrappedExecutor("git",
			executor.WithEnvVar("LC_ALL", "C"),
			executor.WithWorkingDir(c.dir),
			executor.WithRetry(c.retries, c.retryDelay),
			executor.WithRetryCondition(IsTransient),
		)
	}
	return c
}

// IsTransient reports whether err is a git failure caused by a repository
// lock held by another process.
func IsTransient(err error) bool {
	var exitErr *executor.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	for _, marker := range lockMarkers {
		if strings.Contains(exitErr.Stderr, marker) {
			return true
		}
	}
	return false
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	c.logger.DebugContext(ctx, "running git", "dir", c.dir, "args", args)

	res, err := c.runner.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Version returns the installed git version.
func (c *Client) Version(ctx context.Context) (*semver.Version, error) {
	out, err := c.run(ctx, "--version")
	if err != nil {
		return nil, fmt.Errorf("git --version: %w", err)
	}
	return ParseVersion(out)
}

// ParseVersion extracts the version from "git --version" output, such as
// "git version 2.39.3 (Apple Git-145)".
func ParseVersion(out string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("unrecognized git version output %q", out)
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing git version %q: %w", m[1], err)
	}
	return v, nil
}

// Verify checks that git is installed and at least MinimumVersion.
func (c *Client) Verify(ctx context.Context) error {
	v, err := c.Version(ctx)
	if err != nil {
		return err
	}

	constraint, err := semver.NewConstraint(">= " + MinimumVersion)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: found %s, need %s or newer", ErrUnsupportedVersion, v, MinimumVersion)
	}

	c.logger.DebugContext(ctx, "git version verified", "version", v.String())
	return nil
}

// CurrentBranch returns the checked out branch. A detached HEAD yields
// git.ErrDetachedHead.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "--verify", "HEAD")
	if err != nil {
		return "", git.WrapError(err, "failed to get current branch")
	}
	if out == "HEAD" {
		return "", git.WrapError(git.ErrDetachedHead, "failed to get current branch")
	}
	return out, nil
}

// HeadCommit returns the full hash of HEAD.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", git.WrapError(err, "failed to resolve HEAD")
	}
	return out, nil
}

// ListTags lists every tag when ref is empty, otherwise the tags pointing
// at ref.
func (c *Client) ListTags(ctx context.Context, ref string) ([]string, error) {
	args := []string{"tag", "--list"}
	if ref != "" {
		args = append(args, "--points-at", ref)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, git.WrapError(err, "failed to list tags")
	}

	tags := []string{}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

// RemoteURL returns the URL of the named remote, or of origin when name is
// empty.
func (c *Client) RemoteURL(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = git.DefaultRemoteName
	}

	out, err := c.run(ctx, "config", "--get", "remote."+name+".url")
	var exitErr *executor.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode == 1:
		return "", git.WrapErrorf(git.ErrRemoteMissing, "remote %s", name)
	case err != nil:
		return "", git.WrapErrorf(err, "failed to read remote %s", name)
	case out == "":
		return "", git.WrapErrorf(git.ErrRemoteMissing, "remote %s has no URL", name)
	}
	return out, nil
}
