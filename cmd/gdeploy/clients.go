package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/secrets"
	"github.com/input-output-hk/catalyst-forge-deploy/config"
	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	"github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
	"github.com/input-output-hk/catalyst-forge-deploy/git"
	"github.com/input-output-hk/catalyst-forge-deploy/git/gitcli"
)

// newVCS returns the version control backend named by kind. The go-git
// backend is optional: outside a repository it yields nil so explicit
// project and branch flags still work.
func newVCS(ctx context.Context, kind string, logger *slog.Logger) (config.VCS, error) {
	switch kind {
	case vcsGit:
		return gitcli.New(gitcli.WithLogger(logger)), nil
	case vcsGoGit:
		wd, err := fs.GetAbs(".")
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		repo, err := git.Open(ctx, &git.Options{
			FS:           billy.NewBaseOSFS(),
			Workdir:      wd,
			DetectDotGit: true,
		})
		if err != nil {
			logger.WarnContext(ctx, "no git repository found, targets cannot be inferred", "dir", wd, "error", err)
			return nil, nil
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("--%s must be %q or %q, got %q", flagVCS, vcsGit, vcsGoGit, kind)
	}
}

// newS3Client builds the S3 client for region. Credentials come from the
// named Secrets Manager secret when one is given, otherwise from the
// default AWS chain.
func newS3Client(ctx context.Context, c *cli.Context, region string, logger *slog.Logger) (*s3.Client, error) {
	opts := []s3types.Option{
		s3.WithRegion(region),
		s3.WithMaxRetries(c.Int(flagMaxRetries)),
	}
	if timeout := c.Duration(flagRequestTimeout); timeout > 0 {
		opts = append(opts, s3.WithTimeout(timeout))
	}

	endpoint := c.String(flagEndpointURL)
	if endpoint != "" {
		opts = append(opts, s3.WithEndpoint(endpoint), s3.WithForcePathStyle(true))
	}

	if name := c.String(flagCredentialsSecret); name != "" {
		secretOpts := []secrets.Option{
			secrets.WithRegion(region),
			secrets.WithLogger(logger),
		}
		if endpoint != "" {
			secretOpts = append(secretOpts, secrets.WithEndpoint(endpoint))
		}
		sm, err := secrets.NewClient(ctx, secretOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating secrets client: %w", err)
		}
		opts = append(opts, s3.WithCredentials(sm.CredentialsProvider(name)))
	}

	client, err := s3.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return client, nil
}
