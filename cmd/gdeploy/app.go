package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-deploy/config"
	"github.com/input-output-hk/catalyst-forge-deploy/deploy"
	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
)

const (
	flagPreview              = "preview"
	flagLive                 = "live"
	flagBucket               = "bucket"
	flagRegion               = "aws-region"
	flagPublicRead           = "public-read"
	flagProject              = "project"
	flagBranch               = "branch"
	flagTag                  = "tag"
	flagURLBase              = "url-base"
	flagPath                 = "path"
	flagCacheAssets          = "cache-assets"
	flagMaxAge               = "max-age"
	flagWriteVersionsJSON    = "write-versions-json"
	flagExtraParams          = "extra-params"
	flagConfirm              = "confirm"
	flagGetBranchURL         = "get-branch-url"
	flagGetTagURL            = "get-tag-url"
	flagConfig               = "config"
	flagVCS                  = "vcs"
	flagUploadTimeout        = "upload-timeout"
	flagConcurrency          = "concurrency"
	flagSniffContentType     = "sniff-content-type"
	flagCredentialsSecret    = "aws-credentials-secret"
	flagEndpointURL          = "endpoint-url"
	flagMaxRetries           = "max-retries"
	flagRequestTimeout       = "request-timeout"
	flagLogLevel             = "log-level"
	vcsGit                   = "git"
	vcsGoGit                 = "go-git"
	defaultMaxRetries        = 3
	defaultLogLevel          = "info"
	defaultLogTimeFormat     = time.Kitchen
	confirmPrompt            = "Continue? [y/N] "
	deploymentCompleteNotice = "Deployment complete."
	retryHint                = "g-deploy: the failure may be temporary, re-running may succeed"
	exitFailure              = 1
	exitInvalidConfig        = 2
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "gdeploy",
		Usage:     "deploy a static site to S3",
		ArgsUsage: "[dir]",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagPreview, Usage: "use the preview bucket and url base"},
			&cli.BoolFlag{Name: flagLive, Usage: "use the live bucket and deploy the tags at HEAD"},
			&cli.StringFlag{Name: flagBucket, Usage: "destination bucket"},
			&cli.StringFlag{Name: flagRegion, Usage: "AWS region of the bucket"},
			&cli.BoolFlag{Name: flagPublicRead, Usage: "upload objects with the public-read ACL"},
			&cli.StringFlag{Name: flagProject, Usage: "project name, inferred from the github.com origin remote"},
			&cli.StringFlag{Name: flagBranch, Usage: "branch target, inferred from the current checkout"},
			&cli.StringFlag{Name: flagTag, Usage: "additional tag target, HEAD for every tag at HEAD"},
			&cli.StringFlag{Name: flagURLBase, Usage: "first key segment, e.g. v2"},
			&cli.StringFlag{Name: flagPath, Usage: "deploy to exactly this key prefix instead of the targets"},
			&cli.BoolFlag{Name: flagCacheAssets, Usage: "cache assets/ and static/ files forever"},
			&cli.IntFlag{Name: flagMaxAge, Usage: "max-age in seconds for other files"},
			&cli.BoolFlag{Name: flagWriteVersionsJSON, Usage: "write VERSIONS.json with every tag"},
			&cli.StringFlag{Name: flagExtraParams, Usage: "JSON object merged into every PutObject request"},
			&cli.BoolFlag{Name: flagConfirm, Usage: "do not ask for confirmation"},
			&cli.BoolFlag{Name: flagGetBranchURL, Usage: "print the branch URL and exit"},
			&cli.BoolFlag{Name: flagGetTagURL, Usage: "print the tag URL and exit"},
			&cli.StringFlag{Name: flagConfig, Usage: "config file, default $XDG_CONFIG_HOME/" + config.DefaultFileName},
			&cli.StringFlag{Name: flagVCS, Value: vcsGit, Usage: "version control backend: git or go-git"},
			&cli.DurationFlag{Name: flagUploadTimeout, Usage: "timeout of each upload, 0 for none"},
			&cli.IntFlag{Name: flagConcurrency, Usage: "maximum uploads in flight per target, 0 for unlimited"},
			&cli.BoolFlag{Name: flagSniffContentType, Usage: "detect the content type of files with unknown extensions"},
			&cli.StringFlag{Name: flagCredentialsSecret, Usage: "Secrets Manager secret holding the access keys"},
			&cli.StringFlag{Name: flagEndpointURL, Usage: "S3 compatible endpoint, e.g. LocalStack"},
			&cli.IntFlag{Name: flagMaxRetries, Value: defaultMaxRetries, Usage: "maximum attempts per S3 request"},
			&cli.DurationFlag{Name: flagRequestTimeout, Usage: "HTTP timeout of each S3 request, 0 for none"},
			&cli.StringFlag{Name: flagLogLevel, Value: defaultLogLevel, Usage: "debug, info, warn or error"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	ctx := c.Context

	logger, err := newLogger(c.App.ErrWriter, c.String(flagLogLevel))
	if err != nil {
		return err
	}

	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}

	vcs, err := newVCS(ctx, c.String(flagVCS), logger)
	if err != nil {
		return err
	}

	opts := []config.LoaderOption{config.WithLogger(logger)}
	if vcs != nil {
		opts = append(opts, config.WithVCS(vcs))
	}
	resolved, err := config.NewLoader(opts...).Load(ctx, req)
	if err != nil {
		return err
	}

	switch {
	case c.Bool(flagGetBranchURL):
		return printURL(c.App.Writer, resolved.BranchURL)
	case c.Bool(flagGetTagURL):
		return printURL(c.App.Writer, resolved.TagURL)
	}

	if err := resolved.WriteSummary(c.App.Writer); err != nil {
		return err
	}

	if !c.Bool(flagConfirm) {
		ok, err := confirm(c.App.Reader, c.App.Writer)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	client, err := newS3Client(ctx, c, resolved.Deploy.Region, logger)
	if err != nil {
		return err
	}

	deployOpts := []deploy.Option{
		deploy.WithLogger(logger),
		deploy.WithNotifier(progress(c.App.ErrWriter)),
	}
	if vcs != nil {
		deployOpts = append(deployOpts, deploy.WithTagLister(vcs))
	}

	result, err := deploy.New(resolved.Deploy, deploy.NewS3Store(client), deployOpts...).Execute(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "deployment finished",
		"objects", result.Uploaded,
		"duration", result.Duration.Round(time.Millisecond),
	)

	fmt.Fprintln(c.App.Writer, deploymentCompleteNotice)
	for _, url := range result.URLs {
		fmt.Fprintf(c.App.Writer, "  %s\n", url)
	}
	return nil
}

// requestFromFlags collects the flags set on the command line. Flags left
// at their defaults do not override lower configuration layers.
func requestFromFlags(c *cli.Context) (config.Request, error) {
	req := config.Request{
		ConfigFile: c.String(flagConfig),
		Dir:        c.Args().First(),
	}
	if c.Bool(flagPreview) {
		req.Presets = append(req.Presets, config.PresetPreview)
	}
	if c.Bool(flagLive) {
		req.Presets = append(req.Presets, config.PresetLive)
	}

	f := &req.Flags
	stringFlag(c, flagBucket, &f.Bucket)
	stringFlag(c, flagRegion, &f.Region)
	stringFlag(c, flagProject, &f.Project)
	stringFlag(c, flagBranch, &f.Branch)
	stringFlag(c, flagTag, &f.Tag)
	stringFlag(c, flagURLBase, &f.URLBase)
	stringFlag(c, flagPath, &f.Path)
	boolFlag(c, flagPublicRead, &f.PublicRead)
	boolFlag(c, flagCacheAssets, &f.CacheAssets)
	boolFlag(c, flagWriteVersionsJSON, &f.WriteVersionsJSON)
	boolFlag(c, flagSniffContentType, &f.SniffContentType)
	if c.IsSet(flagMaxAge) {
		f.MaxAge = config.Ptr(c.Int(flagMaxAge))
	}
	if c.IsSet(flagConcurrency) {
		f.Concurrency = config.Ptr(c.Int(flagConcurrency))
	}
	if c.IsSet(flagUploadTimeout) {
		f.UploadTimeout = config.Ptr(c.Duration(flagUploadTimeout))
	}

	if raw := c.String(flagExtraParams); raw != "" {
		params, err := parseExtraParams(raw)
		if err != nil {
			return config.Request{}, err
		}
		f.ExtraParams = params
	}
	return req, nil
}

func stringFlag(c *cli.Context, name string, dst **string) {
	if c.IsSet(name) {
		*dst = config.Ptr(c.String(name))
	}
}

func boolFlag(c *cli.Context, name string, dst **bool) {
	if c.IsSet(name) {
		*dst = config.Ptr(c.Bool(name))
	}
}

func parseExtraParams(raw string) (map[string]any, error) {
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", flagExtraParams, err)
	}
	return params, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--%s: %w", flagLogLevel, err)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: defaultLogTimeFormat,
	})), nil
}

func printURL(w io.Writer, url func() (string, error)) error {
	u, err := url()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, u)
	return err
}

// confirm asks whether to continue. Anything but y or yes declines.
func confirm(r io.Reader, w io.Writer) (bool, error) {
	if _, err := io.WriteString(w, confirmPrompt); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// report prints err and returns the exit status for it. Invalid settings
// exit with 2, every other failure with 1.
func report(w io.Writer, err error) int {
	fmt.Fprintf(w, "g-deploy: %v\n", err)
	if deploy.IsRetryable(err) {
		fmt.Fprintln(w, retryHint)
	}
	if ferrors.CodeOf(err) == ferrors.CodeInvalidConfig {
		return exitInvalidConfig
	}
	return exitFailure
}

func progress(w io.Writer) deploy.NotifierFunc {
	return func(_ context.Context, e deploy.Event) {
		fmt.Fprintf(w, "Uploaded: %s\n", e.Info)
	}
}
