package deploy

import (
	"fmt"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3"
)

// DefaultMaxAge is the cache lifetime, in seconds, of files outside the
// asset directories when Config.MaxAge is unset.
const DefaultMaxAge = 60

// Config describes one deployment. It is read-only for the duration of a
// run.
type Config struct {
	// SourceDir is the local directory whose files are published.
	SourceDir string

	// Bucket is the destination bucket.
	Bucket string

	// Region is the bucket's AWS region.
	Region string

	// Project identifies the site, usually "owner/repo".
	Project string

	// Targets are the deployment variants, e.g. branch and tag names.
	// The first one is the primary target.
	Targets []string

	// Path, when non-empty, replaces target based keys: every file goes to
	// <Path>/<file>. It must not start or end with a slash.
	Path string

	// URLBase is the optional first key segment, e.g. "v2".
	URLBase string

	// MaxAge is the max-age in seconds for non-asset files. Nil means
	// DefaultMaxAge.
	MaxAge *int

	// CacheAssets enables immutable, far-future caching for files under
	// assets/ and static/.
	CacheAssets bool

	// PublicRead uploads every object with the public-read ACL and makes
	// URLs use the bucket website endpoint.
	PublicRead bool

	// WriteVersionsJSON writes VERSIONS.json listing every tag after all
	// targets are uploaded.
	WriteVersionsJSON bool

	// ExtraParams are passed to every PutObject call and merged last, so
	// they can override computed fields.
	ExtraParams map[string]any

	// Endpoints holds per-bucket URL exceptions.
	Endpoints Endpoints

	// UploadTimeout bounds each storage call. Zero means no timeout.
	UploadTimeout time.Duration

	// Concurrency caps in-flight uploads within a target. Zero means every
	// file of the target is uploaded at once.
	Concurrency int

	// SniffContentType detects the content type of files whose extension
	// is unknown from their contents instead of leaving it unset.
	SniffContentType bool
}

// OverridePath returns the trimmed override path, or "" when none is set.
func (c *Config) OverridePath() string {
	return strings.TrimSpace(c.Path)
}

// EffectiveMaxAge returns MaxAge or DefaultMaxAge when it is unset.
func (c *Config) EffectiveMaxAge() int {
	if c.MaxAge == nil {
		return DefaultMaxAge
	}
	return *c.MaxAge
}

// Validate checks the settings the deployer depends on. Every failure is a
// configuration error and is reported before any I/O happens.
func (c *Config) Validate() error {
	path := c.OverridePath()
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return configError("Please provide `path` without leading or trailing slashes.")
	}
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			if seg == "" || seg == "." || seg == ".." {
				return configError(fmt.Sprintf("path %q cannot contain empty, \".\" or \"..\" segments", path))
			}
		}
	}

	switch {
	case strings.TrimSpace(c.SourceDir) == "":
		return configError("source directory is required")
	case strings.TrimSpace(c.Bucket) == "":
		return configError("bucket is required")
	case strings.TrimSpace(c.Region) == "":
		return configError("region is required")
	}
	if err := s3.ValidateBucketName(c.Bucket); err != nil {
		return invalidBucketError(err, c.Bucket)
	}

	if path == "" {
		if len(c.Targets) == 0 {
			return configError("at least one target is required when no path is set")
		}
		for i, t := range c.Targets {
			if strings.TrimSpace(t) == "" {
				return configError(fmt.Sprintf("target %d is empty", i))
			}
		}
	}

	if c.MaxAge != nil && *c.MaxAge < 0 {
		return configError("max age cannot be negative")
	}
	if c.Concurrency < 0 {
		return configError("concurrency cannot be negative")
	}
	if c.UploadTimeout < 0 {
		return configError("upload timeout cannot be negative")
	}

	return nil
}
