package config

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/input-output-hk/catalyst-forge-deploy/deploy"
	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	"github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
)

// Request holds the command line input of one run.
type Request struct {
	// ConfigFile is an explicit config file path. When empty the XDG config
	// directories are searched.
	ConfigFile string

	// Presets are applied in order after the config file.
	Presets []string

	// Flags contains only the flags set on the command line.
	Flags Settings

	// Dir is the positional source directory, if given.
	Dir string
}

// Resolved is a fully layered and inferred configuration.
type Resolved struct {
	// Settings is the merged result of every layer, including inferred
	// project and branch.
	Settings Settings

	// TagsAtHead is set when the tag setting asked for the tags at HEAD.
	TagsAtHead bool

	// Tags are the tag targets that follow the branch.
	Tags []string

	// Deploy is the deployer configuration.
	Deploy deploy.Config
}

// Loader layers defaults, environment, config file, presets and flags, then
// fills in what is still missing from version control.
type Loader struct {
	fs     fs.Filesystem
	vcs    VCS
	env    func() (Settings, error)
	find   func() string
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFilesystem sets the filesystem config files are read from.
func WithFilesystem(fsys fs.Filesystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithVCS sets the version control backend used for inference. Without one
// project and branch must be given explicitly.
func WithVCS(vcs VCS) LoaderOption {
	return func(l *Loader) {
		l.vcs = vcs
	}
}

// WithEnv replaces the environment layer.
func WithEnv(env func() (Settings, error)) LoaderOption {
	return func(l *Loader) {
		l.env = env
	}
}

// WithDiscovery replaces the config file lookup used when no file is named
// explicitly.
func WithDiscovery(find func() string) LoaderOption {
	return func(l *Loader) {
		l.find = find
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader reading the native filesystem and the process
// environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     billy.NewBaseOSFS(),
		env:    FromEnv,
		find:   Discover,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves req into a deployer configuration.
func (l *Loader) Load(ctx context.Context, req Request) (*Resolved, error) {
	file, err := l.loadFile(req.ConfigFile)
	if err != nil {
		return nil, err
	}

	overridePath := req.Flags.Path != nil && strings.TrimSpace(*req.Flags.Path) != ""
	s := Defaults(overridePath)

	env, err := l.env()
	if err != nil {
		return nil, err
	}
	s.Merge(env)

	if file != nil {
		s.Merge(file.Defaults)
	}

	presets := file.presets()
	for _, name := range req.Presets {
		p, ok := presets[name]
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown preset %q (known: %s)",
				name, strings.Join(slices.Sorted(maps.Keys(presets)), ", ")))
		}
		s.Merge(p)
	}

	s.Merge(req.Flags)
	if req.Dir != "" {
		s.SourceDir = Ptr(req.Dir)
	}

	if err := l.infer(ctx, &s); err != nil {
		return nil, err
	}

	if err := validate(&s); err != nil {
		return nil, err
	}

	r := &Resolved{Settings: s}
	if tag := value(s.Tag); tag == TagAtHead {
		if l.vcs == nil {
			return nil, invalid("tag HEAD needs a version control backend")
		}
		r.TagsAtHead = true
		if r.Tags, err = tagsAtHead(ctx, l.vcs); err != nil {
			return nil, err
		}
	} else if tag != "" {
		r.Tags = []string{tag}
	}

	r.Deploy = deploy.Config{
		SourceDir:         value(s.SourceDir),
		Bucket:            value(s.Bucket),
		Region:            value(s.Region),
		Project:           value(s.Project),
		Targets:           append([]string{value(s.Branch)}, r.Tags...),
		Path:              value(s.Path),
		URLBase:           value(s.URLBase),
		MaxAge:            s.MaxAge,
		CacheAssets:       value(s.CacheAssets),
		PublicRead:        value(s.PublicRead),
		WriteVersionsJSON: value(s.WriteVersionsJSON),
		ExtraParams:       maps.Clone(s.ExtraParams),
		Endpoints:         deploy.Endpoints{CustomDomains: file.customDomains()},
		UploadTimeout:     value(s.UploadTimeout),
		Concurrency:       value(s.Concurrency),
		SniffContentType:  value(s.SniffContentType),
	}
	if err := r.Deploy.Validate(); err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "resolved configuration",
		"bucket", r.Deploy.Bucket,
		"project", r.Deploy.Project,
		"targets", r.Deploy.Targets,
	)
	return r, nil
}

func (l *Loader) loadFile(path string) (*File, error) {
	if path == "" && l.find != nil {
		path = l.find()
	}
	if path == "" {
		return nil, nil
	}
	l.logger.Debug("loading config file", "path", path)
	return LoadFile(l.fs, path)
}

// infer fills in project and branch from version control when either one
// is missing.
func (l *Loader) infer(ctx context.Context, s *Settings) error {
	if value(s.Project) != "" && value(s.Branch) != "" {
		return nil
	}
	if l.vcs == nil {
		return nil
	}

	if v, ok := l.vcs.(Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			return vcsError(err, "checking git version")
		}
	}

	if value(s.Project) == "" {
		project, err := inferProject(ctx, l.vcs)
		if err != nil {
			return err
		}
		s.Project = Ptr(project)
	}

	if value(s.Branch) == "" {
		branch, err := inferBranch(ctx, l.vcs)
		if err != nil {
			return err
		}
		s.Branch = Ptr(branch)
	}
	return nil
}

func validate(s *Settings) error {
	switch {
	case value(s.Bucket) == "":
		return invalid("bucket not set")
	case value(s.Region) == "":
		return invalid("awsRegion not set")
	case value(s.Branch) == "":
		return invalid("branchName not set")
	case value(s.Project) == "":
		return invalid("project not set")
	}
	return nil
}

func invalid(message string) error {
	return ferrors.New(ferrors.CodeInvalidConfig, message).WithOp("config.load")
}
