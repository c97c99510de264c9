package deploy

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	"github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
)

// State is the phase a Deployer is in.
type State int32

const (
	StateIdle State = iota
	StateEnumerating
	StateUploadingTarget
	StateWritingManifest
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumerating:
		return "enumerating"
	case StateUploadingTarget:
		return "uploading"
	case StateWritingManifest:
		return "writing-manifest"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports a completed upload step.
type Event struct {
	// Info is a human readable description, e.g. "main (bundle)".
	Info string

	// Target is the target or override path of the batch. It is empty for
	// the manifest.
	Target string

	// Files is the number of objects written by the step.
	Files int

	// Manifest is set for the version manifest write.
	Manifest bool
}

// Notifier observes upload progress. Notify is called from the goroutine
// running Execute and must not block for long.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, e Event) {
	f(ctx, e)
}

// Result is the outcome of a successful run.
type Result struct {
	// URLs holds one base URL per override path or target.
	URLs []string

	// Uploaded is the number of objects written, manifest included.
	Uploaded int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Deployer runs one deployment.
type Deployer struct {
	cfg      Config
	store    ObjectStore
	fs       fs.Filesystem
	native   bool
	tags     TagLister
	notifier Notifier
	logger   *slog.Logger

	state   atomic.Int32
	current atomic.Int32
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithFilesystem sets the filesystem the source directory is read from.
// The default is the native filesystem.
func WithFilesystem(fsys fs.Filesystem) Option {
	return func(d *Deployer) {
		d.fs = fsys
		d.native = false
	}
}

// WithTagLister sets the source of tags for the version manifest. Without
// one the manifest is written as an empty list.
func WithTagLister(tags TagLister) Option {
	return func(d *Deployer) {
		d.tags = tags
	}
}

// WithNotifier sets the listener for upload events.
func WithNotifier(n Notifier) Option {
	return func(d *Deployer) {
		d.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deployer) {
		d.logger = logger
	}
}

// New returns a Deployer for cfg writing through store. cfg is copied.
func New(cfg Config, store ObjectStore, opts ...Option) *Deployer {
	cfg.Targets = slices.Clone(cfg.Targets)
	cfg.ExtraParams = maps.Clone(cfg.ExtraParams)
	cfg.Endpoints.CustomDomains = maps.Clone(cfg.Endpoints.CustomDomains)

	d := &Deployer{
		cfg:    cfg,
		store:  store,
		fs:     billy.NewBaseOSFS(),
		native: true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.current.Store(-1)
	return d
}

// State returns the current phase.
func (d *Deployer) State() State {
	return State(d.state.Load())
}

// CurrentTarget returns the index of the prefix being uploaded, or -1 when
// no batch has started.
func (d *Deployer) CurrentTarget() int {
	return int(d.current.Load())
}

// URLs returns the base URLs of the deployment. It only depends on the
// configuration and may be called at any time.
func (d *Deployer) URLs() []string {
	return URLs(&d.cfg)
}

// Execute validates the configuration, uploads every file for each target
// in order, writes the version manifest when enabled and returns the base
// URLs. The first failure aborts the run; objects already written are kept.
// Context cancellation is honored by every storage call.
func (d *Deployer) Execute(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := d.cfg.Validate(); err != nil {
		d.setState(StateFailed)
		return nil, err
	}

	path := d.cfg.OverridePath()
	if path != "" {
		d.logger.WarnContext(ctx, "Using the `path` option. PLEASE BE VERY CAREFUL WITH THIS.", "path", path)
	}

	d.setState(StateEnumerating)
	root, err := d.sourceRoot()
	if err != nil {
		d.setState(StateFailed)
		return nil, err
	}
	files, err := Enumerate(d.fs, root)
	if err != nil {
		d.setState(StateFailed)
		return nil, err
	}
	d.logger.DebugContext(ctx, "enumerated source files", "dir", root, "files", len(files))

	prefixes := d.cfg.Targets
	if path != "" {
		prefixes = []string{path}
	}

	uploaded := 0
	for i, target := range prefixes {
		d.current.Store(int32(i))
		d.setState(StateUploadingTarget)

		n, err := d.uploadTarget(ctx, files, target)
		uploaded += n
		if err != nil {
			d.setState(StateFailed)
			return nil, err
		}
		d.notify(ctx, Event{Info: target + " (bundle)", Target: target, Files: n})
	}

	if d.cfg.WriteVersionsJSON {
		d.setState(StateWritingManifest)
		if err := d.writeManifest(ctx); err != nil {
			d.setState(StateFailed)
			return nil, err
		}
		uploaded++
		d.notify(ctx, Event{
			Info:     d.cfg.Project + " (modified versions: " + ManifestFilename + ")",
			Files:    1,
			Manifest: true,
		})
	}

	d.setState(StateDone)
	return &Result{
		URLs:     d.URLs(),
		Uploaded: uploaded,
		Duration: time.Since(start),
	}, nil
}

// sourceRoot returns the source directory to walk. On the native
// filesystem it is made absolute so every FileEntry.Path is too.
func (d *Deployer) sourceRoot() (string, error) {
	if !d.native {
		return d.cfg.SourceDir, nil
	}
	root, err := fs.GetAbs(d.cfg.SourceDir)
	if err != nil {
		return "", fileSystemError(err, "deploy.enumerate", d.cfg.SourceDir)
	}
	return root, nil
}

// uploadTarget uploads every file for target concurrently and waits for all
// of them to settle. It returns the number of successful uploads.
func (d *Deployer) uploadTarget(ctx context.Context, files []FileEntry, target string) (int, error) {
	keys := NewKeyResolver(&d.cfg)
	policy := NewContentPolicy(&d.cfg)
	acl := aclFor(&d.cfg)

	d.logger.InfoContext(ctx, "uploading target",
		"target", target,
		"prefix", keys.Prefix(target),
		"files", len(files),
	)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if d.cfg.Concurrency > 0 {
		g.SetLimit(d.cfg.Concurrency)
	}

	for _, f := range files {
		g.Go(func() error {
			body, err := d.fs.ReadFile(f.Path)
			if err != nil {
				return fileSystemError(err, "deploy.read", f.Path)
			}

			contentType, cacheControl := policy.ClassifyContent(f.RelPath, body)
			rec := &UploadRecord{
				Bucket:       d.cfg.Bucket,
				Key:          keys.Key(f.RelPath, target),
				Body:         body,
				ContentType:  contentType,
				CacheControl: cacheControl,
				ACL:          acl,
				Extra:        d.cfg.ExtraParams,
			}
			if err := d.put(gctx, rec); err != nil {
				return uploadError(err, f.RelPath, target, rec.Key)
			}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	n := int(done.Load())
	if err != nil {
		d.logger.ErrorContext(ctx, "target upload failed", "target", target, "uploaded", n, "error", err)
		return n, err
	}

	d.logger.InfoContext(ctx, "uploaded target", "target", target, "files", n)
	return n, nil
}

func (d *Deployer) writeManifest(ctx context.Context) error {
	tags := d.listTags(ctx)

	rec, err := ManifestRecord(&d.cfg, tags)
	if err != nil {
		return uploadError(err, ManifestFilename, "", NewKeyResolver(&d.cfg).ManifestKey())
	}
	if err := d.put(ctx, rec); err != nil {
		return uploadError(err, ManifestFilename, "", rec.Key)
	}

	d.logger.InfoContext(ctx, "wrote version manifest", "key", rec.Key, "tags", len(tags))
	return nil
}

// listTags returns every tag, or an empty list when tags are unavailable.
func (d *Deployer) listTags(ctx context.Context) []string {
	if d.tags == nil {
		d.logger.WarnContext(ctx, "no tag source configured, writing empty version manifest")
		return []string{}
	}
	tags, err := d.tags.ListTags(ctx, "")
	if err != nil {
		d.logger.WarnContext(ctx, "listing tags failed, writing empty version manifest", "error", err)
		return []string{}
	}
	return tags
}

func (d *Deployer) put(ctx context.Context, rec *UploadRecord) error {
	if d.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.UploadTimeout)
		defer cancel()
	}
	return d.store.PutObject(ctx, rec)
}

func (d *Deployer) notify(ctx context.Context, e Event) {
	d.logger.InfoContext(ctx, "uploaded", "info", e.Info)
	if d.notifier != nil {
		d.notifier.Notify(ctx, e)
	}
}

func (d *Deployer) setState(s State) {
	d.state.Store(int32(s))
}
