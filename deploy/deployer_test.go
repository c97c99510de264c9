package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
)

// recordingStore keeps every record it receives, in call order.
type recordingStore struct {
	mu      sync.Mutex
	records []*UploadRecord
	fail    func(rec *UploadRecord) error
}

func (s *recordingStore) PutObject(_ context.Context, rec *UploadRecord) error {
	if s.fail != nil {
		if err := s.fail(rec); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *recordingStore) byKey(key string) *UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Key == key {
			return r
		}
	}
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type staticTags struct {
	tags []string
	err  error
}

func (s staticTags) ListTags(context.Context, string) ([]string, error) {
	return s.tags, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureConfig() Config {
	return Config{
		SourceDir:   "dist",
		Bucket:      "test-bucket",
		Region:      "eu-west-1",
		Project:     "test-project",
		Targets:     []string{"test"},
		URLBase:     "v2",
		CacheAssets: true,
		PublicRead:  true,
		ExtraParams: map[string]any{
			"Metadata": map[string]any{"x-amz-meta-surrogate-key": "my-key"},
		},
	}
}

func TestDeployer_Execute(t *testing.T) {
	store := &recordingStore{}
	d := New(fixtureConfig(), store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

	res, err := d.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"http://test-bucket.s3-website-eu-west-1.amazonaws.com/v2/test-project/test/"}, res.URLs)
	assert.Equal(t, 3, res.Uploaded)
	assert.Equal(t, 3, store.count())
	assert.Equal(t, StateDone, d.State())

	tests := []struct {
		key          string
		body         string
		contentType  string
		cacheControl string
	}{
		{
			key:          "v2/test-project/test/assets/foo.abc123.js",
			body:         "console.log('hi');\n",
			contentType:  "application/javascript",
			cacheControl: ImmutableCacheControl,
		},
		{
			key:          "v2/test-project/test/index.html",
			body:         "<!doctype html><title>test</title>\n",
			contentType:  "text/html; charset=utf-8",
			cacheControl: "max-age=60",
		},
		{
			key:          "v2/test-project/test/test.directory/test.file",
			body:         "test\n",
			contentType:  "",
			cacheControl: "max-age=60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rec := store.byKey(tt.key)
			require.NotNil(t, rec)
			assert.Equal(t, "test-bucket", rec.Bucket)
			assert.Equal(t, tt.body, string(rec.Body))
			assert.Equal(t, tt.contentType, rec.ContentType)
			assert.Equal(t, tt.cacheControl, rec.CacheControl)
			assert.Equal(t, ACLPublicRead, rec.ACL)
			assert.Equal(t, map[string]any{"x-amz-meta-surrogate-key": "my-key"}, rec.Extra["Metadata"])
		})
	}
}

func TestDeployer_Execute_OverridePath(t *testing.T) {
	maxAge := 3600
	store := &recordingStore{}
	cfg := Config{
		SourceDir:   "dist",
		Bucket:      "test-bucket",
		Region:      "eu-west-1",
		Path:        "__arbitrary-path-test",
		CacheAssets: true,
		MaxAge:      &maxAge,
		PublicRead:  true,
	}
	d := New(cfg, store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

	res, err := d.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"http://test-bucket.s3-website-eu-west-1.amazonaws.com/__arbitrary-path-test/"}, res.URLs)
	assert.Equal(t, 3, store.count())

	js := store.byKey("__arbitrary-path-test/assets/foo.abc123.js")
	require.NotNil(t, js)
	assert.Equal(t, ImmutableCacheControl, js.CacheControl)
	assert.Empty(t, js.Extra)

	html := store.byKey("__arbitrary-path-test/index.html")
	require.NotNil(t, html)
	assert.Equal(t, "max-age=3600", html.CacheControl)
	assert.Equal(t, "text/html; charset=utf-8", html.ContentType)
}

func TestDeployer_Execute_VersionManifest(t *testing.T) {
	store := &recordingStore{}
	cfg := Config{
		SourceDir:         "dist",
		Bucket:            "test-bucket",
		Region:            "eu-west-1",
		Project:           "test-project",
		Targets:           []string{"test"},
		URLBase:           "preview",
		WriteVersionsJSON: true,
	}
	d := New(cfg, store,
		WithFilesystem(fixtureFS(t)),
		WithTagLister(staticTags{tags: []string{"v1.0.0", "v2.0.0", "v3.0.0"}}),
		WithLogger(discardLogger()),
	)

	res, err := d.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Uploaded)
	require.Equal(t, 4, store.count())

	js := store.byKey("preview/test-project/test/assets/foo.abc123.js")
	require.NotNil(t, js)
	assert.Equal(t, "max-age=60", js.CacheControl)
	assert.Equal(t, "application/javascript", js.ContentType)
	assert.Empty(t, js.ACL)

	last := store.records[len(store.records)-1]
	assert.Equal(t, "preview/test-project/VERSIONS.json", last.Key)
	assert.Equal(t, `["v1.0.0","v2.0.0","v3.0.0"]`, string(last.Body))
	assert.Equal(t, "application/json", last.ContentType)
	assert.Equal(t, "max-age=60", last.CacheControl)
	assert.Empty(t, last.ACL)
}

func TestDeployer_Execute_TagErrorWritesEmptyManifest(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "tag lister fails", opts: []Option{WithTagLister(staticTags{err: errors.New("not a git repository")})}},
		{name: "no tag lister", opts: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fixtureConfig()
			cfg.WriteVersionsJSON = true
			store := &recordingStore{}
			opts := append([]Option{WithFilesystem(fixtureFS(t)), WithLogger(discardLogger())}, tt.opts...)

			_, err := New(cfg, store, opts...).Execute(context.Background())
			require.NoError(t, err)

			rec := store.byKey("v2/test-project/VERSIONS.json")
			require.NotNil(t, rec)
			assert.Equal(t, `[]`, string(rec.Body))
			assert.Equal(t, ACLPublicRead, rec.ACL)
		})
	}
}

func TestDeployer_Execute_TargetsInOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	log := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
	}

	// Both files of the first target must be in flight together before
	// either completes.
	var inFlight sync.WaitGroup
	inFlight.Add(2)
	barrier := make(chan struct{})
	go func() {
		inFlight.Wait()
		close(barrier)
	}()

	store := ObjectStoreFunc(func(ctx context.Context, rec *UploadRecord) error {
		target := rec.Key[:1]
		log("start " + target)
		if target == "a" {
			inFlight.Done()
			select {
			case <-barrier:
			case <-time.After(5 * time.Second):
				return errors.New("uploads of a target did not run concurrently")
			}
		}
		log("end " + target)
		return nil
	})

	fsys := fixtureFS(t)
	require.NoError(t, fsys.WriteFile("two/one.txt", []byte("1"), 0o644))
	require.NoError(t, fsys.WriteFile("two/two.txt", []byte("2"), 0o644))

	cfg := Config{
		SourceDir: "two",
		Bucket:    "test-bucket",
		Region:    "eu-west-1",
		Targets:   []string{"a", "b"},
	}
	res, err := New(cfg, store, WithFilesystem(fsys), WithLogger(discardLogger())).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Uploaded)

	require.Len(t, events, 8)
	lastAEnd, firstBStart := -1, len(events)
	for i, e := range events {
		switch e {
		case "end a":
			lastAEnd = i
		case "start b":
			if i < firstBStart {
				firstBStart = i
			}
		}
	}
	assert.Less(t, lastAEnd, firstBStart)
}

func TestDeployer_Execute_UploadFailure(t *testing.T) {
	failure := errors.New("access denied")
	store := &recordingStore{
		fail: func(rec *UploadRecord) error {
			if rec.Key == "v2/test-project/test/index.html" {
				return failure
			}
			return nil
		},
	}
	cfg := fixtureConfig()
	cfg.Targets = []string{"test", "next"}
	cfg.WriteVersionsJSON = true
	d := New(cfg, store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

	res, err := d.Execute(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsUploadError(err))
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, StateFailed, d.State())
	assert.Equal(t, 0, d.CurrentTarget())

	file, _ := ferrors.ContextValue(err, "file")
	target, _ := ferrors.ContextValue(err, "target")
	assert.Equal(t, "index.html", file)
	assert.Equal(t, "test", target)

	assert.Nil(t, store.byKey("v2/test-project/next/index.html"))
	assert.Nil(t, store.byKey("v2/test-project/VERSIONS.json"))
}

func TestDeployer_Execute_ConfigurationError(t *testing.T) {
	var calls atomic.Int32
	store := ObjectStoreFunc(func(context.Context, *UploadRecord) error {
		calls.Add(1)
		return nil
	})

	for _, path := range []string{"__arbitrary-path-test/", "/__arbitrary-path-test"} {
		t.Run(path, func(t *testing.T) {
			cfg := fixtureConfig()
			cfg.Path = path
			d := New(cfg, store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

			_, err := d.Execute(context.Background())
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.Contains(t, err.Error(), "Please provide `path` without leading or trailing slashes.")
			assert.Equal(t, StateFailed, d.State())
		})
	}
	assert.Zero(t, calls.Load())
}

func TestDeployer_Execute_MissingSourceDir(t *testing.T) {
	cfg := fixtureConfig()
	cfg.SourceDir = "build"
	store := &recordingStore{}

	_, err := New(cfg, store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger())).Execute(context.Background())
	require.Error(t, err)
	assert.True(t, IsFileSystemError(err))
	assert.Zero(t, store.count())
}

func TestDeployer_Execute_EmptySourceDir(t *testing.T) {
	fsys := fixtureFS(t)
	require.NoError(t, fsys.MkdirAll("empty", 0o755))

	cfg := fixtureConfig()
	cfg.SourceDir = "empty"
	store := &recordingStore{}

	res, err := New(cfg, store, WithFilesystem(fsys), WithLogger(discardLogger())).Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Uploaded)
	assert.Len(t, res.URLs, 1)
}

func TestDeployer_SourceRoot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := fixtureConfig()
	cfg.SourceDir = "site"

	root, err := New(cfg, &recordingStore{}).sourceRoot()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root))
	assert.Equal(t, filepath.Join(dir, "site"), root)

	root, err = New(cfg, &recordingStore{}, WithFilesystem(fixtureFS(t))).sourceRoot()
	require.NoError(t, err)
	assert.Equal(t, "site", root)
}

func TestDeployer_Execute_RelativeSourceDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "index.html"), []byte("<p>hi</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "assets", "app.js"), []byte("1;"), 0o644))
	t.Chdir(dir)

	cfg := fixtureConfig()
	cfg.SourceDir = "site"
	store := &recordingStore{}

	res, err := New(cfg, store, WithLogger(discardLogger())).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Uploaded)
	require.NotNil(t, store.byKey("v2/test-project/test/index.html"))
	assert.Equal(t, "<p>hi</p>", string(store.byKey("v2/test-project/test/index.html").Body))
	assert.NotNil(t, store.byKey("v2/test-project/test/assets/app.js"))
}

func TestDeployer_URLs(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Targets = []string{"main", "v1.2.0"}
	d := New(cfg, &recordingStore{}, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

	before := d.URLs()
	assert.Equal(t, []string{
		"http://test-bucket.s3-website-eu-west-1.amazonaws.com/v2/test-project/main/",
		"http://test-bucket.s3-website-eu-west-1.amazonaws.com/v2/test-project/v1.2.0/",
	}, before)
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, -1, d.CurrentTarget())

	res, err := d.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, res.URLs)
	assert.Equal(t, before, d.URLs())
}

func TestDeployer_ConfigIsCopied(t *testing.T) {
	cfg := fixtureConfig()
	d := New(cfg, &recordingStore{}, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger()))

	cfg.Targets[0] = "changed"
	assert.Equal(t, "http://test-bucket.s3-website-eu-west-1.amazonaws.com/v2/test-project/test/", d.URLs()[0])
}

func TestDeployer_Notifier(t *testing.T) {
	var events []Event
	notifier := NotifierFunc(func(_ context.Context, e Event) {
		events = append(events, e)
	})

	cfg := fixtureConfig()
	cfg.Targets = []string{"main", "v1.0.0"}
	cfg.WriteVersionsJSON = true
	d := New(cfg, &recordingStore{},
		WithFilesystem(fixtureFS(t)),
		WithTagLister(staticTags{tags: []string{"v1.0.0"}}),
		WithNotifier(notifier),
		WithLogger(discardLogger()),
	)

	_, err := d.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Event{
		{Info: "main (bundle)", Target: "main", Files: 3},
		{Info: "v1.0.0 (bundle)", Target: "v1.0.0", Files: 3},
		{Info: "test-project (modified versions: VERSIONS.json)", Files: 1, Manifest: true},
	}, events)
}

func TestDeployer_Execute_UploadTimeout(t *testing.T) {
	store := ObjectStoreFunc(func(ctx context.Context, rec *UploadRecord) error {
		if rec.Key != "v2/test-project/test/index.html" {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	})

	cfg := fixtureConfig()
	cfg.UploadTimeout = 20 * time.Millisecond
	_, err := New(cfg, store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger())).Execute(context.Background())
	require.Error(t, err)
	assert.True(t, IsUploadError(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeployer_Execute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := ObjectStoreFunc(func(ctx context.Context, _ *UploadRecord) error {
		return ctx.Err()
	})
	_, err := New(fixtureConfig(), store, WithFilesystem(fixtureFS(t)), WithLogger(discardLogger())).Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeployer_Execute_ConcurrencyLimit(t *testing.T) {
	fsys := fixtureFS(t)
	for i := range 8 {
		require.NoError(t, fsys.WriteFile(fmt.Sprintf("many/%d.txt", i), []byte("x"), 0o644))
	}

	var inFlight, peak atomic.Int32
	store := ObjectStoreFunc(func(context.Context, *UploadRecord) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	cfg := Config{
		SourceDir:   "many",
		Bucket:      "test-bucket",
		Region:      "eu-west-1",
		Targets:     []string{"main"},
		Concurrency: 2,
	}
	res, err := New(cfg, store, WithFilesystem(fsys), WithLogger(discardLogger())).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, res.Uploaded)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "uploading", StateUploadingTarget.String())
	assert.Equal(t, "writing-manifest", StateWritingManifest.String())
	assert.Equal(t, "unknown", State(42).String())
}
