package deploy

import (
	"context"
	"maps"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
)

// ACLPublicRead is the canned ACL applied when Config.PublicRead is set.
const ACLPublicRead = "public-read"

const (
	extraMetadata     = "Metadata"
	extraStorageClass = "StorageClass"
)

// UploadRecord fully describes one object write.
type UploadRecord struct {
	Bucket       string
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	ACL          string
	Extra        map[string]any
}

// ObjectStore writes objects. Implementations must be safe for concurrent
// use.
type ObjectStore interface {
	PutObject(ctx context.Context, rec *UploadRecord) error
}

// ObjectStoreFunc adapts a function to ObjectStore.
type ObjectStoreFunc func(ctx context.Context, rec *UploadRecord) error

// PutObject calls f.
func (f ObjectStoreFunc) PutObject(ctx context.Context, rec *UploadRecord) error {
	return f(ctx, rec)
}

// S3Store writes records with the S3 client.
type S3Store struct {
	client *s3.Client
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store returns an ObjectStore backed by client.
func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client}
}

// PutObject implements ObjectStore. Metadata and StorageClass given as
// extra parameters are passed as typed options so the client validates
// them; the remaining parameters are merged into the request as is.
func (s *S3Store) PutObject(ctx context.Context, rec *UploadRecord) error {
	typed, extra := liftExtraParams(rec.Extra)
	opts := append([]s3types.UploadOption{
		s3.WithCacheControl(rec.CacheControl),
		s3.WithExtraParams(extra),
	}, typed...)
	if rec.ContentType != "" {
		opts = append(opts, s3.WithContentType(rec.ContentType))
	}
	if rec.ACL != "" {
		opts = append(opts, s3.WithACL(s3types.ObjectACL(rec.ACL)))
	}

	_, err := s.client.Put(ctx, rec.Bucket, rec.Key, rec.Body, opts...)
	return err
}

func liftExtraParams(params map[string]any) ([]s3types.UploadOption, map[string]any) {
	var opts []s3types.UploadOption
	rest := maps.Clone(params)

	if class, ok := params[extraStorageClass].(string); ok {
		opts = append(opts, s3.WithStorageClass(s3types.StorageClass(class)))
		delete(rest, extraStorageClass)
	}
	if metadata, ok := stringMap(params[extraMetadata]); ok {
		opts = append(opts, s3.WithMetadata(metadata))
		delete(rest, extraMetadata)
	}
	return opts, rest
}

// stringMap converts decoded JSON or YAML objects whose values are all
// strings.
func stringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
