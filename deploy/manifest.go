package deploy

import (
	"context"
	"encoding/json"
	"fmt"
)

// TagLister lists version control tags. An empty ref lists every tag;
// otherwise only tags pointing at ref are returned.
type TagLister interface {
	ListTags(ctx context.Context, ref string) ([]string, error)
}

// EncodeManifest serializes tags as a JSON array. A nil or empty list
// encodes as [].
func EncodeManifest(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encoding version manifest: %w", err)
	}
	return b, nil
}

// ManifestRecord builds the upload of the version manifest for cfg. The
// manifest always uses the max-age rule, never the asset rule, and follows
// the same ACL and passthrough parameters as ordinary files.
func ManifestRecord(cfg *Config, tags []string) (*UploadRecord, error) {
	body, err := EncodeManifest(tags)
	if err != nil {
		return nil, err
	}
	return &UploadRecord{
		Bucket:       cfg.Bucket,
		Key:          NewKeyResolver(cfg).ManifestKey(),
		Body:         body,
		ContentType:  "application/json",
		CacheControl: MaxAgeCacheControl(cfg.EffectiveMaxAge()),
		ACL:          aclFor(cfg),
		Extra:        cfg.ExtraParams,
	}, nil
}

func aclFor(cfg *Config) string {
	if cfg.PublicRead {
		return ACLPublicRead
	}
	return ""
}
