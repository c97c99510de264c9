package deploy

import "strings"

// ManifestFilename is the object name of the version manifest.
const ManifestFilename = "VERSIONS.json"

// KeyResolver maps files and targets to object keys.
type KeyResolver struct {
	Path    string
	URLBase string
	Project string
}

// NewKeyResolver returns the resolver for cfg.
func NewKeyResolver(cfg *Config) KeyResolver {
	return KeyResolver{
		Path:    cfg.OverridePath(),
		URLBase: cfg.URLBase,
		Project: cfg.Project,
	}
}

// Prefix returns the key prefix files of target are written under.
func (r KeyResolver) Prefix(target string) string {
	if r.Path != "" {
		return r.Path
	}
	return joinKey(r.URLBase, r.Project, target)
}

// Key returns the object key of relPath for target.
func (r KeyResolver) Key(relPath, target string) string {
	return joinKey(r.Prefix(target), relPath)
}

// ManifestKey returns the key of the version manifest: under the override
// path when set, otherwise under the project root.
func (r KeyResolver) ManifestKey() string {
	if r.Path != "" {
		return joinKey(r.Path, ManifestFilename)
	}
	return joinKey(r.URLBase, r.Project, ManifestFilename)
}

func joinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// BaseURL returns the public URL of target's prefix, with a trailing slash.
func BaseURL(cfg *Config, target string) string {
	endpoint := cfg.Endpoints.Resolve(cfg.Bucket, cfg.Region, cfg.PublicRead)
	prefix := NewKeyResolver(cfg).Prefix(target)
	if prefix == "" {
		return endpoint + "/"
	}
	return endpoint + "/" + prefix + "/"
}

// URLs returns the base URLs cfg deploys to: one for the override path, or
// one per target in target order.
func URLs(cfg *Config) []string {
	if path := cfg.OverridePath(); path != "" {
		return []string{BaseURL(cfg, path)}
	}
	urls := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		urls = append(urls, BaseURL(cfg, t))
	}
	return urls
}
