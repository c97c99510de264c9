package config

// Built-in preset names.
const (
	PresetPreview = "preview"
	PresetLive    = "live"
)

// TagAtHead is the tag value that expands to every tag pointing at the
// current commit.
const TagAtHead = "HEAD"

// DefaultCustomDomains lists the buckets served from their own domain.
var DefaultCustomDomains = map[string]string{
	"ft-ig-content-prod": "https://ig.ft.com",
}

// Defaults returns the built-in settings. The url base defaults to "v2"
// unless an override path is in use.
func Defaults(overridePath bool) Settings {
	s := Settings{
		Region:      Ptr("eu-west-1"),
		SourceDir:   Ptr("dist/client"),
		CacheAssets: Ptr(true),
		PublicRead:  Ptr(false),
	}
	if !overridePath {
		s.URLBase = Ptr("v2")
	}
	return s
}

// BuiltinPresets returns the presets every installation knows.
func BuiltinPresets() map[string]Settings {
	return map[string]Settings{
		PresetPreview: {
			Bucket:    Ptr("djd-ig-preview"),
			URLBase:   Ptr("preview"),
			Region:    Ptr("eu-west-1"),
			SourceDir: Ptr("dist/client"),
		},
		PresetLive: {
			SourceDir:         Ptr("dist/client"),
			Region:            Ptr("eu-west-1"),
			Bucket:            Ptr("djd-ig-live"),
			Branch:            Ptr("HEAD"),
			Tag:               Ptr(TagAtHead),
			URLBase:           Ptr("v3"),
			WriteVersionsJSON: Ptr(true),
		},
	}
}
