package deploy

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImmutableCacheControl is sent for asset files when asset caching is on.
const ImmutableCacheControl = "max-age=365000000, immutable"

var assetPrefixes = []string{"assets/", "static/"}

// webTypes pins the types of common web assets so classification does not
// depend on the host's MIME registry.
var webTypes = map[string]string{
	".avif":        "image/avif",
	".css":         "text/css",
	".csv":         "text/csv",
	".eot":         "application/vnd.ms-fontobject",
	".geojson":     "application/geo+json",
	".gif":         "image/gif",
	".htm":         "text/html",
	".html":        "text/html",
	".ico":         "image/x-icon",
	".jpeg":        "image/jpeg",
	".jpg":         "image/jpeg",
	".js":          "application/javascript",
	".json":        "application/json",
	".map":         "application/json",
	".md":          "text/markdown",
	".mjs":         "application/javascript",
	".mp3":         "audio/mpeg",
	".mp4":         "video/mp4",
	".otf":         "font/otf",
	".pdf":         "application/pdf",
	".png":         "image/png",
	".svg":         "image/svg+xml",
	".topojson":    "application/json",
	".ttf":         "font/ttf",
	".txt":         "text/plain",
	".vtt":         "text/vtt",
	".wasm":        "application/wasm",
	".webm":        "video/webm",
	".webmanifest": "application/manifest+json",
	".webp":        "image/webp",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".xml":         "application/xml",
	".zip":         "application/zip",
}

// ContentPolicy decides the Content-Type and Cache-Control of each file.
type ContentPolicy struct {
	MaxAge      int
	CacheAssets bool
	Sniff       bool
}

// NewContentPolicy returns the policy for cfg.
func NewContentPolicy(cfg *Config) ContentPolicy {
	return ContentPolicy{
		MaxAge:      cfg.EffectiveMaxAge(),
		CacheAssets: cfg.CacheAssets,
		Sniff:       cfg.SniffContentType,
	}
}

// Classify returns the content type and cache control for relPath, a
// slash-separated path relative to the source root. The content type is ""
// when the extension is unknown.
func (p ContentPolicy) Classify(relPath string) (contentType, cacheControl string) {
	return p.contentType(relPath), p.cacheControl(relPath)
}

// ClassifyContent is Classify with content sniffing of body for unknown
// extensions when the policy enables it.
func (p ContentPolicy) ClassifyContent(relPath string, body []byte) (contentType, cacheControl string) {
	contentType, cacheControl = p.Classify(relPath)
	if contentType == "" && p.Sniff {
		contentType = sniff(body)
	}
	return contentType, cacheControl
}

func (p ContentPolicy) contentType(relPath string) string {
	// A leading dot starts a hidden name, not an extension.
	base := strings.TrimPrefix(path.Base(relPath), ".")
	ext := strings.ToLower(path.Ext(base))
	if ext == "" {
		return withCharset("text/html")
	}
	if t, ok := webTypes[ext]; ok {
		return withCharset(t)
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return withCharset(baseType(t))
	}
	return ""
}

func (p ContentPolicy) cacheControl(relPath string) string {
	if p.CacheAssets {
		for _, prefix := range assetPrefixes {
			if strings.HasPrefix(relPath, prefix) {
				return ImmutableCacheControl
			}
		}
	}
	return MaxAgeCacheControl(p.MaxAge)
}

// MaxAgeCacheControl formats a max-age directive.
func MaxAgeCacheControl(seconds int) string {
	return fmt.Sprintf("max-age=%d", seconds)
}

func sniff(body []byte) string {
	mt := mimetype.Detect(body)
	if mt.Is("application/octet-stream") {
		return ""
	}
	return withCharset(baseType(mt.String()))
}

func baseType(t string) string {
	base, _, _ := strings.Cut(t, ";")
	return strings.TrimSpace(base)
}

func withCharset(t string) string {
	if strings.HasPrefix(t, "text/") {
		return t + "; charset=utf-8"
	}
	return t
}
