package config

import (
	"maps"
	"time"
)

// Settings is one layer of deployment settings. A nil field is unset and
// leaves the value of lower layers in place.
type Settings struct {
	SourceDir         *string        `yaml:"dir"`
	Bucket            *string        `yaml:"bucket"`
	Region            *string        `yaml:"awsRegion"`
	Project           *string        `yaml:"project"`
	Branch            *string        `yaml:"branch"`
	Tag               *string        `yaml:"tag"`
	URLBase           *string        `yaml:"urlBase"`
	Path              *string        `yaml:"path"`
	CacheAssets       *bool          `yaml:"cacheAssets"`
	PublicRead        *bool          `yaml:"publicRead"`
	WriteVersionsJSON *bool          `yaml:"writeVersionsJson"`
	SniffContentType  *bool          `yaml:"sniffContentType"`
	MaxAge            *int           `yaml:"maxAge"`
	Concurrency       *int           `yaml:"concurrency"`
	UploadTimeout     *time.Duration `yaml:"uploadTimeout"`
	ExtraParams       map[string]any `yaml:"extraParams"`
}

// Merge overlays every field set in o onto s. ExtraParams are merged key by
// key.
func (s *Settings) Merge(o Settings) {
	setIf(&s.SourceDir, o.SourceDir)
	setIf(&s.Bucket, o.Bucket)
	setIf(&s.Region, o.Region)
	setIf(&s.Project, o.Project)
	setIf(&s.Branch, o.Branch)
	setIf(&s.Tag, o.Tag)
	setIf(&s.URLBase, o.URLBase)
	setIf(&s.Path, o.Path)
	setIf(&s.CacheAssets, o.CacheAssets)
	setIf(&s.PublicRead, o.PublicRead)
	setIf(&s.WriteVersionsJSON, o.WriteVersionsJSON)
	setIf(&s.SniffContentType, o.SniffContentType)
	setIf(&s.MaxAge, o.MaxAge)
	setIf(&s.Concurrency, o.Concurrency)
	setIf(&s.UploadTimeout, o.UploadTimeout)

	if len(o.ExtraParams) > 0 {
		if s.ExtraParams == nil {
			s.ExtraParams = make(map[string]any, len(o.ExtraParams))
		}
		maps.Copy(s.ExtraParams, o.ExtraParams)
	}
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
