package config

import (
	"bytes"
	"errors"
	"io"
	"maps"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/fs"
)

// DefaultFileName is the config file looked up in the XDG config
// directories.
const DefaultFileName = "gdeploy/config.yaml"

// File is the optional YAML configuration file.
//
//	defaults:
//	  awsRegion: eu-west-1
//	presets:
//	  staging:
//	    bucket: my-staging-bucket
//	    urlBase: staging
//	customDomains:
//	  my-bucket: https://example.com
type File struct {
	Defaults      Settings            `yaml:"defaults"`
	Presets       map[string]Settings `yaml:"presets"`
	CustomDomains map[string]string   `yaml:"customDomains"`
}

// Discover returns the path of the first gdeploy/config.yaml found in the
// XDG config directories, or "" when there is none.
func Discover() string {
	path, err := xdg.SearchConfigFile(DefaultFileName)
	if err != nil {
		return ""
	}
	return path
}

// LoadFile reads and decodes the config file at path. Unknown keys are
// rejected so typos do not go unnoticed.
func LoadFile(fsys fs.Filesystem, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(err, ferrors.CodeInvalidConfig, "reading config file").
			WithOp("config.file").
			WithContext("path", path)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.Wrap(err, ferrors.CodeInvalidConfig, "decoding config file").
			WithOp("config.file").
			WithContext("path", path)
	}

	for name := range f.Presets {
		if name == "" {
			return nil, ferrors.New(ferrors.CodeInvalidConfig, "preset name cannot be empty").
				WithOp("config.file").
				WithContext("path", path)
		}
	}
	return &f, nil
}

// presets returns the built-in presets with the file's presets merged over
// them. A file preset named like a built-in one only overrides the fields
// it sets.
func (f *File) presets() map[string]Settings {
	out := BuiltinPresets()
	if f == nil {
		return out
	}
	for name, p := range f.Presets {
		base := out[name]
		base.Merge(p)
		out[name] = base
	}
	return out
}

func (f *File) customDomains() map[string]string {
	out := maps.Clone(DefaultCustomDomains)
	if f != nil {
		maps.Copy(out, f.CustomDomains)
	}
	return out
}
