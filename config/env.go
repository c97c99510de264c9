package config

import (
	"github.com/kelseyhightower/envconfig"

	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
)

type environment struct {
	Region            *string `envconfig:"AWS_REGION"`
	Bucket            *string `envconfig:"BUCKET_NAME"`
	WriteVersionsJSON *bool   `envconfig:"WRITE_VERSIONS_JSON"`
}

// FromEnv reads the settings layer provided by environment variables. An
// empty variable counts as unset.
func FromEnv() (Settings, error) {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return Settings{}, ferrors.Wrap(err, ferrors.CodeInvalidConfig, "reading environment").
			WithOp("config.env")
	}

	s := Settings{WriteVersionsJSON: env.WriteVersionsJSON}
	if env.Region != nil && *env.Region != "" {
		s.Region = env.Region
	}
	if env.Bucket != nil && *env.Bucket != "" {
		s.Bucket = env.Bucket
	}
	return s, nil
}
