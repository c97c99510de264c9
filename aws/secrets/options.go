package secrets

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// clientOptions holds configuration options for the Secrets Manager client.
type clientOptions struct {
	logger    *slog.Logger
	awsConfig *aws.Config
	region    string
	endpoint  string
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithLogger configures the client with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithAWSConfig uses cfg instead of loading the default configuration.
func WithAWSConfig(cfg *aws.Config) Option {
	return func(opts *clientOptions) {
		opts.awsConfig = cfg
	}
}

// WithRegion overrides the region of the loaded configuration.
func WithRegion(region string) Option {
	return func(opts *clientOptions) {
		opts.region = region
	}
}

// WithEndpoint sends requests to a custom endpoint, such as LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(opts *clientOptions) {
		opts.endpoint = endpoint
	}
}
