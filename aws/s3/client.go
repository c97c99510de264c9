// Package s3 provides client initialization and configuration.
package s3

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
)

// DefaultRegion is used when neither the options nor the AWS configuration
// chain provide a region.
const DefaultRegion = "us-east-1"

// Client writes objects to S3. It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config
}

// New creates a new S3 client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3.New(ctx,
//	    s3.WithRegion("eu-west-1"),
//	    s3.WithMaxRetries(3),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	clientCfg := &s3types.ClientConfig{
		MaxRetries: 3,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	if clientCfg.Credentials != nil {
		cfg.Credentials = aws.NewCredentialsCache(clientCfg.Credentials)
	}

	s3Client := s3.NewFromConfig(cfg, s3Options(clientCfg)...)

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

func s3Options(clientCfg *s3types.ClientConfig) []func(*s3.Options) {
	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return s3Opts
}

// NewWithClient creates a new S3 client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
	}
}

// Region returns the region the client sends requests to.
func (c *Client) Region() string {
	return c.config.Region
}
