// Package s3 provides functional options for configuring S3 client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3

import (
	"maps"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of attempts the SDK makes per request.
// Default is 3.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP client timeout for individual S3 requests.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials replaces the default credential chain with provider.
func WithCredentials(provider aws.CredentialsProvider) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Credentials = provider
	}
}

// WithContentType sets the content type for upload operations.
// Without it the object is written with no Content-Type header.
func WithContentType(contentType string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithCacheControl sets the Cache-Control header for upload operations.
func WithCacheControl(cacheControl string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.CacheControl = cacheControl
	}
}

// WithACL sets the canned ACL for upload operations.
func WithACL(acl s3types.ObjectACL) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ACL = acl
	}
}

// WithMetadata sets metadata for upload operations.
func WithMetadata(metadata map[string]string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		maps.Copy(c.Metadata, metadata)
	}
}

// WithStorageClass sets the storage class for upload operations.
func WithStorageClass(storageClass s3types.StorageClass) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithExtraParams merges params onto the PutObject input after every other
// option has been applied. Keys are PutObjectInput field names such as
// "Metadata", "StorageClass" or "ContentDisposition".
func WithExtraParams(params map[string]any) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		if len(params) == 0 {
			return
		}
		if c.ExtraParams == nil {
			c.ExtraParams = make(map[string]any, len(params))
		}
		maps.Copy(c.ExtraParams, params)
	}
}
