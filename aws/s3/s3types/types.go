// Package s3types provides shared type definitions for the S3 module.
package s3types

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"
)

// ObjectACL represents the canned access control list applied to an object.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// PutResult describes an object written by Client.Put.
type PutResult struct {
	// Bucket is the bucket the object was written to
	Bucket string

	// Key is the object key
	Key string

	// Size is the number of bytes written
	Size int64

	// ETag is the entity tag returned by S3
	ETag string

	// VersionID is set when bucket versioning is enabled
	VersionID string

	// Duration is the wall time of the request
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the S3 client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	MaxRetries      int
	Timeout         time.Duration
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Credentials     aws.CredentialsProvider
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
	StorageClass StorageClass
	ACL          ObjectACL

	// ExtraParams are applied last onto the PutObject input, keyed by the
	// input's field names, and may override anything set above.
	ExtraParams map[string]any
}

type (
	// Option is a functional option for configuring the S3 client.
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring S3 upload operations.
	UploadOption func(*UploadOptionConfig)
)
