// Package validation checks bucket names, object keys, metadata and ACLs
// before a request is sent to S3, so that malformed input fails fast with
// ErrInvalidInput instead of an opaque service error.
package validation
