package validation

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/errors"
)

const (
	minBucketNameLen = 3
	maxBucketNameLen = 63
	maxObjectKeyLen  = 1024
	maxMetadataKey   = 128
	maxMetadataValue = 2048
)

var cannedACLs = []string{
	"private",
	"public-read",
	"public-read-write",
	"authenticated-read",
	"aws-exec-read",
	"bucket-owner-read",
	"bucket-owner-full-control",
}

// ValidateBucketName checks a bucket name against the S3 general purpose
// bucket naming rules. It returns an error wrapping ErrInvalidBucketName.
func ValidateBucketName(bucket string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(msg)
	}

	if len(bucket) < minBucketNameLen || len(bucket) > maxBucketNameLen {
		return invalid("bucket name must be between 3 and 63 characters long")
	}
	for _, r := range bucket {
		if !isValidBucketChar(r) {
			return invalid("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}
	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return invalid("bucket name must start and end with a letter or number")
	}
	if strings.Contains(bucket, "..") {
		return invalid("bucket name cannot contain two adjacent periods")
	}
	if _, err := netip.ParseAddr(bucket); err == nil {
		return invalid("bucket name cannot be formatted as an IP address")
	}

	return nil
}

// ValidateObjectKey checks that key is usable as an object key: non-empty,
// at most 1024 bytes, free of control characters and of "." or ".."
// path segments, and not starting with a slash.
func ValidateObjectKey(key string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage(msg)
	}

	if key == "" {
		return invalid("object key cannot be empty")
	}
	if len(key) > maxObjectKeyLen {
		return invalid("object key cannot exceed 1024 bytes")
	}
	if strings.HasPrefix(key, "/") {
		return invalid("object key cannot start with a slash")
	}
	if strings.ContainsFunc(key, unicode.IsControl) {
		return invalid("object key cannot contain control characters")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "." || seg == ".." {
			return invalid("object key cannot contain relative path segments")
		}
	}

	return nil
}

// ValidateMetadata validates user metadata keys and values.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if err := validateMetadataKey(key); err != nil {
			return err
		}
		if err := validateMetadataValue(value); err != nil {
			return err
		}
	}
	return nil
}

func validateMetadataKey(key string) error {
	if key == "" {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata key cannot be empty")
	}
	if len(key) > maxMetadataKey {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata key cannot exceed 128 characters")
	}
	for _, r := range key {
		if r <= ' ' || r > '~' {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata key %q can only contain printable ASCII characters", key))
		}
	}
	return nil
}

func validateMetadataValue(value string) error {
	if len(value) > maxMetadataValue {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage("metadata value cannot exceed 2048 characters")
	}
	for _, r := range value {
		if !unicode.IsPrint(r) && r != '\t' {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata value can only contain printable characters")
		}
	}
	return nil
}

// ValidateACL validates that an ACL value is one of the S3 canned ACLs.
// The empty string is accepted and leaves the bucket default in place.
func ValidateACL(acl string) error {
	if acl == "" || slices.Contains(cannedACLs, acl) {
		return nil
	}
	return errors.NewError("validateACL", errors.ErrInvalidInput).
		WithMessage("ACL must be one of: " + strings.Join(cannedACLs, ", "))
}

func isValidBucketChar(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || r == '.' || r == '-'
}
