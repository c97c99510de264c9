package deploy

import (
	"context"
	"errors"

	s3errors "github.com/input-output-hk/catalyst-forge-deploy/aws/s3/errors"
	ferrors "github.com/input-output-hk/catalyst-forge-deploy/errors"
)

func configError(message string) error {
	return ferrors.New(ferrors.CodeInvalidConfig, message).WithOp("deploy.validate")
}

func invalidBucketError(err error, bucket string) error {
	return ferrors.Wrap(err, ferrors.CodeInvalidConfig, "invalid bucket name").
		WithOp("deploy.validate").
		WithContext("bucket", bucket)
}

func fileSystemError(err error, op, path string) error {
	return ferrors.Wrap(err, ferrors.CodeFileSystem, "cannot read source files").
		WithOp(op).
		WithContext("path", path)
}

func uploadError(err error, file, target, key string) error {
	e := ferrors.Wrap(classify(err), ferrors.CodePublishFailed, "upload failed").
		WithOp("deploy.upload").
		WithContext("key", key)
	if file != "" {
		e = e.WithContext("file", file)
	}
	if target != "" {
		e = e.WithContext("target", target)
	}
	return e
}

// classify tags storage failures with the code of their cause so callers
// can tell throttling from a denied or missing bucket.
func classify(err error) error {
	var code ferrors.ErrorCode
	switch {
	case s3errors.IsThrottled(err):
		code = ferrors.CodeRateLimit
	case errors.Is(err, context.DeadlineExceeded):
		code = ferrors.CodeTimeout
	case s3errors.IsAccessDenied(err):
		code = ferrors.CodeForbidden
	case s3errors.IsBucketNotFound(err):
		code = ferrors.CodeNotFound
	case s3errors.IsInvalidInput(err):
		code = ferrors.CodeInvalidInput
	default:
		return err
	}
	return ferrors.Wrap(err, code, "storage request failed")
}

// IsConfigurationError reports whether err was caused by invalid or missing
// settings.
func IsConfigurationError(err error) bool {
	return ferrors.HasCode(err, ferrors.CodeInvalidConfig)
}

// IsFileSystemError reports whether err was caused by reading the source
// directory.
func IsFileSystemError(err error) bool {
	return ferrors.HasCode(err, ferrors.CodeFileSystem)
}

// IsUploadError reports whether err was caused by a failed storage write.
func IsUploadError(err error) bool {
	return ferrors.HasCode(err, ferrors.CodePublishFailed)
}

// IsRetryable reports whether err was caused by a condition that may clear
// on its own, such as throttling or a timed out upload.
func IsRetryable(err error) bool {
	return ferrors.Retryable(err)
}
