// Package s3 provides the main S3 client and core operations.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3errors "github.com/input-output-hk/catalyst-forge-deploy/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/internal/validation"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
)

// ValidateBucketName checks bucket against the S3 general purpose bucket
// naming rules. The error wraps errors.ErrInvalidBucketName.
func ValidateBucketName(bucket string) error {
	return validation.ValidateBucketName(bucket)
}

// Put uploads a byte slice to S3 with a single PutObject request.
//
// Content type, cache control and ACL are only sent when set through the
// corresponding options. Extra parameters given with WithExtraParams are
// merged last and may override any of them.
//
// Errors:
//   - ErrInvalidInput: If bucket or key is invalid, or an extra parameter is unknown
//   - ErrAccessDenied: If the credentials lack permission to upload
//   - ErrBucketNotFound: If the specified bucket doesn't exist
//   - ErrTooManyRequests, ErrTimeout: If S3 throttled or timed out the request
//   - Network errors or AWS SDK errors wrapped in Error type
//
// Example:
//
//	data := []byte(`["v1.0.0"]`)
//	_, err := client.Put(ctx, "my-bucket", "v3/org/repo/VERSIONS.json", data,
//	    s3.WithContentType("application/json"),
//	    s3.WithACL(s3types.ACLPublicRead),
//	)
//	if err != nil {
//	    return err
//	}
func (c *Client) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	opts ...s3types.UploadOption,
) (*s3types.PutResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	config := &s3types.UploadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if err := validation.ValidateACL(string(config.ACL)); err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateMetadata(config.Metadata); err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	input := buildPutObjectInput(bucket, key, data, config)
	if err := applyExtraParams(input, config.ExtraParams); err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, s3errors.ErrInvalidInput).
			WithMessage(err.Error())
	}

	startTime := time.Now()
	output, err := c.s3Client.PutObject(ctx, input)
	if err != nil {
		return nil, s3errors.NewObjectError("put", bucket, key, convertAWSError(err))
	}

	return &s3types.PutResult{
		Bucket:    bucket,
		Key:       key,
		Size:      int64(len(data)),
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
		Duration:  time.Since(startTime),
	}, nil
}

func buildPutObjectInput(bucket, key string, data []byte, config *s3types.UploadOptionConfig) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if config.ContentType != "" {
		input.ContentType = aws.String(config.ContentType)
	}
	if config.CacheControl != "" {
		input.CacheControl = aws.String(config.CacheControl)
	}
	if config.ACL != "" {
		input.ACL = types.ObjectCannedACL(config.ACL)
	}
	if config.StorageClass != "" {
		input.StorageClass = types.StorageClass(config.StorageClass)
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	return input
}

// applyExtraParams decodes params onto input by field name. Maps such as
// Metadata are merged with values already present; every other field is
// replaced.
func applyExtraParams(input *s3.PutObjectInput, params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	for k := range params {
		if strings.EqualFold(k, "Body") {
			return fmt.Errorf("extra parameter %q cannot be overridden", k)
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding extra parameters: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("applying extra parameters: %w", err)
	}
	return nil
}

// convertAWSError maps S3 API error codes onto the package sentinels. The
// original error stays in the chain.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %w", s3errors.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", s3errors.ErrTimeout, err)
		}
		return err
	}

	switch apiErr.ErrorCode() {
	case "AccessDenied", "AllAccessDisabled", "AccessControlListNotSupported":
		return fmt.Errorf("%w: %w", s3errors.ErrAccessDenied, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %w", s3errors.ErrBucketNotFound, err)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return fmt.Errorf("%w: %w", s3errors.ErrInvalidCredentials, err)
	case "SlowDown", "TooManyRequests", "RequestLimitExceeded":
		return fmt.Errorf("%w: %w", s3errors.ErrTooManyRequests, err)
	case "RequestTimeout":
		return fmt.Errorf("%w: %w", s3errors.ErrTimeout, err)
	case "PermanentRedirect", "AuthorizationHeaderMalformed":
		return fmt.Errorf("%w: %w", s3errors.ErrRegionMismatch, err)
	}

	return err
}
