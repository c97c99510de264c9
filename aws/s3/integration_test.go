//go:build integration

package s3_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-deploy/internal/localstack"
)

// TestIntegrationPut tests Put against LocalStack.
func TestIntegrationPut(t *testing.T) {
	ctx := context.Background()
	ls := localstack.Setup(t)

	raw, err := ls.S3Client(ctx)
	require.NoError(t, err)
	require.NoError(t, localstack.CreateBucket(ctx, raw, "integration-put"))

	client := s3.NewWithClient(raw)

	t.Run("headers round trip", func(t *testing.T) {
		_, err := client.Put(ctx, "integration-put", "v2/org/repo/main/index.html", []byte("<html></html>"),
			s3.WithContentType("text/html; charset=utf-8"),
			s3.WithCacheControl("max-age=60"),
			s3.WithExtraParams(map[string]any{"Metadata": map[string]string{"surrogate-key": "my-key"}}),
		)
		require.NoError(t, err)

		head, err := raw.HeadObject(ctx, &awss3.HeadObjectInput{
			Bucket: aws.String("integration-put"),
			Key:    aws.String("v2/org/repo/main/index.html"),
		})
		require.NoError(t, err)
		assert.Equal(t, "text/html; charset=utf-8", aws.ToString(head.ContentType))
		assert.Equal(t, "max-age=60", aws.ToString(head.CacheControl))
		assert.Equal(t, "my-key", head.Metadata["surrogate-key"])
	})

	t.Run("missing bucket", func(t *testing.T) {
		_, err := client.Put(ctx, "does-not-exist-bucket", "index.html", []byte("x"))
		require.Error(t, err)
		assert.True(t, errors.IsBucketNotFound(err))
	})
}
