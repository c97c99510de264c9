package s3

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/s3types"
)

// TestClient_New tests the New() constructor against a fixed base configuration.
func TestClient_New(t *testing.T) {
	base := aws.Config{Region: "eu-west-1"}

	tests := []struct {
		name        string
		opts        []s3types.Option
		wantRegion  string
		wantRetries int
	}{
		{
			name:        "base configuration",
			opts:        []s3types.Option{WithAWSConfig(&base)},
			wantRegion:  "eu-west-1",
			wantRetries: 3,
		},
		{
			name:        "region option wins",
			opts:        []s3types.Option{WithAWSConfig(&base), WithRegion("us-west-2")},
			wantRegion:  "us-west-2",
			wantRetries: 3,
		},
		{
			name:        "empty region falls back to default",
			opts:        []s3types.Option{WithAWSConfig(&aws.Config{}), WithMaxRetries(5)},
			wantRegion:  DefaultRegion,
			wantRetries: 5,
		},
		{
			name: "endpoint, path style and timeout",
			opts: []s3types.Option{
				WithAWSConfig(&base),
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
				WithTimeout(5 * time.Second),
			},
			wantRegion:  "eu-west-1",
			wantRetries: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(context.Background(), tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, client)

			assert.NotNil(t, client.s3Client)
			assert.Equal(t, tt.wantRegion, client.Region())
			assert.Equal(t, tt.wantRetries, client.config.RetryMaxAttempts)
		})
	}
}

func TestClient_New_Credentials(t *testing.T) {
	provider := credentials.NewStaticCredentialsProvider("AKID", "SECRET", "TOKEN")

	client, err := New(context.Background(),
		WithAWSConfig(&aws.Config{Region: "eu-west-1"}),
		WithCredentials(provider),
	)
	require.NoError(t, err)
	require.NotNil(t, client.config.Credentials)

	creds, err := client.config.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
	assert.Equal(t, "TOKEN", creds.SessionToken)
}

func TestS3Options(t *testing.T) {
	assert.Empty(t, s3Options(&s3types.ClientConfig{}))
	assert.Len(t, s3Options(&s3types.ClientConfig{
		ForcePathStyle: true,
		Endpoint:       "http://localhost:4566",
		Timeout:        time.Second,
	}), 3)
}

func TestNewWithClient(t *testing.T) {
	mock := &testutil.MockS3Client{}
	client := NewWithClient(mock)

	require.NotNil(t, client)
	assert.Same(t, mock, client.s3Client)
}
