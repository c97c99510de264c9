// Package localstack starts a LocalStack container for integration tests
// that need real S3 or Secrets Manager endpoints.
package localstack

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image  = "localstack/localstack:latest"
	region = "eu-west-1"
)

// Container wraps a running LocalStack container.
type Container struct {
	container *localstack.LocalStackContainer
	endpoint  string
	region    string
}

// Start creates and starts a new LocalStack container with the S3 and
// Secrets Manager services enabled.
func Start(ctx context.Context) (*Container, error) {
	container, err := localstack.Run(ctx,
		image,
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3,secretsmanager"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start LocalStack container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &Container{
		container: container,
		endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		region:    region,
	}, nil
}

// AWSConfig returns an AWS configuration with static test credentials and
// every service endpoint pointed at the container.
func (c *Container) AWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		config.WithBaseEndpoint(c.endpoint),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// S3Client returns a path-style S3 client for the container.
func (c *Container) S3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := c.AWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// Endpoint returns the LocalStack endpoint URL.
func (c *Container) Endpoint() string {
	return c.endpoint
}

// Region returns the AWS region used with LocalStack.
func (c *Container) Region() string {
	return c.region
}

// Terminate stops and removes the LocalStack container.
func (c *Container) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// Setup starts LocalStack for a test and registers its termination with
// t.Cleanup. The test is skipped in short mode.
func Setup(t *testing.T) *Container {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	c, err := Start(ctx)
	if err != nil {
		t.Fatalf("Failed to create LocalStack container: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate LocalStack container: %v", err)
		}
	})

	return c
}

// CreateBucket creates a bucket in LocalStack.
func CreateBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ListKeys returns every object key stored in bucket.
func ListKeys(ctx context.Context, client *s3.Client, bucket string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
