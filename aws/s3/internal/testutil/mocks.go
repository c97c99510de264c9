// Package testutil provides test utilities and mocks for S3 operations.
// This package is internal and should only be used for testing within the S3 module.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/s3/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It records every PutObject input it receives; PutObjectFunc customizes the
// response.
type MockS3Client struct {
	PutObjectFunc func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	mu    sync.Mutex
	puts  []*s3.PutObjectInput
	files map[string][]byte
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	var body []byte
	if params.Body != nil {
		b, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	m.mu.Lock()
	m.puts = append(m.puts, params)
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[aws.ToString(params.Key)] = body
	m.mu.Unlock()

	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"mock-etag"`)}, nil
}

// Puts returns the inputs received so far, in call order.
func (m *MockS3Client) Puts() []*s3.PutObjectInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*s3.PutObjectInput(nil), m.puts...)
}

// Body returns the body uploaded under key.
func (m *MockS3Client) Body(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	return b, ok
}

var _ s3api.S3API = (*MockS3Client)(nil)
