package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// Error codes returned by Secrets Manager that map to sentinel errors.
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

// Client reads secrets. It is safe for concurrent use.
type Client struct {
	api    ManagerAPI
	logger *slog.Logger
}

// NewClient creates a client. The default AWS configuration is loaded
// unless WithAWSConfig is given.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var cfg aws.Config
	if options.awsConfig != nil {
		cfg = options.awsConfig.Copy()
	} else {
		loaded, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		cfg = loaded
	}
	if options.region != "" {
		cfg.Region = options.region
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("config region cannot be empty")
	}

	api := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if options.endpoint != "" {
			o.BaseEndpoint = aws.String(options.endpoint)
		}
	})

	return &Client{api: api, logger: options.logger}, nil
}

// NewClientWithAPI creates a client on top of an existing API
// implementation.
func NewClientWithAPI(api ManagerAPI, opts ...Option) *Client {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &Client{api: api, logger: options.logger}
}

// GetSecret returns the value of a secret. Binary secrets are returned as
// their raw bytes.
func (c *Client) GetSecret(ctx context.Context, secretName string) (string, error) {
	if secretName == "" {
		return "", fmt.Errorf("secret name cannot be empty")
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "retrieving secret", "secret_name", secretName)
	}

	output, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "failed to retrieve secret",
				"secret_name", secretName,
				"error", err)
		}
		return "", c.handleError(err, "GetSecret")
	}

	var value string
	switch {
	case output.SecretString != nil:
		value = *output.SecretString
	case output.SecretBinary != nil:
		value = string(output.SecretBinary)
	}
	if value == "" {
		return "", fmt.Errorf("GetSecret %s: %w", secretName, ErrSecretEmpty)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "secret retrieved successfully", "secret_name", secretName)
	}
	return value, nil
}

// handleError maps Secrets Manager API errors to the package sentinels and
// wraps the rest with the operation name.
func (c *Client) handleError(err error, operation string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case ResourceNotFoundException:
			return fmt.Errorf("%s operation failed: %w", operation, ErrSecretNotFound)
		case AccessDeniedException:
			return fmt.Errorf("%s operation failed: %w", operation, ErrAccessDenied)
		}
		return fmt.Errorf("%s operation failed: %s: %s: %w",
			operation, apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return fmt.Errorf("%s operation failed: %w", operation, err)
}
