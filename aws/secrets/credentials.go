package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// CredentialsSource is reported as aws.Credentials.Source for credentials
// read from a secret.
const CredentialsSource = "SecretsManagerCredentials"

// AccessKeys is the JSON layout of a credentials secret.
type AccessKeys struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

// ParseAccessKeys decodes and checks a credentials secret value.
func ParseAccessKeys(value string) (AccessKeys, error) {
	var keys AccessKeys
	if err := json.Unmarshal([]byte(value), &keys); err != nil {
		// The decode error may quote the value, so it is not wrapped.
		return AccessKeys{}, fmt.Errorf("%w: not a JSON object", ErrInvalidCredentials)
	}
	if keys.AccessKeyID == "" || keys.SecretAccessKey == "" {
		return AccessKeys{}, fmt.Errorf("%w: accessKeyId and secretAccessKey are required", ErrInvalidCredentials)
	}
	return keys, nil
}

// CredentialsProvider reads AWS access keys from a secret.
type CredentialsProvider struct {
	client     *Client
	secretName string
}

var _ aws.CredentialsProvider = (*CredentialsProvider)(nil)

// CredentialsProvider returns a provider reading secretName on every
// Retrieve. Wrap it in aws.NewCredentialsCache to avoid repeated reads.
func (c *Client) CredentialsProvider(secretName string) *CredentialsProvider {
	return &CredentialsProvider{client: c, secretName: secretName}
}

// Retrieve implements aws.CredentialsProvider.
func (p *CredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	value, err := p.client.GetSecret(ctx, p.secretName)
	if err != nil {
		return aws.Credentials{}, err
	}

	keys, err := ParseAccessKeys(value)
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("secret %s: %w", p.secretName, err)
	}

	creds, err := credentials.NewStaticCredentialsProvider(
		keys.AccessKeyID, keys.SecretAccessKey, keys.SessionToken,
	).Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	creds.Source = CredentialsSource
	return creds, nil
}
