//go:build integration

package secrets_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-deploy/aws/secrets"
	"github.com/input-output-hk/catalyst-forge-deploy/internal/localstack"
)

func TestIntegrationCredentialsProvider(t *testing.T) {
	ctx := context.Background()
	ls := localstack.Setup(t)

	cfg, err := ls.AWSConfig(ctx)
	require.NoError(t, err)

	raw := secretsmanager.NewFromConfig(cfg)
	_, err = raw.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String("gdeploy/credentials"),
		SecretString: aws.String(`{"accessKeyId":"AKIAINTEGRATION","secretAccessKey":"integration"}`),
	})
	require.NoError(t, err)

	client, err := secrets.NewClient(ctx, secrets.WithAWSConfig(&cfg))
	require.NoError(t, err)

	t.Run("retrieve", func(t *testing.T) {
		creds, err := client.CredentialsProvider("gdeploy/credentials").Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "AKIAINTEGRATION", creds.AccessKeyID)
		assert.Equal(t, "integration", creds.SecretAccessKey)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := client.GetSecret(ctx, "gdeploy/does-not-exist")
		assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
	})
}
