// Package secrets reads values from AWS Secrets Manager and exposes a
// secret holding AWS access keys as an aws.CredentialsProvider.
//
// # IAM Permissions
//
//   - secretsmanager:GetSecretValue on the secret
//   - kms:Decrypt when the secret is encrypted with a customer-managed key
//
// Secret values are never logged; only secret names and operation
// metadata are.
//
// # Usage
//
//	client, err := secrets.NewClient(ctx, secrets.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//
//	creds := client.CredentialsProvider("deploy/s3-credentials")
//	s3Client, err := s3.New(ctx, s3.WithCredentials(creds))
package secrets
