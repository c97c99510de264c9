package secrets

import "errors"

var (
	// ErrSecretNotFound is returned when a requested secret does not exist
	// in AWS Secrets Manager.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretEmpty is returned when a secret exists but contains no value.
	ErrSecretEmpty = errors.New("secret value is empty")

	// ErrAccessDenied is returned when the AWS credentials do not have
	// sufficient permissions to read the secret.
	ErrAccessDenied = errors.New("access denied to secret")

	// ErrInvalidCredentials is returned when a credentials secret is not a
	// JSON object with an access key id and a secret access key. The
	// message never includes the secret value.
	ErrInvalidCredentials = errors.New("secret does not hold AWS credentials")
)
