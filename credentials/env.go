package credentials

import (
	"context"
	"os"

	"github.com/haltia-io/s3gate/s3err"
)

// EnvProvider reads credentials from the process environment on every
// Fetch call, so credential rotation via environment reload (e.g. a
// sidecar rewriting the env file and the process re-execing) is picked
// up without restarting the Provider.
//
// Reference: original_source/src/creds.cpp's use of
// Aws::Auth::DefaultAWSCredentialsProviderChain, scoped down to the
// environment-variable link of that chain — role assumption and
// instance-metadata lookups are explicitly out of scope (spec §1).
type EnvProvider struct {
	AccessKeyIDEnv     string
	SecretAccessKeyEnv string
	SessionTokenEnv    string
}

// NewEnvProvider returns an EnvProvider reading the standard
// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY/AWS_SESSION_TOKEN variables.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{
		AccessKeyIDEnv:     "AWS_ACCESS_KEY_ID",
		SecretAccessKeyEnv: "AWS_SECRET_ACCESS_KEY",
		SessionTokenEnv:    "AWS_SESSION_TOKEN",
	}
}

// Fetch reads credentials from the configured environment variables.
func (p *EnvProvider) Fetch(ctx context.Context) (Credentials, error) {
	accessKeyID := os.Getenv(p.AccessKeyIDEnv)
	secretAccessKey := os.Getenv(p.SecretAccessKeyEnv)
	if accessKeyID == "" || secretAccessKey == "" {
		return Credentials{}, &s3err.CredentialError{
			Op:    "env fetch",
			Cause: errMissingEnvCredentials(p.AccessKeyIDEnv, p.SecretAccessKeyEnv),
		}
	}

	return Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		SessionToken:    os.Getenv(p.SessionTokenEnv),
	}, nil
}

func errMissingEnvCredentials(accessVar, secretVar string) error {
	return staticError(accessVar + " and " + secretVar + " must both be set")
}
