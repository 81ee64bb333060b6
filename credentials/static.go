package credentials

import (
	"context"

	"github.com/haltia-io/s3gate/s3err"
)

// StaticProvider returns a fixed set of Credentials on every Fetch call.
// Reference: the fixed-value Provider implied by
// original_source/src/creds.cpp's CredentialsProviderServer, which always
// reads the same underlying chain for the process lifetime.
type StaticProvider struct {
	creds Credentials
}

// NewStaticProvider wraps fixed credentials in a Provider.
func NewStaticProvider(creds Credentials) *StaticProvider {
	return &StaticProvider{creds: creds}
}

// Fetch returns the wrapped credentials, or a CredentialError if they are
// incomplete.
func (p *StaticProvider) Fetch(ctx context.Context) (Credentials, error) {
	if p.creds.AccessKeyID == "" || p.creds.SecretAccessKey == "" {
		return Credentials{}, &s3err.CredentialError{
			Op:    "static fetch",
			Cause: errEmptyCredentials,
		}
	}
	return p.creds, nil
}

var errEmptyCredentials = staticError("access key and secret key are both required")

type staticError string

func (e staticError) Error() string { return string(e) }
