// Package credentials supplies the access key, secret key, and optional
// session token a Signer needs, behind a capability interface so the
// signing and transport layers never depend on how credentials are
// sourced.
//
// Reference: original_source/src/creds.h's Credentials::Provider::Client
// and its getCredentials() RPC (accessKey/secretKey/sessionToken).
package credentials

import (
	"context"
	"fmt"
)

// Credentials holds the material a Signer needs for a single request.
// SessionToken is empty for long-lived IAM users and non-empty for
// temporary/STS-issued credentials.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// String redacts the secret and session token. Credentials must never be
// logged in full (spec §3 invariant).
func (c Credentials) String() string {
	if c.AccessKeyID == "" {
		return "Credentials{<empty>}"
	}
	return fmt.Sprintf("Credentials{AccessKeyID:%s, SecretAccessKey:<redacted>, SessionToken:%s}",
		c.AccessKeyID, redactedToken(c.SessionToken))
}

func redactedToken(token string) string {
	if token == "" {
		return "<none>"
	}
	return "<redacted>"
}

// Provider is the capability a Signer or transport.Middleware depends on
// to obtain Credentials. Implementations may fetch fresh credentials on
// every call (e.g. from an STS-backed chain) or return a fixed value.
type Provider interface {
	Fetch(ctx context.Context) (Credentials, error)
}
