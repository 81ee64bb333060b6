package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/haltia-io/s3gate/s3err"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(Credentials{
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		SessionToken:    "TOKEN",
	})

	creds, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AKID", creds.AccessKeyID)
	require.Equal(t, "SECRET", creds.SecretAccessKey)
	require.Equal(t, "TOKEN", creds.SessionToken)
}

func TestStaticProviderRejectsEmptyCredentials(t *testing.T) {
	p := NewStaticProvider(Credentials{})

	_, err := p.Fetch(context.Background())
	require.Error(t, err)

	var credErr *s3err.CredentialError
	require.True(t, errors.As(err, &credErr))
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	t.Setenv("AWS_SESSION_TOKEN", "TOKEN")

	p := NewEnvProvider()
	creds, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AKID", creds.AccessKeyID)
	require.Equal(t, "SECRET", creds.SecretAccessKey)
	require.Equal(t, "TOKEN", creds.SessionToken)
}

func TestEnvProviderMissingCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	p := NewEnvProvider()
	_, err := p.Fetch(context.Background())
	require.Error(t, err)

	var credErr *s3err.CredentialError
	require.True(t, errors.As(err, &credErr))
}

func TestCredentialsStringRedactsSecret(t *testing.T) {
	creds := Credentials{
		AccessKeyID:     "AKID",
		SecretAccessKey: "supersecret",
		SessionToken:    "sometoken",
	}

	s := creds.String()
	require.True(t, strings.Contains(s, "AKID"))
	require.False(t, strings.Contains(s, "supersecret"))
	require.False(t, strings.Contains(s, "sometoken"))
}
