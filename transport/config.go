package transport

import (
	"net/http"
	"time"

	"github.com/haltia-io/s3gate/credentials"
)

// defaultHashBodyThreshold is the byte threshold at or under which a
// known-length request body is hashed rather than signed as
// UNSIGNED-PAYLOAD (spec §6, §9 Open Question 1).
const defaultHashBodyThreshold = 256 * 1024

// Config configures a Middleware. Region and CredentialsProvider are
// required; the remaining fields have defaults (Service defaults to
// "s3").
//
// Reference: spec §6 "Configuration options", and
// other_examples/aws-smithy-go__v4.go's SignerOptions for the shape of a
// signing-layer config struct.
type Config struct {
	Region              string
	Service             string
	CredentialsProvider credentials.Provider

	// Clock returns the current time; overridable for tests. The
	// clock-skew retry (spec §4.4) does not use it: that retry re-signs
	// with the server's reported time, and Clock is left unchanged.
	Clock func() time.Time

	// HashBodyThreshold is the byte threshold at or below which a
	// known-length body is content-hashed instead of marked
	// UNSIGNED-PAYLOAD.
	// Default 256KiB.
	HashBodyThreshold int64

	// Next is the downstream transport the signed request is forwarded
	// to. Defaults to http.DefaultTransport.
	Next http.RoundTripper
}

func (c *Config) setDefaults() {
	if c.Service == "" {
		c.Service = "s3"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.HashBodyThreshold == 0 {
		c.HashBodyThreshold = defaultHashBodyThreshold
	}
	if c.Next == nil {
		c.Next = http.DefaultTransport
	}
}
