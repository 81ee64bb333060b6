package sigv4

import "fmt"

// Config holds the configuration for a Signer. Region is required;
// Service defaults to "s3". Credentials are supplied per call to
// SignHTTP rather than fixed here, so a single Signer — and its one
// SigningKeyCache — can be shared across requests signed with rotating
// credentials (spec §4.2/§5: "SigningKeyCache: shared per middleware
// instance; internally serialised").
type Config struct {
	// Region is the AWS region (e.g., "auto" for Cloudflare R2).
	Region string

	// Service is the AWS service name (defaults to "s3").
	Service string
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Service == "" {
		c.Service = "s3"
	}
	return nil
}
