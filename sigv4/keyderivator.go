package sigv4

// keyDerivator is an interface for deriving signing keys.
// Reference: AWS SDK v4 signer v4.go keyDerivator interface
type keyDerivator interface {
	DeriveKey(accessKeyID, secretAccessKey, service, region string, signingTime SigningTime) []byte
}

// SigningKeyDeriver derives signing keys, caching them in a bounded LRU
// cache shared across requests signed by the same Signer.
// Reference: AWS SDK v4 signer internal/v4/cache.go
type SigningKeyDeriver struct {
	cache *SigningKeyCache
}

// NewSigningKeyDeriver creates a new SigningKeyDeriver backed by cache.
func NewSigningKeyDeriver(cache *SigningKeyCache) *SigningKeyDeriver {
	return &SigningKeyDeriver{
		cache: cache,
	}
}

// DeriveKey derives a signing key from credentials.
// Implements the SigV4 key derivation algorithm:
//   - kDate = HMAC-SHA256("AWS4" + secret, date)
//   - kRegion = HMAC-SHA256(kDate, region)
//   - kService = HMAC-SHA256(kRegion, service)
//   - kSigning = HMAC-SHA256(kService, "aws4_request")
//
// Keys are cached per day/region/service/secret combination in a bounded
// LRU cache (spec §4.2); accessKeyID is accepted for interface parity with
// the teacher's signature but the cache key is derived from the secret
// fingerprint, which already changes whenever credentials rotate.
// Reference: AWS SigV4 spec and AWS SDK v4 signer internal/v4/cache.go
func (k *SigningKeyDeriver) DeriveKey(accessKeyID, secretAccessKey, service, region string, signingTime SigningTime) []byte {
	if key, ok := k.cache.get(secretAccessKey, service, region, signingTime.Time); ok {
		return key
	}

	key := DeriveKey(secretAccessKey, service, region, signingTime)
	k.cache.set(secretAccessKey, service, region, signingTime.Time, key)
	return key
}
