package sigv4

// Signature Version 4 (SigV4) constants.
// Reference: AWS SDK v4 signer internal/v4/const.go

const (
	// EmptyStringSHA256 is the hex encoded SHA256 hash of an empty string.
	// Used for x-amz-content-sha256 header on requests with no body.
	EmptyStringSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// UnsignedPayload is the sentinel content-hash value used when a body
	// is streamed with unknown length.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// SigningAlgorithm is the SigV4 signing algorithm identifier.
	SigningAlgorithm = "AWS4-HMAC-SHA256"

	// AuthorizationHeader is the HTTP header name for authorization.
	AuthorizationHeader = "Authorization"

	// AmzDateKey is the header key for the request timestamp.
	// Format: YYYYMMDDTHHMMSSZ (e.g., 20231201T120000Z)
	AmzDateKey = "X-Amz-Date"

	// ContentSHAKey is the header key for the request body SHA256 hash.
	ContentSHAKey = "X-Amz-Content-Sha256"

	// SecurityTokenKey is the header key for a temporary session token.
	SecurityTokenKey = "X-Amz-Security-Token"

	// InvocationIDKey is the header key for the per-request SDK invocation id.
	InvocationIDKey = "Amz-Sdk-Invocation-Id"

	// SdkRequestKey is the header key for the per-attempt SDK request marker.
	SdkRequestKey = "Amz-Sdk-Request"

	// TimeFormat is the time format for the X-Amz-Date header.
	// Format: YYYYMMDDTHHMMSSZ
	TimeFormat = "20060102T150405Z"

	// ShortTimeFormat is the shortened time format for the credential scope.
	// Format: YYYYMMDD
	ShortTimeFormat = "20060102"

	// RequestTerminator is the literal scope terminator AWS requires.
	RequestTerminator = "aws4_request"
)
