// Package s3err defines the typed error kinds this module's components
// return, so callers can branch with errors.As instead of matching on
// error strings.
//
// Reference: scttfrdmn-objectfs/pkg/errors/errors.go for the
// typed-error-with-wrapped-cause shape, scaled down to this module's
// error taxonomy (spec §7), and the teacher's fmt.Errorf("...: %w", err)
// wrapping idiom in signer.go.
package s3err

import "fmt"

// CredentialError means a credentials.Provider failed, or returned
// empty access/secret material. Never retried.
type CredentialError struct {
	Op    string
	Cause error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("s3gate: credential error during %s: %v", e.Op, e.Cause)
}

func (e *CredentialError) Unwrap() error { return e.Cause }

// SigningError means request canonicalization or key derivation failed
// in a way that should never happen with valid inputs.
type SigningError struct {
	Op    string
	Cause error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("s3gate: signing error during %s: %v", e.Op, e.Cause)
}

func (e *SigningError) Unwrap() error { return e.Cause }

// TransportError wraps a downstream HTTP I/O failure. Surfaced
// unchanged; the caller decides whether to retry.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("s3gate: transport error during %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// AuthRejected means the server returned 401/403 with a SigV4 error
// code (SignatureDoesNotMatch, InvalidAccessKeyId, TokenRefreshRequired).
type AuthRejected struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AuthRejected) Error() string {
	return fmt.Sprintf("s3gate: auth rejected (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsTokenRefreshRequired reports whether the server is asking for a
// single credential re-fetch and retry (spec §7).
func (e *AuthRejected) IsTokenRefreshRequired() bool {
	return e.Code == "TokenRefreshRequired"
}

// ClockSkewError means the server rejected the request with
// RequestTimeTooSkewed. A single retry against the server's own clock
// is permitted (spec §4.4, §7).
type ClockSkewError struct {
	ServerTime string
	Message    string
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("s3gate: clock skew rejected, server time %s: %s", e.ServerTime, e.Message)
}

// MultipartError wraps the primary failure of a multipart operation.
// If the best-effort abort that follows also fails, that failure is
// attached as AbortCause without replacing Cause.
//
// Uncertain is set when the failure happened during or after the
// CompleteMultipartUpload POST was sent, so the server may already have
// committed the object even though this call observed a failure — e.g.
// the caller's context was canceled while that POST was in flight (spec
// §5, §8 scenario 5: "Aborted(uncertain=true)"). It is never set for a
// failure that occurs before that POST is sent (a part failure or a
// pre-commit dispatch failure), since those are safe to retry from
// scratch.
type MultipartError struct {
	UploadID   string
	Op         string
	Cause      error
	AbortCause error
	Uncertain  bool
}

func (e *MultipartError) Error() string {
	var uncertainSuffix string
	if e.Uncertain {
		uncertainSuffix = " (uncertain: object may exist)"
	}
	if e.AbortCause != nil {
		return fmt.Sprintf("s3gate: multipart %s failed for upload %s: %v (abort also failed: %v)%s",
			e.Op, e.UploadID, e.Cause, e.AbortCause, uncertainSuffix)
	}
	return fmt.Sprintf("s3gate: multipart %s failed for upload %s: %v%s", e.Op, e.UploadID, e.Cause, uncertainSuffix)
}

func (e *MultipartError) Unwrap() error { return e.Cause }

// ProtocolError means a response body was malformed XML or missing an
// expected element. Fatal for the operation that produced it.
type ProtocolError struct {
	Op    string
	Cause error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("s3gate: protocol error during %s: %v", e.Op, e.Cause)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }
