// Package transport implements the SigningHTTPMiddleware described in
// spec §4.4: an http.RoundTripper that fetches credentials, stamps the
// AWS SigV4 request-identity headers, signs the request, and forwards it
// to a downstream transport.
//
// Reference: the teacher (forestrie-go-sigv4) stops at SignHTTP mutating
// a *http.Request; it has no transport wrapper of its own. This package
// is grounded on original_source/src/http.h's HttpContext/Request (which
// names exactly the headers a signing layer owns: amzSdkInvocationId,
// amzSdkRequest, auth, xAmzContentSha256, xAmzDate) and on
// other_examples/aws-smithy-go__v4.go's SignerOptions for the
// configuration shape.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/haltia-io/s3gate/credentials"
	slog "github.com/haltia-io/s3gate/log"
	"github.com/haltia-io/s3gate/s3err"
	"github.com/haltia-io/s3gate/sigv4"
	"github.com/haltia-io/s3gate/xmlutil"
)

// Middleware implements http.RoundTripper, composing a sigv4.Signer, a
// credentials.Provider, and a downstream http.RoundTripper — the "narrow
// capability interface" spec §9 calls for. The Signer (and its one
// SigningKeyCache) is created once and shared for the Middleware's
// lifetime, so it stays warm across requests even as the
// CredentialsProvider rotates the access key/secret (spec §4.2/§5).
//
// Middleware holds no per-request mutable state: the attempt counter and
// any clock-skew override live on the stack of the RoundTrip call that
// needs them, not on the Middleware itself, so concurrent RoundTrip
// calls never share or race on either (spec §5: "safe for concurrent
// requests").
type Middleware struct {
	cfg    Config
	signer *sigv4.Signer
}

// NewMiddleware builds a Middleware from cfg. Region and
// CredentialsProvider are required.
func NewMiddleware(cfg Config) (*Middleware, error) {
	cfg.setDefaults()
	if cfg.Region == "" {
		return nil, &s3err.SigningError{Op: "new middleware", Cause: fmt.Errorf("region is required")}
	}
	if cfg.CredentialsProvider == nil {
		return nil, &s3err.SigningError{Op: "new middleware", Cause: fmt.Errorf("credentials provider is required")}
	}

	signer, err := sigv4.NewSigner(sigv4.Config{
		Region:  cfg.Region,
		Service: cfg.Service,
	})
	if err != nil {
		return nil, &s3err.SigningError{Op: "new middleware", Cause: err}
	}

	return &Middleware{cfg: cfg, signer: signer}, nil
}

// RoundTrip implements spec §4.4 steps 1–6.
func (m *Middleware) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	logger := slog.Ctx(ctx)

	// Step 1: fetch credentials (may suspend; honors ctx cancellation via
	// the Provider implementation).
	creds, err := m.cfg.CredentialsProvider.Fetch(ctx)
	if err != nil {
		return nil, &s3err.CredentialError{Op: "round trip", Cause: err}
	}

	const firstAttempt = 1
	signed, body, err := m.prepareSignedRequest(req, creds, firstAttempt, m.cfg.Clock)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("method", signed.Method).Str("url", signed.URL.String()).
		Str("bytes", humanize.Bytes(uint64(len(body)))).Msg("forwarding signed request")

	resp, err := m.cfg.Next.RoundTrip(signed)
	if err != nil {
		return nil, &s3err.TransportError{Op: "round trip", Cause: err}
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return m.handleRejection(req, resp, firstAttempt)
	}

	return resp, nil
}

// prepareSignedRequest implements steps 2–5: clone, stamp, hash, sign.
// clock is the time source for this call alone — retries pass a
// one-off closure bound to the server's reported time rather than
// mutating any state shared with other in-flight RoundTrip calls.
func (m *Middleware) prepareSignedRequest(req *http.Request, creds credentials.Credentials, attempt int, clock func() time.Time) (*http.Request, []byte, error) {
	signed := req.Clone(req.Context())

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, nil, &s3err.TransportError{Op: "read body", Cause: err}
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	signed.Body = io.NopCloser(bytes.NewReader(body))
	signed.ContentLength = int64(len(body))

	now := clock()
	signed.Header.Set(sigv4.AmzDateKey, now.UTC().Format(sigv4.TimeFormat))
	signed.Header.Set(sigv4.InvocationIDKey, strings.ToLower(uuid.New().String()))
	// An Amz-Sdk-Request value already on the caller's request (set by an
	// outer retry wrapper) is forwarded unchanged; otherwise the
	// middleware stamps its own attempt number.
	if req.Header.Get(sigv4.SdkRequestKey) == "" {
		signed.Header.Set(sigv4.SdkRequestKey, fmt.Sprintf("attempt=%d", attempt))
	}
	if creds.SessionToken != "" {
		signed.Header.Set(sigv4.SecurityTokenKey, creds.SessionToken)
	}

	payloadHash := m.payloadHash(body)
	signed.Header.Set(sigv4.ContentSHAKey, payloadHash)

	if err := m.signer.SignHTTP(signed, creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken, payloadHash, now); err != nil {
		return nil, nil, &s3err.SigningError{Op: "sign http", Cause: err}
	}

	return signed, body, nil
}

// payloadHash implements spec §4.4 step 4.
func (m *Middleware) payloadHash(body []byte) string {
	if len(body) == 0 {
		return sigv4.EmptyStringSHA256
	}
	if int64(len(body)) <= m.cfg.HashBodyThreshold {
		hash, err := sigv4.ComputePayloadHash(bytes.NewReader(body))
		if err == nil {
			return hash
		}
	}
	return sigv4.UnsignedPayload
}

// handleRejection implements the clock-skew and TokenRefreshRequired
// retries of spec §4.4/§7: a single bounded retry for each. attempt is
// the attempt number that was just rejected.
func (m *Middleware) handleRejection(original *http.Request, resp *http.Response, attempt int) (*http.Response, error) {
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &s3err.TransportError{Op: "read rejection body", Cause: err}
	}

	apiErr, ok, err := xmlutil.ReadError(bytes.NewReader(respBody))
	if err != nil || !ok {
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
		return resp, nil
	}

	rejection := &s3err.AuthRejected{
		StatusCode: resp.StatusCode,
		Code:       apiErr.Code,
		Message:    apiErr.Message,
	}

	if apiErr.Code == "RequestTimeTooSkewed" {
		if dateHeader := resp.Header.Get("Date"); dateHeader != "" {
			return m.retryWithServerClock(original, dateHeader, attempt+1)
		}
		return nil, rejection
	}

	if rejection.IsTokenRefreshRequired() {
		return m.retryWithFreshCredentials(original, attempt+1)
	}

	return nil, rejection
}

// retryWithServerClock implements the clock-skew retry (spec §4.4,
// §7 ClockSkewError): resign once using the server's reported time. The
// server-time closure is local to this call — it is never written back
// into m.cfg, so it cannot leak into any other in-flight RoundTrip.
func (m *Middleware) retryWithServerClock(original *http.Request, dateHeader string, attempt int) (*http.Response, error) {
	serverTime, err := http.ParseTime(dateHeader)
	if err != nil {
		return nil, &s3err.ClockSkewError{ServerTime: dateHeader, Message: "could not parse server Date header"}
	}
	serverClock := func() time.Time { return serverTime }

	creds, err := m.cfg.CredentialsProvider.Fetch(original.Context())
	if err != nil {
		return nil, &s3err.CredentialError{Op: "clock skew retry", Cause: err}
	}

	signed, _, err := m.prepareSignedRequest(original, creds, attempt, serverClock)
	if err != nil {
		return nil, err
	}

	resp, err := m.cfg.Next.RoundTrip(signed)
	if err != nil {
		return nil, &s3err.TransportError{Op: "clock skew retry", Cause: err}
	}
	return resp, nil
}

// retryWithFreshCredentials implements the TokenRefreshRequired retry
// (spec §7): one credential re-fetch and one retry.
func (m *Middleware) retryWithFreshCredentials(original *http.Request, attempt int) (*http.Response, error) {
	creds, err := m.cfg.CredentialsProvider.Fetch(original.Context())
	if err != nil {
		return nil, &s3err.CredentialError{Op: "token refresh retry", Cause: err}
	}

	signed, _, err := m.prepareSignedRequest(original, creds, attempt, m.cfg.Clock)
	if err != nil {
		return nil, err
	}

	resp, err := m.cfg.Next.RoundTrip(signed)
	if err != nil {
		return nil, &s3err.TransportError{Op: "token refresh retry", Cause: err}
	}
	return resp, nil
}
