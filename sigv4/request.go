package sigv4

import (
	"net/http"
	"strings"
)

// SanitizeHostForHeader strips a default port from host and lowercases
// the result, so the Host this module signs and sends always matches
// spec §6's wire-level rule: "Host: URL authority, lowercased."
// Reference: AWS SDK v4 signer internal/v4/host.go SanitizeHostForHeader
func SanitizeHostForHeader(r *http.Request) {
	host := GetHost(r)
	port := PortOnly(host)
	if port != "" && IsDefaultPort(r.URL.Scheme, port) {
		host = StripPort(host)
	}
	r.Host = strings.ToLower(host)
}

// GetHost returns the host from the request.
func GetHost(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	return r.URL.Host
}

