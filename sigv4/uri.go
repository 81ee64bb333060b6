package sigv4

import (
	"net/url"
	"strings"
)

// unreserved holds the RFC 3986 unreserved characters that must never be
// percent-encoded in a SigV4 canonical URI.
const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// EscapePathSegment percent-encodes a single path segment for SigV4
// signing: unreserved characters pass through unchanged, everything else
// is encoded as an uppercase-hex escape. The segment must not itself
// contain "/". Reference: AWS SigV4 canonical request rules; spec §4.1.
func EscapePathSegment(segment string) string {
	var needsEscape bool
	for i := 0; i < len(segment); i++ {
		if !strings.ContainsRune(unreserved, rune(segment[i])) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return segment
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(segment) * 3)
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if strings.ContainsRune(unreserved, rune(c)) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xF])
	}
	return b.String()
}

// GetURIPath returns the canonical URI path from the URL, single-encoded
// per segment and with consecutive "/" collapsed. "." and ".." segments
// are passed through literally — S3 never resolves them (spec §4.1).
// Reference: AWS SDK v4 signer internal/v4/util.go GetURIPath, generalized
// for single percent-encoding per spec §4.1/§9 (REDESIGN FLAG: the
// original and the teacher leave the path unescaped).
func GetURIPath(u *url.URL) string {
	var rawPath string

	if len(u.Opaque) > 0 {
		const schemeSep, pathSep, queryStart = "//", "/", "?"
		opaque := u.Opaque

		if idx := strings.Index(opaque, queryStart); idx >= 0 {
			opaque = opaque[:idx]
		}
		if strings.Index(opaque, schemeSep) == 0 {
			opaque = opaque[len(schemeSep):]
		}
		if idx := strings.Index(opaque, pathSep); idx >= 0 {
			rawPath = opaque[idx:]
		}
	} else {
		rawPath = u.Path
	}

	if len(rawPath) == 0 {
		return "/"
	}

	segments := strings.Split(rawPath, "/")
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = EscapePathSegment(seg)
	}

	path := strings.Join(escaped, "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	if path == "" {
		return "/"
	}
	return path
}
