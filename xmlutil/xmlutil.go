// Package xmlutil implements the minimal XML reading this module needs:
// pulling the text content of one named element out of a response body,
// and detecting an S3 <Error> document. It deliberately does not attempt
// general-purpose XML parsing (spec §1 non-goal: "only the elements we
// read are enumerated").
//
// Reference: the streaming xml.Decoder-over-named-elements style used in
// LeeDigitalWorks-zapfs/pkg/metadata/api/*.go and
// LeeDigitalWorks-zapfs/pkg/s3api/s3types/multipart.go, adapted down from
// full struct unmarshaling to a single-element reader.
package xmlutil

import (
	"encoding/xml"
	"fmt"
	"io"
)

// APIError is the decoded form of an S3 <Error> response body.
type APIError struct {
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ReadElement scans r for the first occurrence of the named element and
// returns its text content. It returns an error if the element never
// appears before the stream ends.
func ReadElement(r io.Reader, name string) (string, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", fmt.Errorf("xmlutil: element %q not found", name)
		}
		if err != nil {
			return "", fmt.Errorf("xmlutil: decode error looking for %q: %w", name, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}

		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return "", fmt.Errorf("xmlutil: decode element %q: %w", name, err)
		}
		return text, nil
	}
}

// ReadError peeks at the root element of r. If it is <Error>, the body is
// decoded into an APIError and returned with ok=true. Otherwise ok is
// false and the caller should fall back to its own success-path parsing.
//
// r must support re-reading from the start if the caller needs both the
// error check and a subsequent success parse; callers typically buffer
// the body first (see transport.Middleware) and pass a fresh
// bytes.Reader to both ReadError and ReadElement.
func ReadError(r io.Reader) (*APIError, bool, error) {
	dec := xml.NewDecoder(r)

	tok, err := dec.Token()
	for {
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("xmlutil: decode error probing root element: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "Error" {
				return nil, false, nil
			}
			var apiErr APIError
			if err := dec.DecodeElement(&apiErr, &start); err != nil {
				return nil, false, fmt.Errorf("xmlutil: decode <Error>: %w", err)
			}
			return &apiErr, true, nil
		}
		tok, err = dec.Token()
	}
}
