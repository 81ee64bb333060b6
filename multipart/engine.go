// Package multipart implements the multipart upload state machine of
// spec §4.5 on top of a signing http.RoundTripper.
//
// Grounded on three sources: original_source/src/s3.cpp's
// MultipartStream (the buffer/detach/dispatch/finish shape of write and
// close), scttfrdmn-objectfs/internal/storage/s3/multipart_state.go's
// UploadPart/MultipartUploadStatus bookkeeping (adapted here to pure
// in-memory state, since this package has no persisted state), and
// other_examples/tus-tusd__s3store.go's uploadParts concurrent
// part-upload loop (adapted to use golang.org/x/sync/semaphore and
// errgroup instead of a hand-rolled WaitGroup and shared error
// variable).
package multipart

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/haltia-io/s3gate/s3err"
	"github.com/haltia-io/s3gate/xmlutil"
)

// DefaultPartSize is the buffer size at which a part is dispatched
// (spec §4.5: "default 8 MiB").
const DefaultPartSize = 8 * 1024 * 1024

// DefaultConcurrency bounds in-flight part uploads (spec §4.5: "at most
// K in-flight part uploads (default K=4)").
const DefaultConcurrency = 4

// Engine issues multipart upload requests through an http.Client whose
// Transport is expected to be (or wrap) a signing transport.Middleware.
type Engine struct {
	Client      *http.Client
	Endpoint    string // scheme://host, e.g. "https://bucket.s3.amazonaws.com"
	PartSize    int
	Concurrency int
}

// NewEngine builds an Engine with spec-mandated defaults.
func NewEngine(client *http.Client, endpoint string) *Engine {
	return &Engine{
		Client:      client,
		Endpoint:    endpoint,
		PartSize:    DefaultPartSize,
		Concurrency: DefaultConcurrency,
	}
}

// Create issues CreateMultipartUpload and returns an Upload positioned
// at state Open (spec §4.5: "Init -- CreateMultipartUpload OK --> Open").
func (e *Engine) Create(ctx context.Context, key string) (*Upload, error) {
	url := fmt.Sprintf("%s/%s?uploads", e.Endpoint, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, &s3err.MultipartError{Op: "create multipart upload", Cause: err}
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, &s3err.MultipartError{Op: "create multipart upload", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &s3err.MultipartError{Op: "create multipart upload", Cause: readAPIError(resp)}
	}

	uploadID, err := xmlutil.ReadElement(resp.Body, "UploadId")
	if err != nil {
		return nil, &s3err.MultipartError{Op: "create multipart upload", Cause: err}
	}

	partSize := e.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return newUpload(e, key, uploadID, partSize, concurrency), nil
}

func readAPIError(resp *http.Response) error {
	apiErr, ok, err := xmlutil.ReadError(resp.Body)
	if err != nil {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	if !ok {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	return apiErr
}

func completionBody(parts []completedPart) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<CompleteMultipartUpload xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	for _, p := range parts {
		fmt.Fprintf(&buf, "<Part><PartNumber>%d</PartNumber><ETag>%s</ETag></Part>", p.number, p.etag)
	}
	buf.WriteString(`</CompleteMultipartUpload>`)
	return buf.Bytes()
}
