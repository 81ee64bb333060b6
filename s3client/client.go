// Package s3client is the thin object/bucket surface this module uses
// to exercise transport.Middleware and multipart.Engine end to end.
// It has no bucket/object domain model of its own — signing and
// multipart upload are this project's subject; a full S3 client is an
// external collaborator (spec §1).
//
// Grounded on eteran-silo/internal/silo/storage_engine.go's small
// verb-shaped StorageEngine interface (Put/Get/Copy/Delete over
// bucket+hash) for the method surface, and on the couchbase-tools-common
// and Seagate-cloudfuse client wrapper style (methods returning a typed
// result alongside an error, context-first) for signatures.
package s3client

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/haltia-io/s3gate/multipart"
	"github.com/haltia-io/s3gate/s3err"
	"github.com/haltia-io/s3gate/xmlutil"
)

// Object describes a successfully retrieved object.
type Object struct {
	Body          io.ReadCloser
	ContentLength int64
	ETag          string
}

// Client is a minimal S3-compatible object client. Its Transport should
// be (or wrap) a *transport.Middleware so every request is signed.
type Client struct {
	HTTP     *http.Client
	Endpoint string // scheme://host, e.g. "https://bucket.s3.amazonaws.com"
}

// New builds a Client over httpClient, whose Transport is expected to
// be a signing transport.Middleware.
func New(httpClient *http.Client, endpoint string) *Client {
	return &Client{HTTP: httpClient, Endpoint: endpoint}
}

func (c *Client) url(key string) string {
	return fmt.Sprintf("%s/%s", c.Endpoint, key)
}

// Get retrieves an object. The caller must close Object.Body.
func (c *Client) Get(ctx context.Context, key string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(key), nil)
	if err != nil {
		return nil, &s3err.ProtocolError{Op: "get", Cause: err}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &s3err.TransportError{Op: "get", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, &s3err.ProtocolError{Op: "get", Cause: readAPIErrorOrStatus(resp)}
	}

	return &Object{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		ETag:          resp.Header.Get("ETag"),
	}, nil
}

// Head retrieves object metadata without a body.
func (c *Client) Head(ctx context.Context, key string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url(key), nil)
	if err != nil {
		return nil, &s3err.ProtocolError{Op: "head", Cause: err}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &s3err.TransportError{Op: "head", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &s3err.ProtocolError{Op: "head", Cause: readAPIErrorOrStatus(resp)}
	}

	return &Object{
		ContentLength: resp.ContentLength,
		ETag:          resp.Header.Get("ETag"),
	}, nil
}

// ListEntry is one object in a List response.
type ListEntry struct {
	Key  string
	ETag string
	Size int64
}

// List lists objects under prefix. It issues a single unpaginated
// ListObjectsV2 request — pagination is out of this client's minimal
// scope (spec §1: "treated as external collaborator only").
func (c *Client) List(ctx context.Context, prefix string) ([]ListEntry, error) {
	url := fmt.Sprintf("%s?list-type=2&prefix=%s", c.Endpoint, prefix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &s3err.ProtocolError{Op: "list", Cause: err}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &s3err.TransportError{Op: "list", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &s3err.ProtocolError{Op: "list", Cause: readAPIErrorOrStatus(resp)}
	}

	return decodeListResult(resp.Body)
}

// Put uploads a single object in one request.
func (c *Client) Put(ctx context.Context, key string, body []byte) (etag string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(key), bytes.NewReader(body))
	if err != nil {
		return "", &s3err.ProtocolError{Op: "put", Cause: err}
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &s3err.TransportError{Op: "put", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &s3err.ProtocolError{Op: "put", Cause: readAPIErrorOrStatus(resp)}
	}

	return resp.Header.Get("ETag"), nil
}

// PutMultipart uploads the contents of src via a multipart.Engine at
// the engine's default part size and concurrency.
func (c *Client) PutMultipart(ctx context.Context, key string, src io.Reader) (etag string, err error) {
	engine := multipart.NewEngine(c.HTTP, c.Endpoint)

	upload, err := engine.Create(ctx, key)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(upload, src); err != nil {
		_ = upload.Abort(ctx)
		return "", &s3err.TransportError{Op: "put multipart", Cause: err}
	}

	return upload.Close(ctx)
}

// listBucketResult mirrors the subset of ListObjectsV2's response body
// this client cares about.
type listBucketResult struct {
	Contents []struct {
		Key  string `xml:"Key"`
		ETag string `xml:"ETag"`
		Size int64  `xml:"Size"`
	} `xml:"Contents"`
}

func decodeListResult(r io.Reader) ([]ListEntry, error) {
	var result listBucketResult
	if err := xml.NewDecoder(r).Decode(&result); err != nil {
		return nil, &s3err.ProtocolError{Op: "decode list result", Cause: err}
	}

	entries := make([]ListEntry, 0, len(result.Contents))
	for _, c := range result.Contents {
		entries = append(entries, ListEntry{Key: c.Key, ETag: c.ETag, Size: c.Size})
	}
	return entries, nil
}

func readAPIErrorOrStatus(resp *http.Response) error {
	apiErr, ok, err := xmlutil.ReadError(resp.Body)
	if err != nil || !ok {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	return apiErr
}
