package s3client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientPut(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "hello", string(body))
		w.Header().Set("ETag", "put-etag")
		w.WriteHeader(http.StatusOK)
	})

	client := New(ts.Client(), ts.URL)
	etag, err := client.Put(context.Background(), "bucket/key", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "put-etag", etag)
}

func TestClientGet(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("ETag", "get-etag")
		fmt.Fprint(w, "payload")
	})

	client := New(ts.Client(), ts.URL)
	obj, err := client.Get(context.Background(), "bucket/key")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
	require.Equal(t, "get-etag", obj.ETag)
}

func TestClientGetErrorStatus(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
	})

	client := New(ts.Client(), ts.URL)
	_, err := client.Get(context.Background(), "bucket/missing")
	require.Error(t, err)
}

func TestClientHead(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("ETag", "head-etag")
		w.Header().Set("Content-Length", "42")
	})

	client := New(ts.Client(), ts.URL)
	obj, err := client.Head(context.Background(), "bucket/key")
	require.NoError(t, err)
	require.Equal(t, "head-etag", obj.ETag)
}

func TestClientList(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("list-type"))
		fmt.Fprint(w, `<ListBucketResult><Contents><Key>a.txt</Key><ETag>e1</ETag><Size>10</Size></Contents><Contents><Key>b.txt</Key><ETag>e2</ETag><Size>20</Size></Contents></ListBucketResult>`)
	})

	client := New(ts.Client(), ts.URL)
	entries, err := client.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a.txt", entries[0].Key)
	require.Equal(t, int64(20), entries[1].Size)
}

func TestClientPutMultipart(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.Method == http.MethodPost && q.Has("uploads"):
			fmt.Fprint(w, `<InitiateMultipartUploadResult><UploadId>U1</UploadId></InitiateMultipartUploadResult>`)
		case r.Method == http.MethodPut && q.Has("partNumber"):
			w.Header().Set("ETag", "part-etag")
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && q.Has("uploadId"):
			fmt.Fprint(w, `<CompleteMultipartUploadResult><ETag>final</ETag></CompleteMultipartUploadResult>`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	client := New(ts.Client(), ts.URL)
	etag, err := client.PutMultipart(context.Background(), "bucket/key", bytes.NewReader(make([]byte, 1024)))
	require.NoError(t, err)
	require.Equal(t, "final", etag)
}
