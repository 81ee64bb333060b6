package multipart

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/haltia-io/s3gate/s3err"
	"github.com/haltia-io/s3gate/xmlutil"
)

// maxPartNumber is S3's hard cap on parts per upload (spec §3 Part
// invariant: "10000-part cap is hard").
const maxPartNumber = 10000

// status is the upload's lifecycle state (spec §4.5 state machine).
// Adapted from scttfrdmn-objectfs's MultipartUploadStatus, trimmed to
// the four states this spec names.
type status int

const (
	statusOpen status = iota
	statusFinishing
	statusCompleted
	statusAborted
)

// completedPart mirrors original_source/src/s3.cpp's
// MultipartStream::Part: a part number paired with the ETag S3 returned
// for it.
type completedPart struct {
	number int
	etag   string
}

// Upload is a single multipart upload in progress. It is not safe for
// concurrent Write calls; Close/Abort may race with any running part
// tasks and are serialized internally.
type Upload struct {
	engine   *Engine
	key      string
	uploadID string
	partSize int

	mu       sync.Mutex
	status   status
	buf      *bytes.Buffer
	nextNum  int
	sem      *semaphore.Weighted
	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc

	partsMu sync.Mutex
	parts   []completedPart

	finalETag string
}

func newUpload(engine *Engine, key, uploadID string, partSize, concurrency int) *Upload {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	return &Upload{
		engine:   engine,
		key:      key,
		uploadID: uploadID,
		partSize: partSize,
		status:   statusOpen,
		buf:      bytes.NewBuffer(make([]byte, 0, partSize)),
		nextNum:  1,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		group:    group,
		groupCtx: groupCtx,
		cancel:   cancel,
	}
}

// UploadID returns the S3-assigned multipart upload identifier.
func (u *Upload) UploadID() string {
	return u.uploadID
}

// Write implements spec §4.5's write path: append to the active buffer,
// and whenever it becomes exactly full, detach it, assign the next
// partNumber, and dispatch it as a part-upload task. Dispatch acquires
// the bounding semaphore synchronously, before the part task's goroutine
// is started — so once Concurrency parts are already in flight, Write
// itself blocks until one completes, rather than spawning an unbounded
// number of goroutines that sit waiting for a slot (spec §4.5: "further
// writes that would exceed [K in-flight] suspend until a slot frees").
func (u *Upload) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.status != statusOpen {
		return 0, &s3err.MultipartError{UploadID: u.uploadID, Op: "write", Cause: fmt.Errorf("write after close")}
	}

	written := 0
	for len(p) > 0 {
		remaining := u.partSize - u.buf.Len()
		n := len(p)
		if n > remaining {
			n = remaining
		}
		u.buf.Write(p[:n])
		p = p[n:]
		written += n

		if u.buf.Len() == u.partSize {
			if err := u.dispatchLocked(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// dispatchLocked detaches the current buffer, assigns the next
// partNumber, acquires a semaphore slot synchronously (blocking the
// caller, who holds u.mu, until one is free), and enqueues the part
// upload task to run on that already-acquired slot. Caller holds u.mu.
// Part-upload failures (as opposed to slot-acquisition failures) surface
// later, through group.Wait() in Close/Abort.
func (u *Upload) dispatchLocked() error {
	if u.nextNum > maxPartNumber {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "write", Cause: fmt.Errorf("part number would exceed the %d-part cap", maxPartNumber)}
	}

	data := u.buf.Bytes()
	detached := make([]byte, len(data))
	copy(detached, data)
	u.buf.Reset()

	partNumber := u.nextNum
	u.nextNum++

	if err := u.sem.Acquire(u.groupCtx, 1); err != nil {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "acquire part slot", Cause: err}
	}

	u.group.Go(func() error {
		defer u.sem.Release(1)
		return u.sendPart(partNumber, detached)
	})
	return nil
}

// sendPart uploads one part. Concurrency is bounded by dispatchLocked's
// synchronous semaphore acquisition, not here.
func (u *Upload) sendPart(partNumber int, data []byte) error {
	url := fmt.Sprintf("%s/%s?partNumber=%d&uploadId=%s", u.engine.Endpoint, u.key, partNumber, u.uploadID)

	req, err := http.NewRequestWithContext(u.groupCtx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "upload part", Cause: err}
	}
	req.ContentLength = int64(len(data))

	resp, err := u.engine.Client.Do(req)
	if err != nil {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "upload part", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "upload part", Cause: readAPIError(resp)}
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "upload part", Cause: fmt.Errorf("response carried no ETag")}
	}

	u.partsMu.Lock()
	u.parts = append(u.parts, completedPart{number: partNumber, etag: etag})
	u.partsMu.Unlock()

	return nil
}

// Close implements spec §4.5's close path: flush any partial buffer as
// the final (possibly short) part, wait for every part task, build the
// completion XML in ascending partNumber order, and POST it.
//
// Close is idempotent after the first call: subsequent calls observe
// the terminal state without re-issuing any request (spec §4.5
// concurrency invariants).
func (u *Upload) Close(ctx context.Context) (etag string, err error) {
	u.mu.Lock()
	if u.status == statusCompleted {
		u.mu.Unlock()
		return u.completedETag(), nil
	}
	if u.status == statusAborted {
		u.mu.Unlock()
		return "", &s3err.MultipartError{UploadID: u.uploadID, Op: "close", Cause: fmt.Errorf("upload already aborted")}
	}

	var dispatchErr error
	if u.buf.Len() > 0 {
		dispatchErr = u.dispatchLocked()
	}
	u.status = statusFinishing
	u.mu.Unlock()

	if dispatchErr != nil {
		u.mu.Lock()
		u.status = statusAborted
		u.mu.Unlock()
		u.cancel()
		u.group.Wait() // join any part tasks already in flight before aborting
		return "", u.abortAfter(ctx, dispatchErr, false)
	}

	if err := u.group.Wait(); err != nil {
		u.mu.Lock()
		u.status = statusAborted
		u.mu.Unlock()
		return "", u.abortAfter(ctx, err, false)
	}

	sort.Slice(u.parts, func(i, j int) bool { return u.parts[i].number < u.parts[j].number })

	finalETag, err := u.complete(ctx)
	if err != nil {
		u.mu.Lock()
		u.status = statusAborted
		u.mu.Unlock()
		// The commit POST may have reached the server even though this
		// call observed a failure (context canceled mid-request, or a
		// network error after the request was already sent) — the
		// object may already exist (spec §5, §8 scenario 5).
		return "", u.abortAfter(ctx, err, true)
	}

	u.mu.Lock()
	u.status = statusCompleted
	u.finalETag = finalETag
	u.mu.Unlock()

	return finalETag, nil
}

func (u *Upload) complete(ctx context.Context) (string, error) {
	body := completionBody(u.parts)
	url := fmt.Sprintf("%s/%s?uploadId=%s", u.engine.Endpoint, u.key, u.uploadID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &s3err.MultipartError{UploadID: u.uploadID, Op: "complete multipart upload", Cause: err}
	}
	req.ContentLength = int64(len(body))

	resp, err := u.engine.Client.Do(req)
	if err != nil {
		return "", &s3err.MultipartError{UploadID: u.uploadID, Op: "complete multipart upload", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &s3err.MultipartError{UploadID: u.uploadID, Op: "complete multipart upload", Cause: readAPIError(resp)}
	}

	etag, err := xmlutil.ReadElement(resp.Body, "ETag")
	if err != nil {
		return "", &s3err.MultipartError{UploadID: u.uploadID, Op: "complete multipart upload", Cause: err}
	}
	return etag, nil
}

// Abort implements spec §4.5's "any -> error/cancel -> Aborted"
// transition, exposed directly so callers can cancel an in-progress
// upload. Cancels outstanding part tasks and issues
// AbortMultipartUpload best-effort.
func (u *Upload) Abort(ctx context.Context) error {
	u.mu.Lock()
	if u.status == statusCompleted || u.status == statusAborted {
		u.mu.Unlock()
		return nil
	}
	u.status = statusAborted
	u.mu.Unlock()

	u.cancel()
	u.group.Wait()

	if err := u.abort(ctx); err != nil {
		return &s3err.MultipartError{UploadID: u.uploadID, Op: "abort", Cause: err}
	}
	return nil
}

// abortAfter wraps a primary failure in a MultipartError, attempting
// the best-effort abort and attaching its failure (if any) as
// AbortCause without replacing the primary cause (spec §4.5 "Part
// failure": "cancel outstanding part tasks, send DELETE ?uploadId=U
// (best effort), propagate the original error"). uncertain is carried
// through to the MultipartError (spec §5, §8 scenario 5).
//
// The best-effort abort runs on ctx with its cancellation stripped: cause
// may itself be ctx having been canceled, and a "best effort" abort that
// immediately fails for the same reason it was asked to run is not
// actually an effort.
func (u *Upload) abortAfter(ctx context.Context, cause error, uncertain bool) error {
	u.cancel()
	result := &s3err.MultipartError{UploadID: u.uploadID, Op: "close", Cause: cause, Uncertain: uncertain}
	if abortErr := u.abort(context.WithoutCancel(ctx)); abortErr != nil {
		result.AbortCause = abortErr
	}
	return result
}

// abort issues DELETE ?uploadId=U best-effort (spec §4.5 "Part
// failure": "send DELETE ?uploadId=U (best effort)").
func (u *Upload) abort(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s?uploadId=%s", u.engine.Endpoint, u.key, u.uploadID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := u.engine.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func (u *Upload) completedETag() string {
	return u.finalETag
}
