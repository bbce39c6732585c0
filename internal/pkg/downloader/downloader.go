package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/progressbar"
)

const (
	// DefaultAttempts ...
	DefaultAttempts = 3
	// DefaultBackoff is the first retry wait, doubled on every attempt
	DefaultBackoff = 700 * time.Millisecond
	// PartExtension marks in-progress downloads
	PartExtension = ".part"
)

// Request is one asset to stream
type Request struct {
	URL     string
	Headers map[string]string
	// Title is shown in the progress bar
	Title string
}

// Fingerprint identifies downloaded content: total size plus a hash over the stream
type Fingerprint struct {
	Size int64
	Hash uint64
}

// String ...
func (f Fingerprint) String() string {
	return fmt.Sprintf("%d:%016x", f.Size, f.Hash)
}

// IsZero ...
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// FetchResult ...
type FetchResult struct {
	Path         string
	BytesWritten int64
	Fingerprint  Fingerprint
}

// StatusError is a non 2xx answer from the media host
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status code %d", e.URL, e.StatusCode)
}

// Temporary reports whether retrying may help
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// TransientFetchError is a fetch that still failed after every attempt.
// The asset is skipped.
type TransientFetchError struct {
	URL      string
	Attempts int
	Err      error
}

// Error implements error interface
func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap ...
func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// WriteError means the destination could not be written. Unlike network
// errors it is not retried.
type WriteError struct {
	Path string
	Err  error
}

// Error implements error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap ...
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Fetcher streams assets to disk
type Fetcher struct {
	HTTPClient   *resty.Client
	Attempts     int
	Backoff      time.Duration
	ShowProgress bool
}

// NewFetcher returns a fetcher sending the session cookies with every request
func NewFetcher(cs []*http.Cookie, userAgent string) *Fetcher {
	httpClient := resty.New().
		SetCookies(cs).
		SetTimeout(0).
		SetDoNotParseResponse(true).
		SetLogger(logger.RestyLogger{})
	if userAgent != "" {
		httpClient.SetHeader("User-Agent", userAgent)
	}
	return &Fetcher{
		HTTPClient: httpClient,
		Attempts:   DefaultAttempts,
		Backoff:    DefaultBackoff,
	}
}

// Fetch streams req to a temp file next to dest and renames it to dest only
// once the whole body was written. dest never holds a partial file.
func (f *Fetcher) Fetch(ctx context.Context, req Request, dest string) (FetchResult, error) {
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"."+uuid.NewString()+PartExtension)
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp)
	}()

	var fp Fingerprint
	attempts, err := retry(ctx, f.Attempts, f.Backoff, func() error {
		var err error
		fp, err = f.fetchOnce(ctx, req, tmp)
		return err
	})
	if err != nil {
		var we *WriteError
		if errors.As(err, &we) || errors.Is(err, context.Canceled) {
			return FetchResult{}, err
		}
		return FetchResult{}, &TransientFetchError{URL: req.URL, Attempts: attempts, Err: err}
	}

	if err := os.Rename(tmp, dest); err != nil {
		return FetchResult{}, &WriteError{Path: dest, Err: err}
	}
	return FetchResult{Path: dest, BytesWritten: fp.Size, Fingerprint: fp}, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, req Request, tmp string) (Fingerprint, error) {
	out, err := os.Create(tmp)
	if err != nil {
		return Fingerprint{}, &WriteError{Path: tmp, Err: err}
	}
	defer func() {
		_ = out.Close()
	}()

	r := f.HTTPClient.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	resp, err := r.Get(req.URL)
	if err != nil {
		return Fingerprint{}, err
	}
	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return Fingerprint{}, &StatusError{URL: req.URL, StatusCode: resp.StatusCode()}
	}

	var src io.Reader = body
	if f.ShowProgress {
		bar := progressbar.New(resp.RawResponse.ContentLength, fmt.Sprintf("[ %s ] ", req.Title))
		bar.Start()
		defer bar.Finish()
		src = bar.NewProxyReader(body)
	}

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(fileWriter{out}, h), src)
	if err != nil {
		return Fingerprint{}, err
	}
	if cl := resp.RawResponse.ContentLength; cl >= 0 && n != cl {
		return Fingerprint{}, fmt.Errorf("short body, got %d of %d bytes: %w", n, cl, io.ErrUnexpectedEOF)
	}
	if err := out.Sync(); err != nil {
		return Fingerprint{}, &WriteError{Path: tmp, Err: err}
	}
	return Fingerprint{Size: n, Hash: h.Sum64()}, nil
}

// fileWriter tags write failures so they are told apart from read failures
type fileWriter struct {
	f *os.File
}

func (w fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, &WriteError{Path: w.f.Name(), Err: err}
	}
	return n, nil
}

// retry runs f up to attempts times with doubling backoff. It gives up early
// on errors that another attempt cannot fix. It returns the attempts made.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) (int, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			// backoff but allow cancellation
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-time.After(sleep):
			}
			sleep *= 2

			logger.Infof("retry happen, times: %s, last error: %v", strconv.Itoa(i), err)
		}
		err = f()
		if err == nil || !retryable(err) {
			return i + 1, err
		}
	}
	return attempts, err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var we *WriteError
	if errors.As(err, &we) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
