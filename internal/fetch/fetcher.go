package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/craftstage/internal/version"
)

// maxBodySize bounds a single response body: the largest runtime files are
// a few hundred megabytes.
const maxBodySize int64 = 2 << 30

var (
	// ErrTransport marks network failures and non-success responses.
	ErrTransport = errors.New("transport failure")
	// errBodyTooLarge is returned when a body exceeds maxBodySize.
	errBodyTooLarge = errors.New("response body too large")
)

// Fetcher returns the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher implements Fetcher with a shared http.Client.
type HTTPFetcher struct {
	// client is reused by every request so connections are pooled.
	client *http.Client
	// userAgent is sent with every request.
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithClient replaces the underlying client, e.g. with an httptest client.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewHTTPFetcher builds a fetcher with its own connection pool.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // Stdlib guarantees the type.
	transport.MaxIdleConnsPerHost = 16

	f := &HTTPFetcher{
		client:    &http.Client{Transport: transport},
		userAgent: version.UserAgent(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET and returns the whole body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %w", ErrTransport, url, err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	response, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrTransport, url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: unexpected status %s", ErrTransport, url, response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTransport, url, err)
	}

	if int64(len(body)) > maxBodySize {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, url, errBodyTooLarge)
	}

	return body, nil
}
