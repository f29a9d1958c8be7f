package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize int64 = 10 * 1024 * 1024

// DefaultUserAgent identifies harvester traffic.
const DefaultUserAgent = "dirharvest/1.0 (+https://github.com/nao1215/dirharvest)"

// Document is the raw result of a successful fetch.
type Document struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP response status.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Body is the response body, truncated to the configured maximum size.
	Body []byte

	// Truncated is true when the response was longer than the maximum size.
	Truncated bool
}

// Fetcher retrieves one remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// HTTPFetcher is the production Fetcher.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	limiter     *rate.Limiter
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithRequestDelay enforces a minimum delay between consecutive requests
// made through this fetcher, across all goroutines. Zero disables it.
func WithRequestDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			f.limiter = nil
		}
	}
}

// New creates an HTTPFetcher using client.
func New(client *http.Client, opts ...Option) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one GET request. Any transport failure or non-2xx status
// yields a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrStatus, resp.Status),
		}
	}

	// Read one byte past the cap to tell a full-sized body from a cut one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	truncated := int64(len(body)) > f.maxBodySize
	if truncated {
		body = body[:f.maxBodySize]
	}

	return &Document{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Truncated:   truncated,
	}, nil
}
