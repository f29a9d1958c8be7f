package fetcher

import (
	"errors"
	"fmt"
)

// Fetch errors.
//
// Design decision: We keep one umbrella sentinel (ErrTransport) so that the
// crawl layer can tell "the page could not be fetched" apart from "the page
// was fetched but a field was missing", which is not an error at all.
var (
	// ErrTransport matches every fetch failure.
	ErrTransport = errors.New("fetch failed")

	// ErrStatus is wrapped when the server answered with a non-2xx status.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy address cannot be parsed.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port or socks5://[user:pass@]host:port")
)

// FetchError describes one failed fetch.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrTransport.
func (e *FetchError) Is(target error) bool {
	return target == ErrTransport
}
