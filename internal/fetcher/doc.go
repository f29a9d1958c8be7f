// Package fetcher retrieves single remote documents over HTTP.
//
// The Fetcher is a pure network primitive: one GET per call, no retries, no
// caching and no state kept between calls. Every failure, whether the
// transport failed or the server answered with a non-success status, is
// reported as a *FetchError that matches ErrTransport with errors.Is.
//
// # Transport
//
// NewHTTPClient builds the underlying *http.Client. Timeouts are delegated
// to the client. When a SOCKS5 proxy address is configured, connections are
// dialed through golang.org/x/net/proxy.
//
// # Politeness
//
// An optional minimum delay between requests is enforced with a token bucket
// from golang.org/x/time/rate shared by all goroutines using one Fetcher.
// It is disabled by default.
package fetcher
