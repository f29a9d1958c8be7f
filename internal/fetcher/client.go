package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains so a redirect loop fails the fetch.
const maxRedirects = 10

// NewHTTPClient creates the HTTP client used for all fetches.
// When proxyAddress is non-empty, every connection is dialed through that
// SOCKS5 proxy. The timeout applies to each request as a whole.
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyAddress != "" {
		dialer, err := socksDialer(proxyAddress)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dialer
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}, nil
}

// socksDialer builds a context-aware dial function for a SOCKS5 proxy.
// Accepted forms are "host:port" and "socks5://[user:pass@]host:port".
func socksDialer(address string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	host, auth, err := parseProxyAddress(address)
	if err != nil {
		return nil, err
	}

	d, err := proxy.SOCKS5("tcp", host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// parseProxyAddress splits a proxy address into host:port and optional auth.
func parseProxyAddress(address string) (string, *proxy.Auth, error) {
	var auth *proxy.Auth
	hostPort := address

	if strings.Contains(address, "://") {
		u, err := url.Parse(address)
		if err != nil || u.Scheme != "socks5" {
			return "", nil, ErrInvalidProxyAddress
		}
		hostPort = u.Host
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil || host == "" {
		return "", nil, ErrInvalidProxyAddress
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", nil, ErrInvalidProxyAddress
	}

	return hostPort, auth, nil
}
