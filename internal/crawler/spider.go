package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nao1215/dirharvest/internal/extract"
	"github.com/nao1215/dirharvest/internal/fetcher"
)

// DefaultMaxPages is the pagination ceiling per category.
const DefaultMaxPages = 1000

// Crawler walks a category-organized directory.
//
// Design decision: Discovery, pagination and enrichment are methods on one
// type rather than separate types because they share the fetcher, the
// contracts and the logger, and none of them keeps state between calls.
type Crawler struct {
	// fetcher performs every network request.
	fetcher fetcher.Fetcher

	// contracts locate categories, listing items, detail fields and next links.
	contracts extract.Contracts

	// maxPages is the hard ceiling of listing pages fetched per category.
	maxPages int

	// logger receives diagnostics for recovered failures.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithContracts sets the extraction contracts.
func WithContracts(c extract.Contracts) Option {
	return func(cr *Crawler) {
		cr.contracts = c
	}
}

// WithMaxPages sets the pagination ceiling. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(cr *Crawler) {
		if n > 0 {
			cr.maxPages = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cr *Crawler) {
		if logger != nil {
			cr.logger = logger
		}
	}
}

// New creates a Crawler that fetches through f.
func New(f fetcher.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   f,
		contracts: extract.DefaultContracts(),
		maxPages:  DefaultMaxPages,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxPages returns the configured pagination ceiling.
func (c *Crawler) MaxPages() int {
	return c.maxPages
}

// normalizeURL normalizes a URL for cycle detection.
// The fragment is dropped, scheme and host are lower-cased and an empty path
// is treated as "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// fetch retrieves one page and warns when its body was cut at the size cap.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (*fetcher.Document, error) {
	doc, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if doc.Truncated {
		c.logger.Warn("page body truncated at size limit", "url", pageURL, "bytes", len(doc.Body))
	}
	return doc, nil
}
