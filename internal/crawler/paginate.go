package crawler

import (
	"context"

	"github.com/nao1215/dirharvest/internal/extract"
	"github.com/nao1215/dirharvest/internal/model"
)

// PageResult is the outcome of paginating one category.
type PageResult struct {
	// Records are the summary records in source order across pages.
	Records model.CrawlResult

	// Pages is the number of listing pages fetched successfully.
	Pages int

	// Stop is why pagination ended.
	Stop model.StopReason
}

// Enriched returns how many records carry details.
func (r PageResult) Enriched() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Enriched() {
			n++
		}
	}
	return n
}

// Paginate walks the listing pages of one category starting at startURL.
//
// Each page's items are extracted in document order; every item with a
// detail link is enriched before the next item is processed. The loop stops
// when there is no next link, when the next link was already visited, when
// the page ceiling is reached, or when a page cannot be fetched or has no
// listing container. In every case the records collected so far are kept.
func (c *Crawler) Paginate(ctx context.Context, startURL string) PageResult {
	result := PageResult{Records: model.CrawlResult{}}
	visited := map[string]bool{normalizeURL(startURL): true}
	currentURL := startURL

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("pagination cancelled", "url", currentURL, "pages", result.Pages)
			result.Stop = model.StopCancelled
			return result
		}

		doc, err := c.fetch(ctx, currentURL)
		if err != nil {
			c.logger.Warn("listing fetch failed", "url", currentURL, "error", err)
			result.Stop = model.StopFetchError
			return result
		}

		page, err := extract.Parse(doc.Body, currentURL)
		if err != nil {
			c.logger.Warn("listing page could not be parsed", "url", currentURL, "error", err)
			result.Stop = model.StopFetchError
			return result
		}

		items, found := page.Items(c.contracts.Listing)
		if !found {
			c.logger.Info("listing container not found", "url", currentURL)
			result.Stop = model.StopNoListing
			return result
		}
		result.Pages++

		for _, item := range items {
			// An item with no locatable fields is kept as an empty record
			// so that record positions match the listing.
			rec := model.NewRecord(page.ExtractFrom(item, c.contracts.Listing.Fields))
			if link, ok := rec.Link(); ok {
				rec.Details = c.Enrich(ctx, link)
			}
			result.Records = append(result.Records, rec)
		}

		next := page.NextLink(c.contracts.NextLink)
		if next == "" {
			result.Stop = model.StopExhausted
			return result
		}
		key := normalizeURL(next)
		if visited[key] {
			c.logger.Warn("next link already visited, stopping", "url", currentURL, "next", next)
			result.Stop = model.StopCycle
			return result
		}
		if result.Pages >= c.maxPages {
			c.logger.Warn("pagination ceiling reached",
				"url", currentURL,
				"next", next,
				"ceiling", c.maxPages,
			)
			result.Stop = model.StopCeiling
			return result
		}

		c.logger.Debug("following next page", "url", currentURL, "next", next)
		visited[key] = true
		currentURL = next
	}
}
