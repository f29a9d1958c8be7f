// Package crawler implements the three crawl levels of a directory harvest:
// category discovery, listing pagination and detail enrichment.
//
// # Architecture
//
// The Crawler type ties a fetcher.Fetcher to a set of extraction contracts.
// It knows how to walk the directory but not how the markup looks; all
// selectors live in extract.Contracts.
//
// # Components
//
//   - DiscoverCategories: Fetches the directory root and lists categories
//   - Paginate: Walks one category's listing pages following next links
//   - Enrich: Fetches one detail page and extracts the detail fields
//
// # Failure Handling
//
// Every failure below the category level is recovered where it happens:
//   - A failed listing fetch ends pagination and keeps what was collected
//   - A missing listing container ends pagination as end-of-data
//   - A failed detail fetch leaves the record without details
//   - A next link that was already visited ends pagination as a cycle
//
// Termination is guaranteed by the page ceiling. The reason pagination ended
// is reported as a model.StopReason so a truncated category can be told apart
// from a complete one.
//
// # Concurrency
//
// A Crawler holds no mutable state and is safe for concurrent use. Within one
// Paginate call all fetches are sequential: the listing page first, then the
// detail page of each item in document order.
//
// # Usage
//
//	c := crawler.New(fetcher.New(client), crawler.WithMaxPages(1000))
//	categories := c.DiscoverCategories(ctx, "https://www.eu-startups.com/directory/")
//	result := c.Paginate(ctx, categories[0].URL)
package crawler
