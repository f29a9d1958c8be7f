package model

import "time"

// StopReason explains why pagination of one category ended.
//
// Design decision: We keep "ceiling reached" distinct from "exhausted" so that
// logs and summaries can tell a truncated category from a complete one.
type StopReason string

const (
	// StopExhausted means the last page had no next link.
	StopExhausted StopReason = "exhausted"

	// StopCeiling means the page ceiling was reached while a next link remained.
	StopCeiling StopReason = "ceiling"

	// StopCycle means the next link pointed at an already visited page.
	StopCycle StopReason = "cycle"

	// StopFetchError means a listing page could not be fetched.
	StopFetchError StopReason = "fetch_error"

	// StopNoListing means the page had no listing container.
	StopNoListing StopReason = "no_listing"

	// StopCancelled means the run context was cancelled between pages.
	StopCancelled StopReason = "cancelled"

	// StopFailed means the category task failed unexpectedly.
	StopFailed StopReason = "failed"
)

// Truncated reports whether the reason indicates that more data may exist
// upstream than was collected.
func (r StopReason) Truncated() bool {
	return r != StopExhausted && r != StopNoListing
}

// CategoryStats summarizes the crawl of one category.
type CategoryStats struct {
	// Name is the category name.
	Name string `json:"name"`

	// Records is the number of summary records collected.
	Records int `json:"records"`

	// Enriched is the number of records that carry details.
	Enriched int `json:"enriched"`

	// Pages is the number of listing pages fetched successfully.
	Pages int `json:"pages"`

	// Stop is why pagination ended.
	Stop StopReason `json:"stop"`
}

// RunStats summarizes one complete run.
type RunStats struct {
	// RootURL is the directory root that was crawled.
	RootURL string `json:"root_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last category task completed.
	FinishedAt time.Time `json:"finished_at"`

	// Categories holds per-category stats sorted by name.
	Categories []CategoryStats `json:"categories"`
}

// Elapsed returns the run duration.
func (s RunStats) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// TotalRecords returns the number of records across all categories.
func (s RunStats) TotalRecords() int {
	n := 0
	for _, c := range s.Categories {
		n += c.Records
	}
	return n
}

// TotalEnriched returns the number of enriched records across all categories.
func (s RunStats) TotalEnriched() int {
	n := 0
	for _, c := range s.Categories {
		n += c.Enriched
	}
	return n
}

// TotalPages returns the number of listing pages fetched across all categories.
func (s RunStats) TotalPages() int {
	n := 0
	for _, c := range s.Categories {
		n += c.Pages
	}
	return n
}
