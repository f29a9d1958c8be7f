package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/dirharvest/internal/crawler"
	"github.com/nao1215/dirharvest/internal/model"
)

// DefaultPoolSize is the number of categories crawled concurrently.
const DefaultPoolSize = 10

// Harvester performs the per-level crawl work. *crawler.Crawler implements it.
type Harvester interface {
	// DiscoverCategories lists the categories found at rootURL.
	DiscoverCategories(ctx context.Context, rootURL string) []model.Category

	// Paginate collects every record of the category starting at startURL.
	Paginate(ctx context.Context, startURL string) crawler.PageResult
}

// ProgressFunc is called once per completed category with the number of
// completed categories so far and the total. It is called from the goroutine
// that completed the category, so it must be safe for concurrent use.
type ProgressFunc func(done, total int, stats model.CategoryStats)

// Orchestrator runs a harvest from a directory root.
type Orchestrator struct {
	// harvester does the discovery and pagination work.
	harvester Harvester

	// poolSize is the maximum number of concurrent category tasks.
	poolSize int

	// logger is used for run-level logging.
	logger *slog.Logger

	// progress is notified as categories complete. May be nil.
	progress ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithPoolSize sets the maximum number of concurrent category tasks.
// Default is 10 if not specified.
func WithPoolSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithProgress sets a callback invoked after each category completes.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// New creates an Orchestrator around h.
func New(h Harvester, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		harvester: h,
		poolSize:  DefaultPoolSize,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run discovers the categories under rootURL, crawls all of them and returns
// the aggregate document together with run statistics.
//
// Run never fails: transport and extraction problems are absorbed at the
// level where they occur. If ctx is cancelled, the categories not yet
// finished are recorded with whatever was collected so far.
func (o *Orchestrator) Run(ctx context.Context, rootURL string) (*model.AggregateDocument, model.RunStats) {
	stats := model.RunStats{
		RootURL:   rootURL,
		StartedAt: time.Now(),
	}

	o.logger.Info("starting harvest", "url", rootURL, "pool_size", o.poolSize)

	categories := o.harvester.DiscoverCategories(ctx, rootURL)
	if len(categories) == 0 {
		o.logger.Warn("no categories discovered", "url", rootURL)
	}

	col := o.crawlCategories(ctx, categories)

	stats.FinishedAt = time.Now()
	stats.Categories = col.Stats()
	doc := col.Document()

	o.logger.Info("harvest complete",
		"url", rootURL,
		"categories", doc.Len(),
		"records", doc.RecordCount(),
		"elapsed", stats.Elapsed(),
	)

	return doc, stats
}
