package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nao1215/dirharvest/internal/crawler"
	"github.com/nao1215/dirharvest/internal/model"
	"golang.org/x/sync/errgroup"
)

// collector accumulates per-category results from concurrent tasks.
// All access goes through mu.
type collector struct {
	mu      sync.Mutex
	results map[string]model.CrawlResult
	stats   map[string]model.CategoryStats
	done    int
}

func newCollector(size int) *collector {
	return &collector{
		results: make(map[string]model.CrawlResult, size),
		stats:   make(map[string]model.CategoryStats, size),
	}
}

// add stores the result of one category and returns the number of
// categories completed so far.
func (c *collector) add(name string, res crawler.PageResult) (model.CategoryStats, int) {
	st := model.CategoryStats{
		Name:     name,
		Records:  len(res.Records),
		Enriched: res.Enriched(),
		Pages:    res.Pages,
		Stop:     res.Stop,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.results[name] = res.Records
	c.stats[name] = st
	c.done++
	return st, c.done
}

// Document builds the aggregate document. It must only be called after every
// task has joined.
func (c *collector) Document() *model.AggregateDocument {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := model.NewAggregateDocument()
	for name, records := range c.results {
		doc.Set(name, records)
	}
	return doc
}

// Stats returns per-category stats sorted by name.
func (c *collector) Stats() []model.CategoryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CategoryStats, 0, len(c.stats))
	for _, st := range c.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// crawlCategories paginates every category concurrently, bounded by the
// pool size, and waits for all of them.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because each category is exactly one task and errgroup already provides
// the bound and the join barrier.
func (o *Orchestrator) crawlCategories(ctx context.Context, categories []model.Category) *collector {
	col := newCollector(len(categories))
	total := len(categories)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.poolSize)

	for _, cat := range categories {
		g.Go(func() error {
			res := o.crawlCategory(ctx, cat)
			st, done := col.add(cat.Name, res)

			o.logger.Info("category completed",
				"category", cat.Name,
				"records", st.Records,
				"pages", st.Pages,
				"stop", st.Stop,
				"done", done,
				"total", total,
			)
			if st.Stop.Truncated() {
				o.logger.Warn("category may be incomplete", "category", cat.Name, "stop", st.Stop)
			}
			if o.progress != nil {
				o.progress(done, total, st)
			}

			// Don't return errors to errgroup; siblings must keep running.
			return nil
		})
	}

	// Tasks always return nil, so Wait only joins.
	_ = g.Wait() //nolint:errcheck // tasks never fail

	return col
}

// crawlCategory runs one category task, turning a panic into an empty result.
func (o *Orchestrator) crawlCategory(ctx context.Context, cat model.Category) (res crawler.PageResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("category task panicked",
				"category", cat.Name,
				"url", cat.URL,
				"panic", fmt.Sprint(r),
			)
			res = crawler.PageResult{Records: model.CrawlResult{}, Stop: model.StopFailed}
		}
	}()

	// Check for cancellation before starting
	select {
	case <-ctx.Done():
		return crawler.PageResult{Records: model.CrawlResult{}, Stop: model.StopCancelled}
	default:
	}

	o.logger.Debug("crawling category", "category", cat.Name, "url", cat.URL)
	res = o.harvester.Paginate(ctx, cat.URL)
	if res.Records == nil {
		res.Records = model.CrawlResult{}
	}
	return res
}
