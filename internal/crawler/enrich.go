package crawler

import (
	"context"
	"fmt"

	"github.com/nao1215/dirharvest/internal/extract"
	"github.com/nao1215/dirharvest/internal/model"
)

// Enrich fetches a detail page and extracts the detail fields. Any failure,
// including a panic during extraction, yields empty Fields and is logged;
// enrichment never aborts the listing traversal.
func (c *Crawler) Enrich(ctx context.Context, detailURL string) (fields model.Fields) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("detail extraction panicked", "url", detailURL, "panic", fmt.Sprint(r))
			fields = model.NewFields()
		}
	}()

	doc, err := c.fetch(ctx, detailURL)
	if err != nil {
		c.logger.Warn("detail fetch failed", "url", detailURL, "error", err)
		return model.NewFields()
	}

	page, err := extract.Parse(doc.Body, detailURL)
	if err != nil {
		c.logger.Warn("detail page could not be parsed", "url", detailURL, "error", err)
		return model.NewFields()
	}

	return page.Extract(c.contracts.Detail)
}
