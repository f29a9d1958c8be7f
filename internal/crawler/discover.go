package crawler

import (
	"context"

	"github.com/nao1215/dirharvest/internal/extract"
	"github.com/nao1215/dirharvest/internal/model"
)

// DiscoverCategories fetches the directory root and returns its categories
// in document order. A failed fetch or a missing categories container yields
// an empty slice; it is logged but never fatal. Entries without a link are
// skipped, and a repeated category name keeps its first URL.
func (c *Crawler) DiscoverCategories(ctx context.Context, rootURL string) []model.Category {
	doc, err := c.fetch(ctx, rootURL)
	if err != nil {
		c.logger.Warn("category discovery failed", "url", rootURL, "error", err)
		return []model.Category{}
	}

	page, err := extract.Parse(doc.Body, rootURL)
	if err != nil {
		c.logger.Warn("category page could not be parsed", "url", rootURL, "error", err)
		return []model.Category{}
	}

	found, ok := page.Categories(c.contracts.Categories)
	if !ok {
		c.logger.Warn("categories container not found",
			"url", rootURL,
			"selector", c.contracts.Categories.Container,
		)
		return []model.Category{}
	}

	seen := make(map[string]bool, len(found))
	categories := make([]model.Category, 0, len(found))
	for _, cat := range found {
		if seen[cat.Name] {
			c.logger.Debug("duplicate category skipped", "category", cat.Name, "url", cat.URL)
			continue
		}
		seen[cat.Name] = true
		categories = append(categories, cat)
	}

	c.logger.Info("categories discovered", "url", rootURL, "count", len(categories))
	return categories
}
