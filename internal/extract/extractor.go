package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/dirharvest/internal/model"
)

// ErrInvalidBaseURL is returned when a page URL cannot be parsed.
var ErrInvalidBaseURL = errors.New("invalid page URL")

// Page is a parsed document together with the URL it was fetched from.
// The URL is used to resolve relative href and src attributes.
type Page struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse parses an HTML body fetched from pageURL.
func Parse(body []byte, pageURL string) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{
		doc:  goquery.NewDocumentFromNode(root),
		base: base,
	}, nil
}

// Root returns the document root selection.
func (p *Page) Root() *goquery.Selection {
	return p.doc.Selection
}

// Extract applies the contract to the whole document.
func (p *Page) Extract(c Contract) model.Fields {
	return p.ExtractFrom(p.Root(), c)
}

// ExtractFrom applies the contract relative to sel. Fields that cannot be
// located are omitted.
func (p *Page) ExtractFrom(sel *goquery.Selection, c Contract) model.Fields {
	fields := model.NewFields()
	for _, f := range c {
		for _, loc := range f.Locators {
			if v, ok := p.locate(sel, loc); ok {
				fields.Set(f.Name, v)
				break
			}
		}
	}
	return fields
}

// Items returns the item elements of a list contract in document order.
// found is false when the list container itself is absent.
func (p *Page) Items(lc ListContract) (items []*goquery.Selection, found bool) {
	container := p.doc.Find(lc.Container).First()
	if container.Length() == 0 {
		return nil, false
	}
	container.Find(lc.Item).Each(func(_ int, s *goquery.Selection) {
		items = append(items, s)
	})
	return items, true
}

// Categories extracts the category index. Entries without a usable link are
// skipped. found is false when the categories container is absent.
func (p *Page) Categories(cc CategoryContract) (categories []model.Category, found bool) {
	container := p.doc.Find(cc.Container).First()
	if container.Length() == 0 {
		return nil, false
	}
	container.Find(cc.Item).Each(func(_ int, s *goquery.Selection) {
		link := s.Find(cc.Link).First()
		if link.Length() == 0 {
			return
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		resolved := p.ResolveURL(href)
		name := cleanText(link.Text())
		if resolved == "" || name == "" {
			return
		}
		categories = append(categories, model.Category{Name: name, URL: resolved})
	})
	return categories, true
}

// NextLink returns the resolved href of the first element matching selector,
// or "" when there is none.
func (p *Page) NextLink(selector string) string {
	if selector == "" {
		selector = DefaultNextLink
	}
	href, ok := p.doc.Find(selector).First().Attr("href")
	if !ok {
		return ""
	}
	return p.ResolveURL(href)
}

// locate evaluates one locator relative to sel.
func (p *Page) locate(sel *goquery.Selection, loc Locator) (string, bool) {
	if loc.Container == "" {
		return "", false
	}
	target := sel.Find(loc.Container).First()
	if target.Length() == 0 {
		return "", false
	}
	if loc.Value != "" {
		target = target.Find(loc.Value).First()
		if target.Length() == 0 {
			return "", false
		}
	}

	var v string
	switch {
	case loc.Attr != "":
		raw, ok := target.Attr(loc.Attr)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(raw)
		if loc.Attr == "href" || loc.Attr == "src" {
			v = p.ResolveURL(v)
		}
	case loc.Multiline:
		v = multilineText(target)
	default:
		v = cleanText(target.Text())
	}

	return v, v != ""
}

// ResolveURL resolves a possibly relative URL against the page URL.
// Non-navigational schemes and bare fragments resolve to "".
func (p *Page) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.base.ResolveReference(u).String()
}

// cleanText trims surrounding whitespace and normalizes to NFC so that
// visually identical names compare and sort identically.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// multilineText joins the non-blank text nodes under sel with newlines.
func multilineText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.TextNode {
				if t := strings.TrimSpace(n.Data); t != "" {
					parts = append(parts, t)
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(n)
	}
	return norm.NFC.String(strings.Join(parts, "\n"))
}
