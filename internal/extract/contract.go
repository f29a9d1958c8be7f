package extract

import (
	"errors"
	"fmt"

	"github.com/nao1215/dirharvest/internal/model"
)

// ErrReservedFieldName is returned when a listing field would collide with
// the key under which detail fields are nested.
var ErrReservedFieldName = errors.New("reserved field name")

// Locator describes how to find one value in a document tree.
type Locator struct {
	// Container is the CSS selector of the element holding the value.
	// The first match is used.
	Container string `yaml:"container"`

	// Value is an optional CSS selector evaluated inside the container.
	// The first match is used. Empty means the container itself.
	Value string `yaml:"value,omitempty"`

	// Attr names the attribute to read. Empty means text content.
	Attr string `yaml:"attr,omitempty"`

	// Multiline joins the element's text nodes with newlines instead of
	// concatenating them.
	Multiline bool `yaml:"multiline,omitempty"`
}

// Field is a named value with a fallback chain of locators.
// The first locator yielding a non-empty value wins.
type Field struct {
	Name     string    `yaml:"name"`
	Locators []Locator `yaml:"locators"`
}

// Contract is an ordered list of fields to extract.
type Contract []Field

// ListContract describes a repeated structure: a container, the item
// elements inside it, and the fields extracted from each item.
type ListContract struct {
	// Container is the CSS selector of the list container.
	Container string `yaml:"container"`

	// Item is the CSS selector of one item inside the container.
	Item string `yaml:"item"`

	// Fields are extracted relative to each item.
	Fields Contract `yaml:"fields,omitempty"`
}

// CategoryContract describes the category index on the directory root.
type CategoryContract struct {
	// Container is the CSS selector of the categories container.
	Container string `yaml:"container"`

	// Item is the CSS selector of one category entry.
	Item string `yaml:"item"`

	// Link is the CSS selector of the anchor inside an entry.
	Link string `yaml:"link"`
}

// Contracts bundles every extraction contract used by a crawl.
type Contracts struct {
	Categories CategoryContract `yaml:"categories"`
	Listing    ListContract     `yaml:"listing"`
	Detail     Contract         `yaml:"detail,omitempty"`

	// NextLink is the CSS selector of the "next page" link. Its href is
	// followed during pagination.
	NextLink string `yaml:"nextLink,omitempty"`
}

// DefaultNextLink matches the relation-typed pagination link in the page head.
const DefaultNextLink = "link[rel=next]"

// valueField builds the common "div.wpbdp-field-<x> div.value" locator.
func valueField(name, class string) Field {
	return Field{
		Name: name,
		Locators: []Locator{{
			Container: "div.wpbdp-field-" + class,
			Value:     "div.value",
		}},
	}
}

// DefaultContracts returns the contracts for the eu-startups.com directory.
func DefaultContracts() Contracts {
	longDesc := Locator{Container: "div.wpbdp-field-long_business_description", Value: "div.value"}
	shortDesc := Locator{Container: "div.wpbdp-field-business_description", Value: "div.value"}
	longDescML := longDesc
	longDescML.Multiline = true
	shortDescML := shortDesc
	shortDescML.Multiline = true

	return Contracts{
		Categories: CategoryContract{
			Container: "div#wpbdp-categories",
			Item:      "li",
			Link:      "a",
		},
		Listing: ListContract{
			Container: "div#wpbdp-listings-list",
			Item:      "div.wpbdp-listing",
			Fields: Contract{
				{Name: model.FieldTitle, Locators: []Locator{{Container: "h3"}}},
				{Name: model.FieldLink, Locators: []Locator{{Container: "a", Attr: "href"}}},
				{Name: model.FieldDescription, Locators: []Locator{{Container: "div.listing-title"}}},
				{Name: model.FieldThumbnail, Locators: []Locator{{Container: "div.listing-thumbnail", Value: "img", Attr: "src"}}},
				valueField(model.FieldBusinessName, "business_name"),
				{Name: model.FieldCategory, Locators: []Locator{{Container: "div.wpbdp-field-category", Value: "div.value a"}}},
				valueField(model.FieldLocation, "based_in"),
				valueField(model.FieldTags, "tags"),
				valueField(model.FieldFounded, "founded"),
			},
		},
		Detail: Contract{
			{Name: model.FieldBusinessDescription, Locators: []Locator{longDesc, shortDesc}},
			{Name: model.FieldLongBusinessDescription, Locators: []Locator{longDescML, shortDescML}},
			valueField(model.FieldTotalFunding, "total_funding"),
			valueField(model.FieldFounded, "founded"),
			valueField(model.FieldWebsite, "website"),
			valueField(model.FieldStatus, "company_status"),
			{Name: model.FieldLinkedIn, Locators: []Locator{{Container: "div.social-field.linkedin", Value: "a", Attr: "href"}}},
		},
		NextLink: DefaultNextLink,
	}
}

// Merge returns c with every non-empty part of override applied on top.
func (c Contracts) Merge(override Contracts) Contracts {
	out := c
	if override.Categories.Container != "" {
		out.Categories.Container = override.Categories.Container
	}
	if override.Categories.Item != "" {
		out.Categories.Item = override.Categories.Item
	}
	if override.Categories.Link != "" {
		out.Categories.Link = override.Categories.Link
	}
	if override.Listing.Container != "" {
		out.Listing.Container = override.Listing.Container
	}
	if override.Listing.Item != "" {
		out.Listing.Item = override.Listing.Item
	}
	if len(override.Listing.Fields) > 0 {
		out.Listing.Fields = override.Listing.Fields
	}
	if len(override.Detail) > 0 {
		out.Detail = override.Detail
	}
	if override.NextLink != "" {
		out.NextLink = override.NextLink
	}
	return out
}

// Validate reports listing fields that cannot be serialized unambiguously.
// A listing field named model.DetailsKey would be written next to the
// nested detail object under the same key.
func (c Contracts) Validate() error {
	for _, f := range c.Listing.Fields {
		if f.Name == model.DetailsKey {
			return fmt.Errorf("%w: listing field %q", ErrReservedFieldName, f.Name)
		}
	}
	return nil
}
