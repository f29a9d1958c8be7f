package model

// Category is a top-level grouping (a country on the default directory)
// under which listings are organized. It is immutable once discovered.
type Category struct {
	// Name is the display name of the category, used as the key in the
	// aggregate document.
	Name string `json:"name"`

	// URL is the absolute URL of the category's first listing page.
	URL string `json:"url"`
}
