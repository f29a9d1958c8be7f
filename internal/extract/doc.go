// Package extract isolates knowledge of the directory's HTML markup from the
// crawl control flow.
//
// A Contract is an ordered list of fields, each described by one or more
// Locators (container selector, optional value selector, attribute or text).
// Extraction is best effort: a field that cannot be located is omitted from
// the resulting model.Fields, it is never an error and never a placeholder.
//
// Design decision: We parse with golang.org/x/net/html and evaluate selectors
// with goquery because:
//  1. x/net/html tolerates the malformed markup common on directory sites
//  2. CSS selectors express "container, then value inside it" directly
//  3. Contracts stay data, so they can be overridden from the config file
package extract
