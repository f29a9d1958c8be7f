// Package main provides the entry point for the dirharvest CLI.
//
// dirharvest crawls a category-organized business directory and writes one
// JSON document mapping every category to its listing records, each
// enriched with the fields of its detail page.
//
// Usage:
//
//	dirharvest crawl [root-url]
//	dirharvest history
//
// See --help for all available options.
package main

// main is the entry point for dirharvest.
func main() {
	Execute()
}
