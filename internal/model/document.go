package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// AggregateDocument maps category names to their crawl results.
// Keys are always emitted in lexicographic order, regardless of the order in
// which results were inserted.
type AggregateDocument struct {
	results map[string]CrawlResult
}

// NewAggregateDocument creates an empty document.
func NewAggregateDocument() *AggregateDocument {
	return &AggregateDocument{results: make(map[string]CrawlResult)}
}

// Set stores the result for a category, replacing any previous value.
// A nil result is stored as an empty result so the key always serializes
// as an array.
func (d *AggregateDocument) Set(category string, result CrawlResult) {
	if d.results == nil {
		d.results = make(map[string]CrawlResult)
	}
	if result == nil {
		result = CrawlResult{}
	}
	d.results[category] = result
}

// Get returns the result for a category.
func (d *AggregateDocument) Get(category string) (CrawlResult, bool) {
	r, ok := d.results[category]
	return r, ok
}

// Keys returns the category names in lexicographic order.
func (d *AggregateDocument) Keys() []string {
	keys := make([]string, 0, len(d.results))
	for k := range d.results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of categories.
func (d *AggregateDocument) Len() int {
	return len(d.results)
}

// RecordCount returns the total number of records across all categories.
func (d *AggregateDocument) RecordCount() int {
	n := 0
	for _, r := range d.results {
		n += len(r)
	}
	return n
}

// MarshalJSON writes the document with sorted top-level keys.
func (d *AggregateDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(d.results[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document previously written by MarshalJSON.
func (d *AggregateDocument) UnmarshalJSON(data []byte) error {
	d.results = make(map[string]CrawlResult)
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		var result CrawlResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return err
		}
		d.Set(key, result)
		return nil
	})
}
