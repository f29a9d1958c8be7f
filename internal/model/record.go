package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one summary record extracted from a listing page.
// Details holds the enrichment fields from the record's detail page; it is
// set at most once and an empty Details is never serialized.
type Record struct {
	// Fields are the summary fields extracted from the listing item.
	Fields Fields

	// Details are the fields extracted from the detail page, if any.
	Details Fields
}

// NewRecord creates a Record from extracted summary fields.
func NewRecord(fields Fields) Record {
	return Record{Fields: fields}
}

// Link returns the record's detail link, if one was extracted.
func (r Record) Link() (string, bool) {
	return r.Fields.Get(FieldLink)
}

// Enriched reports whether the record carries enrichment fields.
func (r Record) Enriched() bool {
	return r.Details.Len() > 0
}

// MarshalJSON writes the summary fields as a flat object and nests the
// enrichment fields under DetailsKey when present.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := r.Fields.writeMembers(&buf, false); err != nil {
		return nil, err
	}
	if r.Enriched() {
		if r.Fields.Len() > 0 {
			buf.WriteByte(',')
		}
		details, err := r.Details.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"` + DetailsKey + `":`)
		buf.Write(details)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	r.Fields = NewFields()
	r.Details = NewFields()
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		if key == DetailsKey {
			return r.Details.UnmarshalJSON(raw)
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Fields.Set(key, v)
		return nil
	})
}

// CrawlResult is the ordered sequence of records collected for one category.
// Order matches the source document order across listing pages.
type CrawlResult []Record
