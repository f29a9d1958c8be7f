package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Summary record field names.
const (
	FieldTitle        = "title"
	FieldLink         = "link"
	FieldDescription  = "description"
	FieldThumbnail    = "thumbnail"
	FieldBusinessName = "business_name"
	FieldCategory     = "category"
	FieldLocation     = "location"
	FieldTags         = "tags"
	FieldFounded      = "founded"
)

// Detail field names.
const (
	FieldBusinessDescription     = "business_description"
	FieldLongBusinessDescription = "long_business_description"
	FieldTotalFunding            = "total_funding"
	FieldWebsite                 = "website"
	FieldStatus                  = "status"
	FieldLinkedIn                = "linkedin"
)

// DetailsKey is the reserved key under which enrichment fields are nested.
const DetailsKey = "details"

// Fields is a partial field map. A field is either present with a non-empty
// value or absent; there is no sentinel value for "missing".
//
// Design decision: Fields remembers insertion order because:
//  1. The extraction contract order is the natural reading order
//  2. Deterministic ordering makes repeated runs byte-identical
//  3. Lookups still go through the map
type Fields struct {
	names  []string
	values map[string]string
}

// NewFields creates an empty Fields.
func NewFields() Fields {
	return Fields{values: make(map[string]string)}
}

// Set stores value under name. Empty values are ignored so that an
// unlocatable field never appears in the map. Setting an existing field
// replaces its value but keeps its position.
func (f *Fields) Set(name, value string) {
	if name == "" || value == "" {
		return
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Has reports whether the field is present.
func (f Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Get returns the field value and whether it was present.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Len returns the number of present fields.
func (f Fields) Len() int {
	return len(f.names)
}

// Names returns field names in insertion order.
func (f Fields) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Keys returns field names in lexicographic order.
func (f Fields) Keys() []string {
	keys := f.Names()
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (f Fields) Clone() Fields {
	out := NewFields()
	for _, name := range f.names {
		out.Set(name, f.values[name])
	}
	return out
}

// MarshalJSON writes the fields as a JSON object in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := f.writeMembers(&buf, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeMembers writes "name":"value" pairs without the enclosing braces.
// leadingComma is set when members are appended after existing ones.
func (f Fields) writeMembers(buf *bytes.Buffer, leadingComma bool) error {
	for i, name := range f.names {
		if i > 0 || leadingComma {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		v, err := json.Marshal(f.values[name])
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	return nil
}

// UnmarshalJSON reads a flat JSON object of string values, keeping key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	*f = NewFields()
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		f.Set(key, v)
		return nil
	})
}

// errNotObject is returned when a JSON value is expected to be an object.
var errNotObject = errors.New("expected JSON object")

// decodeObject walks the members of a JSON object in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
