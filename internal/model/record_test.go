package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestRecordJSON tests record serialization.
func TestRecordJSON(t *testing.T) {
	t.Parallel()

	t.Run("omits details when not enriched", func(t *testing.T) {
		t.Parallel()

		f := NewFields()
		f.Set(FieldTitle, "Acme")
		f.Set(FieldLink, "https://example.com/acme")

		data, err := json.Marshal(NewRecord(f))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(data), DetailsKey) {
			t.Errorf("expected no details key, got %s", data)
		}
		if strings.Contains(string(data), "null") {
			t.Errorf("expected no null values, got %s", data)
		}
	})

	t.Run("nests details after summary fields", func(t *testing.T) {
		t.Parallel()

		f := NewFields()
		f.Set(FieldTitle, "Acme")
		r := NewRecord(f)
		r.Details.Set(FieldWebsite, "https://acme.example")

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"title":"Acme","details":{"website":"https://acme.example"}}`
		if string(data) != want {
			t.Errorf("expected %s, got %s", want, data)
		}
	})

	t.Run("details only record is valid JSON", func(t *testing.T) {
		t.Parallel()

		var r Record
		r.Details.Set(FieldStatus, "Active")

		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"details":{"status":"Active"}}` {
			t.Errorf("unexpected output: %s", data)
		}
	})

	t.Run("round trips", func(t *testing.T) {
		t.Parallel()

		in := `{"title":"Acme","link":"https://example.com/a","details":{"founded":"2020"}}`
		var r Record
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link, ok := r.Link(); !ok || link != "https://example.com/a" {
			t.Errorf("unexpected link %q", link)
		}
		if !r.Enriched() {
			t.Error("expected enriched record")
		}
		out, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != in {
			t.Errorf("expected %s, got %s", in, out)
		}
	})
}
