package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/dirharvest/internal/model"
)

// createTestDocument creates a document with sample data for testing.
func createTestDocument() *model.AggregateDocument {
	doc := model.NewAggregateDocument()

	f := model.NewFields()
	f.Set(model.FieldTitle, "Acme")
	f.Set(model.FieldLink, "https://example.com/listing/acme/")
	f.Set(model.FieldLocation, "Berlin")
	rec := model.NewRecord(f)
	rec.Details.Set(model.FieldTotalFunding, "1M EUR")

	g := model.NewFields()
	g.Set(model.FieldTitle, "Bare | Minimum")

	doc.Set("Germany", model.CrawlResult{rec, model.NewRecord(g)})
	doc.Set("Austria", nil)
	return doc
}

// createTestStats creates run statistics for testing.
func createTestStats() model.RunStats {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return model.RunStats{
		RootURL:    "https://example.com/directory/",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Categories: []model.CategoryStats{
			{Name: "Austria", Stop: model.StopFetchError},
			{Name: "Germany", Records: 2, Enriched: 1, Pages: 2, Stop: model.StopExhausted},
		},
	}
}

// TestJSONWriter tests the JSON document writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact document with sorted keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteDocument(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := `{"Austria":[],"Germany":[{"title":"Acme","link":"https://example.com/listing/acme/","location":"Berlin",` +
			`"details":{"total_funding":"1M EUR"}},{"title":"Bare | Minimum"}]}` + "\n"
		if buf.String() != want {
			t.Errorf("unexpected output\n got: %s\nwant: %s", buf.String(), want)
		}
	})

	t.Run("pretty prints when requested", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteDocument(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"Austria\": []") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "}\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("writes summary with totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummary(createTestStats()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["total_records"] != float64(2) {
			t.Errorf("expected total_records 2, got %v", got["total_records"])
		}
		if got["elapsed_ms"] != float64(1500) {
			t.Errorf("expected elapsed_ms 1500, got %v", got["elapsed_ms"])
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary tables and alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSummary(createTestStats()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"# Harvest Summary", "## Categories", "Germany", "fetch_error", "mermaid", "may be incomplete"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes one table per category", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteDocument(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "## Germany (2)") {
			t.Error("expected Germany heading")
		}
		if !strings.Contains(out, "No records collected.") {
			t.Error("expected empty category note")
		}
		if !strings.Contains(out, `Bare \| Minimum`) {
			t.Error("expected pipe to be escaped")
		}
	})
}

// TestSimpleWriter tests the human-readable writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary with truncation marker", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteSummary(createTestStats()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "HARVEST SUMMARY") {
			t.Error("expected header")
		}
		if !strings.Contains(out, "Records:     2 (1 enriched)") {
			t.Errorf("expected record totals, got:\n%s", out)
		}
		if !strings.Contains(out, "! Austria") {
			t.Error("expected truncated category to be flagged")
		}
	})

	t.Run("lists titles when verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).WriteDocument(createTestDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[+] Acme") || !strings.Contains(out, "[-] Bare | Minimum") {
			t.Errorf("expected record titles, got:\n%s", out)
		}
	})
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	n, err := mw.WriteSummary(createTestStats())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
	}
}

// TestWriteFile tests persisting the document.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories and returns written bytes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "nested", "data.json")
		data, err := WriteFile(path, createTestDocument())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		onDisk, err := os.ReadFile(path) //nolint:gosec // test path
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !bytes.Equal(data, onDisk) {
			t.Error("returned bytes differ from file contents")
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the output file, found %d entries", len(entries))
		}
	})

	t.Run("overwrites an existing document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("stale"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := WriteFile(path, model.NewAggregateDocument()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(path) //nolint:gosec // test path
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "{}\n" {
			t.Errorf("expected empty document, got %q", got)
		}
	})

	t.Run("wraps failures in ErrWrite", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := WriteFile(filepath.Join(blocker, "data.json"), createTestDocument())
		if !errors.Is(err, ErrWrite) {
			t.Errorf("expected ErrWrite, got %v", err)
		}
	})
}

func TestDigest(t *testing.T) {
	t.Parallel()

	a := Digest([]byte(`{"A":[]}`))
	b := Digest([]byte(`{"A":[]}`))
	c := Digest([]byte(`{"B":[]}`))
	if a != b {
		t.Error("expected equal digests for equal input")
	}
	if a == c {
		t.Error("expected different digests for different input")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
}
