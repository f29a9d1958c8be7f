package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/dirharvest/internal/model"
)

// JSONWriter outputs results in JSON format.
//
// Design decision: We use standard encoding/json because the document
// types implement json.Marshaler themselves to control key order; no
// third-party encoder would add anything on top of that.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteDocument outputs the aggregate document.
func (w *JSONWriter) WriteDocument(doc *model.AggregateDocument) (int, error) {
	return w.writeJSON(doc)
}

// WriteSummary outputs the run statistics.
func (w *JSONWriter) WriteSummary(stats model.RunStats) (int, error) {
	return w.writeJSON(summaryJSON{
		RunStats:      stats,
		TotalRecords:  stats.TotalRecords(),
		TotalEnriched: stats.TotalEnriched(),
		TotalPages:    stats.TotalPages(),
		ElapsedMillis: stats.Elapsed().Milliseconds(),
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	data, err := w.marshal(v)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}

// marshal encodes v with the writer's indentation and a trailing newline.
func (w *JSONWriter) marshal(v any) ([]byte, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return nil, err
	}

	// Add trailing newline for better terminal output
	return append(data, '\n'), nil
}

// summaryJSON adds derived totals to RunStats for tool integration.
type summaryJSON struct {
	model.RunStats
	TotalRecords  int   `json:"total_records"`
	TotalEnriched int   `json:"total_enriched"`
	TotalPages    int   `json:"total_pages"`
	ElapsedMillis int64 `json:"elapsed_ms"`
}
