package report

import (
	"errors"
	"io"

	"github.com/nao1215/dirharvest/internal/model"
)

// ErrWrite is returned when the result document cannot be persisted.
var ErrWrite = errors.New("failed to write result document")

// Writer defines the interface for result output.
// Implementations write harvest results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteDocument outputs the aggregate document.
	// Returns the number of bytes written and any error encountered.
	WriteDocument(doc *model.AggregateDocument) (int, error)

	// WriteSummary outputs per-category statistics of a run.
	WriteSummary(stats model.RunStats) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteDocument outputs the document to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteDocument(doc *model.AggregateDocument) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDocument(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(stats model.RunStats) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(stats)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
