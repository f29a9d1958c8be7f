package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/dirharvest/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so that output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose lists every record title under its category.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteDocument outputs the categories of the document with their record
// counts, and the record titles when verbose.
func (w *SimpleWriter) WriteDocument(doc *model.AggregateDocument) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "DIRECTORY LISTING")
	for _, name := range doc.Keys() {
		records, _ := doc.Get(name)
		fmt.Fprintf(&sb, "%s (%d)\n", name, len(records))
		if !w.verbose {
			continue
		}
		for _, rec := range records {
			title, ok := rec.Fields.Get(model.FieldTitle)
			if !ok {
				title = "(untitled)"
			}
			marker := "-"
			if rec.Enriched() {
				marker = "+"
			}
			fmt.Fprintf(&sb, "  [%s] %s\n", marker, title)
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the run statistics in human-readable format.
func (w *SimpleWriter) WriteSummary(stats model.RunStats) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "HARVEST SUMMARY")

	fmt.Fprintf(&sb, "Root URL:    %s\n", stats.RootURL)
	fmt.Fprintf(&sb, "Started:     %s\n", stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Elapsed:     %s\n", stats.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Categories:  %d\n", len(stats.Categories))
	fmt.Fprintf(&sb, "Records:     %d (%d enriched)\n", stats.TotalRecords(), stats.TotalEnriched())
	fmt.Fprintf(&sb, "Pages:       %d\n", stats.TotalPages())
	sb.WriteString("\n")

	if len(stats.Categories) > 0 {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %-30s %8s %9s %6s  %s\n", "CATEGORY", "RECORDS", "ENRICHED", "PAGES", "STOP")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		for _, c := range stats.Categories {
			flag := " "
			if c.Stop.Truncated() {
				flag = "!"
			}
			fmt.Fprintf(&sb, "%s %-30s %8d %9d %6d  %s\n",
				flag, truncateString(c.Name, 30), c.Records, c.Enriched, c.Pages, c.Stop)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a centered section title between rules.
func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	pad := max((70-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}
