package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/dirharvest/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteDocument outputs one table of records per category.
func (w *MarkdownWriter) WriteDocument(doc *model.AggregateDocument) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Directory Listing")
	md.PlainText("")

	for _, name := range doc.Keys() {
		records, _ := doc.Get(name)
		md.H2(name + " (" + strconv.Itoa(len(records)) + ")")
		md.PlainText("")

		if len(records) == 0 {
			md.PlainText("No records collected.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(records))
		for i, rec := range records {
			rows[i] = []string{
				cell(rec.Fields, model.FieldTitle, 40),
				cell(rec.Fields, model.FieldLocation, 30),
				cell(rec.Fields, model.FieldFounded, 10),
				cell(rec.Details, model.FieldTotalFunding, 20),
				cell(rec.Fields, model.FieldLink, 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "Location", "Founded", "Funding", "Link"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the run statistics in Markdown format.
func (w *MarkdownWriter) WriteSummary(stats model.RunStats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, stats)
	w.writeCategories(md, stats)
	w.writeAlert(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, stats model.RunStats) {
	md.H1("Harvest Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root URL", "`" + stats.RootURL + "`"},
			{"Started", stats.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", stats.Elapsed().Round(time.Millisecond).String()},
			{"Categories", strconv.Itoa(len(stats.Categories))},
			{"Records", strconv.Itoa(stats.TotalRecords())},
			{"Enriched", strconv.Itoa(stats.TotalEnriched())},
			{"Listing Pages", strconv.Itoa(stats.TotalPages())},
		},
	})
	md.PlainText("")
}

// writeCategories writes the per-category table and a distribution chart.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, stats model.RunStats) {
	md.H2("Categories")
	md.PlainText("")

	if len(stats.Categories) == 0 {
		md.PlainText("No categories discovered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(stats.Categories))
	for i, c := range stats.Categories {
		rows[i] = []string{
			c.Name,
			strconv.Itoa(c.Records),
			strconv.Itoa(c.Enriched),
			strconv.Itoa(c.Pages),
			string(c.Stop),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Records", "Enriched", "Pages", "Stop"},
		Rows:   rows,
	})
	md.PlainText("")

	if stats.TotalRecords() > 0 {
		w.writePieChart(md, stats)
	}
}

// writePieChart writes a mermaid pie chart of records per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.RunStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Records by Category"),
		piechart.WithShowData(true),
	)

	for _, c := range stats.Categories {
		if c.Records > 0 {
			chart.LabelAndIntValue(c.Name, uint64(c.Records)) //nolint:gosec // count is never negative
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert flags categories whose data may be incomplete.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, stats model.RunStats) {
	var truncated []string
	for _, c := range stats.Categories {
		if c.Stop.Truncated() {
			truncated = append(truncated, c.Name+" ("+string(c.Stop)+")")
		}
	}

	switch {
	case len(stats.Categories) == 0:
		md.Cautionf("No categories were discovered at %s.", stats.RootURL)
	case len(truncated) > 0:
		md.Warningf("%d categories may be incomplete: %s", len(truncated), strings.Join(truncated, ", "))
	default:
		md.Tip("All categories were paginated to the end.")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [dirharvest](https://github.com/nao1215/dirharvest)*")
}

// cell returns a table-safe, truncated field value or "-".
func cell(f model.Fields, name string, maxLen int) string {
	v, ok := f.Get(name)
	if !ok {
		return "-"
	}
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", " ")
	return truncateString(v, maxLen)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
