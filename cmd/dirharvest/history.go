package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/dirharvest/internal/config"
	"github.com/nao1215/dirharvest/internal/database"
	"github.com/nao1215/dirharvest/internal/model"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// errRunNotFound is returned when --export names an unknown run.
var errRunNotFound = errors.New("run not found")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [root-url]",
		Short: "Inspect and compare recorded runs",
		Long: `History displays runs recorded by 'dirharvest crawl'.

Without flags it compares the two latest runs and shows:
- Whether the written documents are byte-identical
- Categories that appeared or disappeared
- Per-category changes in record counts

The root URL restricts history to runs of that directory; without it
all recorded runs are considered.

Examples:
  # Compare the latest two runs
  dirharvest history

  # List all runs of a directory
  dirharvest history --list https://www.eu-startups.com/directory/

  # Output the comparison as Markdown
  dirharvest history --markdown

  # Print the document stored with a run
  dirharvest history --export 0f3c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recorded runs")
	cmd.Flags().StringP("export", "e", "",
		"Print the JSON document stored with the run of this ID")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	exportID, err := flags.GetString("export")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	var rootURL string
	if len(args) > 0 {
		rootURL = args[0]
	}

	out := cmd.OutOrStdout()

	// History only reads; a missing database means no run was recorded yet.
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrNotFound) {
		switch {
		case exportID != "":
			return fmt.Errorf("%w: %s", errRunNotFound, exportID)
		case list:
			return printRuns(out, nil, jsonOutput)
		default:
			return errors.New("at least 2 runs are required for comparison (found 0)")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case exportID != "":
		return exportRun(ctx, out, db, exportID)
	case list:
		return listRuns(ctx, out, db, rootURL, jsonOutput)
	}

	runs, err := db.GetLatestRuns(ctx, rootURL, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	comparison := compareRuns(runs[1], runs[0])
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, comparison)
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// exportRun prints the document stored with a run.
func exportRun(ctx context.Context, out io.Writer, db *database.RunDB, id string) error {
	doc, err := db.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", id, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", errRunNotFound, id)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// listRuns lists recorded runs, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.RunDB, rootURL string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, rootURL)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return printRuns(out, runs, jsonOutput)
}

// printRuns writes a run table, or a JSON array with jsonOutput.
func printRuns(out io.Writer, runs []database.Run, jsonOutput bool) error {
	if jsonOutput {
		if runs == nil {
			runs = []database.Run{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'dirharvest crawl' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %-8s  %s\n", "ID", "Date", "Categories", "Records", "Digest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-10d  %-8d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Categories,
			r.Records,
			shortDigest(r.Digest),
		)
	}

	fmt.Fprintln(out, "\nUse 'dirharvest history' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'dirharvest history --export <id>' to print a stored document.")

	return nil
}

// shortDigest abbreviates a hex digest for tables.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// ComparisonResult holds the result of comparing two runs.
type ComparisonResult struct {
	// Previous describes the older run.
	Previous RunMetadata `json:"previous_run"`

	// Current describes the newer run.
	Current RunMetadata `json:"current_run"`

	// Identical is true when both documents have the same digest.
	Identical bool `json:"identical"`

	// AddedCategories are present only in the current run.
	AddedCategories []string `json:"added_categories,omitempty"`

	// RemovedCategories are present only in the previous run.
	RemovedCategories []string `json:"removed_categories,omitempty"`

	// Changed holds categories whose record count differs.
	Changed []CategoryChange `json:"changed,omitempty"`

	// UnchangedCount is the number of categories with equal record counts.
	UnchangedCount int `json:"unchanged_count"`
}

// RunMetadata contains metadata about a run for comparison display.
type RunMetadata struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Categories int       `json:"categories"`
	Records    int       `json:"records"`
	Digest     string    `json:"digest"`
}

// CategoryChange describes the change of one category between runs.
type CategoryChange struct {
	Name     string `json:"name"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
}

func newRunMetadata(r database.Run) RunMetadata {
	return RunMetadata{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		Categories: r.Categories,
		Records:    r.Records,
		Digest:     r.Digest,
	}
}

// compareRuns compares two runs using their per-category statistics.
func compareRuns(previous, current database.Run) *ComparisonResult {
	result := &ComparisonResult{
		Previous:  newRunMetadata(previous),
		Current:   newRunMetadata(current),
		Identical: previous.Digest != "" && previous.Digest == current.Digest,
	}

	prevCounts := categoryCounts(previous.Stats)
	currCounts := categoryCounts(current.Stats)

	for name, n := range currCounts {
		prev, exists := prevCounts[name]
		switch {
		case !exists:
			result.AddedCategories = append(result.AddedCategories, name)
		case prev != n:
			result.Changed = append(result.Changed, CategoryChange{
				Name:     name,
				Previous: prev,
				Current:  n,
				Delta:    n - prev,
			})
		default:
			result.UnchangedCount++
		}
	}
	for name := range prevCounts {
		if _, exists := currCounts[name]; !exists {
			result.RemovedCategories = append(result.RemovedCategories, name)
		}
	}

	sort.Strings(result.AddedCategories)
	sort.Strings(result.RemovedCategories)
	sort.Slice(result.Changed, func(i, j int) bool {
		return result.Changed[i].Name < result.Changed[j].Name
	})

	return result
}

// categoryCounts maps category names to record counts.
func categoryCounts(stats model.RunStats) map[string]int {
	counts := make(map[string]int, len(stats.Categories))
	for _, c := range stats.Categories {
		counts[c.Name] = c.Records
	}
	return counts
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Run Comparison")
	md.PlainText("")
	md.PlainTextf("**Documents:** %s", formatIdentical(result.Identical))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", "`" + result.Previous.ID + "`", "`" + result.Current.ID + "`", "-"},
			{
				"Date",
				result.Previous.StartedAt.Format("2006-01-02 15:04"),
				result.Current.StartedAt.Format("2006-01-02 15:04"),
				"-",
			},
			{
				"Categories",
				strconv.Itoa(result.Previous.Categories),
				strconv.Itoa(result.Current.Categories),
				formatDelta(result.Current.Categories - result.Previous.Categories),
			},
			{
				"**Records**",
				"**" + strconv.Itoa(result.Previous.Records) + "**",
				"**" + strconv.Itoa(result.Current.Records) + "**",
				"**" + formatDelta(result.Current.Records-result.Previous.Records) + "**",
			},
		},
	})
	md.PlainText("")

	if len(result.AddedCategories) > 0 {
		md.H2f("New Categories (%d)", len(result.AddedCategories))
		md.PlainText("")
		md.BulletList(result.AddedCategories...)
		md.PlainText("")
	}

	if len(result.RemovedCategories) > 0 {
		md.H2f("Removed Categories (%d)", len(result.RemovedCategories))
		md.PlainText("")
		removed := make([]string, len(result.RemovedCategories))
		for i, name := range result.RemovedCategories {
			removed[i] = "~~" + name + "~~"
		}
		md.BulletList(removed...)
		md.PlainText("")
	}

	if len(result.Changed) > 0 {
		md.H2f("Changed Categories (%d)", len(result.Changed))
		md.PlainText("")
		rows := make([][]string, len(result.Changed))
		for i, c := range result.Changed {
			rows[i] = []string{c.Name, strconv.Itoa(c.Previous), strconv.Itoa(c.Current), formatDelta(c.Delta)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Previous", "Current", "Change"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d categories unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintln(out, "Run Comparison")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nDocuments: %s\n", formatIdentical(result.Identical))

	fmt.Fprintf(out, "\nPrevious run: %s  %s\n", result.Previous.StartedAt.Local().Format("2006-01-02 15:04:05"), result.Previous.ID)
	fmt.Fprintf(out, "Current run:  %s  %s\n", result.Current.StartedAt.Local().Format("2006-01-02 15:04:05"), result.Current.ID)

	fmt.Fprintf(out, "\n  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 47))
	fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", "Categories",
		result.Previous.Categories, result.Current.Categories,
		formatDelta(result.Current.Categories-result.Previous.Categories))
	fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", "Records",
		result.Previous.Records, result.Current.Records,
		formatDelta(result.Current.Records-result.Previous.Records))

	if len(result.AddedCategories) > 0 {
		fmt.Fprintf(out, "\nNew Categories (%d):\n", len(result.AddedCategories))
		for _, name := range result.AddedCategories {
			fmt.Fprintf(out, "  [+] %s\n", name)
		}
	}

	if len(result.RemovedCategories) > 0 {
		fmt.Fprintf(out, "\nRemoved Categories (%d):\n", len(result.RemovedCategories))
		for _, name := range result.RemovedCategories {
			fmt.Fprintf(out, "  [-] %s\n", name)
		}
	}

	if len(result.Changed) > 0 {
		fmt.Fprintf(out, "\nChanged Categories (%d):\n", len(result.Changed))
		for _, c := range result.Changed {
			fmt.Fprintf(out, "  [~] %s: %d -> %d (%s)\n", c.Name, c.Previous, c.Current, formatDelta(c.Delta))
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d categories\n", result.UnchangedCount)
	}

	return nil
}

// formatIdentical describes whether two documents match.
func formatIdentical(identical bool) string {
	if identical {
		return "IDENTICAL"
	}
	return "CHANGED"
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
