package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/dirharvest/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testRun builds a run that started at the given offset from a fixed time.
func testRun(rootURL string, offset time.Duration, records int) (Run, *model.AggregateDocument) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)

	doc := model.NewAggregateDocument()
	result := model.CrawlResult{}
	for range records {
		f := model.NewFields()
		f.Set(model.FieldTitle, "item")
		result = append(result, model.NewRecord(f))
	}
	doc.Set("Germany", result)

	stats := model.RunStats{
		RootURL:    rootURL,
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Categories: []model.CategoryStats{
			{Name: "Germany", Records: records, Pages: 1, Stop: model.StopExhausted},
		},
	}
	return NewRun(stats, "digest"), doc
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dir, Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, FileName)); !os.IsNotExist(err) {
			t.Error("expected no database file to be created")
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		run, doc := testRun("https://example.com/", 0, 1)
		if err := db.SaveRun(context.Background(), run, doc); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		got, err := db.GetRun(context.Background(), run.ID)
		if err != nil || got == nil {
			t.Fatalf("expected stored run, got %v, %v", got, err)
		}
	})
}

// TestRuns tests storing and querying runs.
func TestRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("saves and retrieves a run with its document", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run, doc := testRun("https://example.com/", 0, 2)
		if err := db.SaveRun(ctx, run, doc); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		got, err := db.GetRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got == nil {
			t.Fatal("expected run")
		}
		if got.Records != 2 || got.Categories != 1 {
			t.Errorf("unexpected counts: %+v", got)
		}
		if !got.StartedAt.Equal(run.StartedAt) {
			t.Errorf("expected start %v, got %v", run.StartedAt, got.StartedAt)
		}
		if got.Stats.Categories[0].Stop != model.StopExhausted {
			t.Errorf("expected stats to round-trip, got %+v", got.Stats)
		}

		storedDoc, err := db.GetDocument(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get document: %v", err)
		}
		records, ok := storedDoc.Get("Germany")
		if !ok || len(records) != 2 {
			t.Errorf("expected 2 stored records, got %d", len(records))
		}
	})

	t.Run("returns nil for unknown run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		got, err := db.GetRun(ctx, "does-not-exist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
		doc, err := db.GetDocument(ctx, "does-not-exist")
		if err != nil || doc != nil {
			t.Errorf("expected nil document, got %v, %v", doc, err)
		}
	})

	t.Run("rejects a run without ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run, doc := testRun("https://example.com/", 0, 0)
		run.ID = ""
		if err := db.SaveRun(ctx, run, doc); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("lists runs newest first filtered by root URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for i, root := range []string{"https://a.example/", "https://b.example/", "https://a.example/"} {
			run, doc := testRun(root, time.Duration(i)*time.Hour, i)
			if err := db.SaveRun(ctx, run, doc); err != nil {
				t.Fatalf("failed to save run: %v", err)
			}
		}

		all, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(all))
		}
		if all[0].Records != 2 || all[2].Records != 0 {
			t.Errorf("expected newest first, got records %d..%d", all[0].Records, all[2].Records)
		}

		onlyA, err := db.ListRuns(ctx, "https://a.example/")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(onlyA) != 2 {
			t.Errorf("expected 2 runs for a.example, got %d", len(onlyA))
		}

		latest, err := db.GetLatestRuns(ctx, "https://a.example/", 1)
		if err != nil {
			t.Fatalf("failed to get latest runs: %v", err)
		}
		if len(latest) != 1 || latest[0].Records != 2 {
			t.Errorf("unexpected latest run: %+v", latest)
		}

		none, err := db.GetLatestRuns(ctx, "", 0)
		if err != nil || len(none) != 0 {
			t.Errorf("expected no runs for n=0, got %d, %v", len(none), err)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01 12:00:00.000000000", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01 12:00:00", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-03-01T12:00:00Z", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
