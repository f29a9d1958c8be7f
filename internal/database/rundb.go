package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/dirharvest/internal/model"
)

// FileName is the name of the history database file inside the data directory.
const FileName = "dirharvest.db"

// ErrNotFound is returned by Open when the database file does not exist
// and CreateIfNotExists is false.
var ErrNotFound = errors.New("database not found")

// RunDB provides SQLite-based storage for harvest runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	// Wait for other processes holding the lock instead of failing with SQLITE_BUSY.
	dsn += "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		categories INTEGER NOT NULL,
		records INTEGER NOT NULL,
		digest TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		document_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is the stored metadata of one harvest run.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// RootURL is the directory root that was crawled.
	RootURL string `json:"root_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`

	// Categories is the number of categories in the document.
	Categories int `json:"categories"`

	// Records is the total number of records in the document.
	Records int `json:"records"`

	// Digest is the SHA3-256 hex digest of the written document.
	Digest string `json:"digest"`

	// Stats are the per-category statistics.
	Stats model.RunStats `json:"stats"`
}

// NewRun creates a Run with a fresh ID from run statistics and the digest
// of the written document.
func NewRun(stats model.RunStats, digest string) Run {
	return Run{
		ID:         uuid.NewString(),
		RootURL:    stats.RootURL,
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		Categories: len(stats.Categories),
		Records:    stats.TotalRecords(),
		Digest:     digest,
		Stats:      stats,
	}
}

// timeLayout is the fixed-width UTC layout used for stored timestamps so
// that lexical order matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// SaveRun stores a run and its document.
func (rdb *RunDB) SaveRun(ctx context.Context, run Run, doc *model.AggregateDocument) error {
	if run.ID == "" {
		return errors.New("run ID is required")
	}

	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	if doc == nil {
		doc = model.NewAggregateDocument()
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	query := `
	INSERT INTO runs (id, root_url, started_at, finished_at, categories, records, digest, stats_json, document_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = rdb.db.ExecContext(ctx, query,
		run.ID,
		run.RootURL,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Categories,
		run.Records,
		run.Digest,
		string(statsJSON),
		string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

const runColumns = `id, root_url, started_at, finished_at, categories, records, digest, stats_json`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads one row selected with runColumns.
func scanRun(s scanner) (Run, error) {
	var run Run
	var started, finished, statsJSON string

	if err := s.Scan(&run.ID, &run.RootURL, &started, &finished,
		&run.Categories, &run.Records, &run.Digest, &statsJSON); err != nil {
		return Run{}, err
	}

	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return Run{}, fmt.Errorf("failed to parse stats of run %s: %w", run.ID, err)
	}

	return run, nil
}

// GetRun retrieves a run by ID. It returns nil if no such run exists.
func (rdb *RunDB) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(rdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// GetDocument retrieves the stored document of a run.
// It returns nil if no such run exists.
func (rdb *RunDB) GetDocument(ctx context.Context, id string) (*model.AggregateDocument, error) {
	var docJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT document_json FROM runs WHERE id = ?`, id).Scan(&docJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc := model.NewAggregateDocument()
	if err := json.Unmarshal([]byte(docJSON), doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return doc, nil
}

// GetLatestRuns returns up to n runs for rootURL, newest first.
// An empty rootURL matches every run.
func (rdb *RunDB) GetLatestRuns(ctx context.Context, rootURL string, n int) ([]Run, error) {
	if n <= 0 {
		return []Run{}, nil
	}
	return rdb.queryRuns(ctx, rootURL, n)
}

// ListRuns returns every run for rootURL, newest first.
// An empty rootURL matches every run.
func (rdb *RunDB) ListRuns(ctx context.Context, rootURL string) ([]Run, error) {
	return rdb.queryRuns(ctx, rootURL, -1)
}

// queryRuns selects runs newest first. A negative limit means no limit.
func (rdb *RunDB) queryRuns(ctx context.Context, rootURL string, limit int) ([]Run, error) {
	query := `
	SELECT ` + runColumns + ` FROM runs
	WHERE (? = '' OR root_url = ?)
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, rootURL, rootURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a stored timestamp as UTC.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
