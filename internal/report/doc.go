// Package report writes harvest results in various formats.
//
// The JSON format is the persisted result document: one object mapping each
// category name to its records, with keys in sorted order so that identical
// input always produces identical bytes. The Markdown and plain-text formats
// render human-readable summaries of a run.
//
// WriteFile persists the JSON document atomically. Its failure is the only
// error a harvest run treats as fatal; it is reported wrapped in ErrWrite.
package report
