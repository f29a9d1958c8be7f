// Package model defines the core data structures used throughout dirharvest.
//
// This package contains the following main types:
//   - Category: A top-level directory grouping discovered from the root page
//   - Fields: A partial field map where absent fields are simply missing
//   - Record: One summary record from a listing page, optionally enriched
//   - AggregateDocument: The final category-keyed mapping that is persisted
//   - RunStats: Per-run and per-category counters used for summaries and history
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, pipeline, report and database packages all need
// these types, so centralizing them prevents import cycles.
package model
