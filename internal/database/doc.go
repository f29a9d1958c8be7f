// Package database provides SQLite-based run history for dirharvest.
//
// Every completed harvest can be recorded as a run: its statistics, the
// SHA3-256 digest of the written document, and the document itself. The
// history command uses these records to list past runs and to compare the
// two latest runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode keeps reads from blocking the writer
package database
