// Package storage provides SQLite-based persistence for indexed code data.
//
// The storage layer manages:
//   - Project metadata
//   - File information and content hashes
//   - Extracted symbols with their tree linkage
//   - Code chunks
//   - Include directives
//   - Full-text search indexes
//
// # Database Schema
//
// Tables:
//   - projects: Project metadata (root path, name)
//   - files: File paths, language, and SHA-256 hashes
//   - symbols: Extracted declarations; parent_id preserves nesting and
//     qualified_path carries the "::"-joined scope path
//   - chunks: Code chunks cut at symbol boundaries
//   - includes: Include directives per file
//   - symbols_fts, chunks_fts: FTS5 full-text search indexes, kept in
//     sync by triggers
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.cindex/indices/project.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Transactions
//
// Use transactions for atomic per-file updates:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	tx.UpsertFile(ctx, file)
//	tx.DeleteSymbolsByFile(ctx, file.ID)
//	// ... re-insert symbols, chunks, includes
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Incremental Updates
//
// Compare stored content hashes against the file on disk to skip files that
// have not changed since the last index run.
//
// # Build Modes
//
// Two SQLite drivers are supported via build tags: the default pure Go
// driver (modernc.org/sqlite) and a CGO driver (mattn/go-sqlite3) selected
// with -tags cgo_sqlite for larger codebases.
package storage
