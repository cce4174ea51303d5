// Package indexer coordinates the end-to-end indexing pipeline for C-family
// codebases.
//
// The indexer walks a project tree, parses each source file, cuts the parse
// result into chunks, and persists files, symbols, chunks, and includes to
// storage inside batch transactions.
//
// # Basic Usage
//
//	idx := indexer.New(store)
//
//	stats, err := idx.IndexProject(ctx, "/path/to/project", &indexer.Config{
//	    Workers: 8,
//	})
//
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Pipeline
//
//  1. Discovery: walk the tree, keep C-family extensions, apply
//     include/exclude glob patterns, skip hidden and build directories
//  2. Incremental decision: compare SHA-256 content hashes against stored
//     file records, skip unchanged files
//  3. Parse and chunk: extract the symbol tree and cut chunks along symbol
//     boundaries (parallel, one worker per file up to Config.Workers)
//  4. Store: persist file, symbol tree, chunks, and includes per file,
//     committing per batch
//
// A changed file replaces all of its previously stored symbols, chunks, and
// includes. Force a full re-index with Config.Force.
//
// # Concurrency
//
// Files are processed by an errgroup-driven worker pool bounded by a
// semaphore; only one IndexProject run may be active per Indexer, enforced
// by a non-blocking IndexLock. Per-file failures are recorded in
// Statistics.ErrorMessages and do not abort the run.
package indexer
