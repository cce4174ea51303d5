// Package chunker divides C-family source code into chunks for indexing
// and search.
//
// Chunks are cut at symbol boundaries so each one carries a complete
// declaration: a whole function or method body, a full class or struct
// definition, or an enum with its enumerators. Files in which no symbol was
// recognized become a single file-level chunk so their content is still
// searchable.
//
// # Basic Usage
//
//	c := chunker.New()
//	chunks, err := c.ChunkFile("/path/to/auth_service.cpp", parseResult, fileID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Each chunk includes context in ContextBefore: the file's include list and
// the symbol's enclosing scope path, so a method chunk still reads as
// belonging to its class and namespace.
//
// # Content Hashing
//
// Each chunk computes a SHA-256 hash of its content:
//
//	chunk.ComputeContentHash()
//
// This enables incremental indexing: a chunk whose stored hash matches is
// skipped on re-index.
//
// Token estimation uses a simple heuristic (chars/4); no tokenizer model is
// consulted.
package chunker
