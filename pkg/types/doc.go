// Package types provides shared type definitions for the cindex code indexer.
//
// This package defines domain types used across cindex components: tokens,
// scopes, symbols, parse results, chunks, and search results.
//
// # Core Types
//
// Token is one classified lexical unit produced by the tokenizer:
//
//	tok := types.Token{
//	    Kind: types.TokenKeyword,
//	    Text: "class",
//	}
//
// Symbol represents a recognized declaration (namespace, class, function,
// enumerator, ...) extracted from C-family source text:
//
//	symbol := &types.Symbol{
//	    Name:      "login",
//	    Kind:      types.KindMethod,
//	    Signature: "(const string& email, const string& password)",
//	}
//
// Scope is a nesting context owning an ordered list of symbols; the root
// file-kind Scope is the parser's output. A symbol's qualified path is never
// stored - it is recomputed by walking scope ownership:
//
//	symbol.QualifiedName() // "AuthService::login"
//
// Chunk represents a symbol-aligned code section for indexing and search:
//
//	chunk := &types.Chunk{
//	    Content:       methodBody,
//	    ContextBefore: includes,
//	    ChunkType:     types.ChunkCallable,
//	}
//
// # Documentation Blocks
//
// A symbol's Doc field holds the contiguous comment run that immediately
// preceded its declaration, verbatim. Recognized documentation tags are
// parsed into DocTags:
//
//	symbol.DocTags // [{param email ...} {return Pointer to User object ...}]
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := symbol.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Search Results
//
// SearchResult combines symbol metadata with relevance scoring:
//
//	result := &types.SearchResult{
//	    ChunkID:        123,
//	    Rank:           1,
//	    RelevanceScore: 0.92,
//	    Symbol:         symbol,
//	    Content:        chunkContent,
//	}
//
// Relevance scores are normalized to [0, 1] range, with higher values
// indicating better matches.
package types
