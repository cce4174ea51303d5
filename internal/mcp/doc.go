// Package mcp implements the Model Context Protocol server exposing the
// index to AI assistants over stdio.
//
// # Tools
//
//   - index_codebase: index a project tree (incremental by content hash,
//     optional include/exclude glob patterns, force_reindex for a rebuild)
//   - search_code: query the index in hybrid, symbol, or keyword mode with
//     optional kind/visibility/file-pattern filters
//   - get_symbols: return the declaration tree stored for one file
//   - get_status: report index statistics and health for a project
//
// All tools take an absolute project root path; results are rendered as
// indented JSON text content.
//
// # Errors
//
// Handlers return *MCPError values carrying JSON-RPC error codes: the
// standard -32602 (invalid params) and -32603 (internal), plus
// application codes -32001 (no C-family sources at path), -32002 (indexing
// already in progress), -32003 (project not indexed), -32004 (empty
// query), and -32005 (file not in the index).
//
// # Serving
//
// The server speaks MCP over stdin/stdout:
//
//	s, err := mcp.NewServer(dbPath)
//	if err != nil {
//	    return err
//	}
//	return s.Serve(ctx)
//
// Anything the process logs must go to stderr; stdout carries the protocol.
package mcp
