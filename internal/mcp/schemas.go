package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexCodebaseTool returns the tool definition for index_codebase
func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index a C-family codebase to make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index all files ignoring content hashes (full rebuild)",
					"default":     false,
				},
				"include_patterns": map[string]interface{}{
					"type":        "array",
					"description": "Glob patterns a file path must match to be indexed (e.g. 'src/**')",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"exclude_patterns": map[string]interface{}{
					"type":        "array",
					"description": "Glob patterns excluding file paths (e.g. 'third_party/**')",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search an indexed codebase for symbols and code content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to an indexed project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (symbol names, keywords, doc comment text)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (symbol + keyword fused), symbol (names/signatures/docs only), or keyword (code content only)",
					"enum":        []string{"hybrid", "symbol", "keyword"},
					"default":     "hybrid",
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"symbol_kinds": map[string]interface{}{
							"type":        "array",
							"description": "Filter by symbol kind",
							"items": map[string]interface{}{
								"type": "string",
								"enum": []string{
									"namespace", "class", "struct", "enum", "enumerator",
									"function", "method", "constructor", "destructor",
									"template_function", "template_class", "field",
								},
							},
						},
						"visibility": map[string]interface{}{
							"type":        "array",
							"description": "Filter by member visibility",
							"items": map[string]interface{}{
								"type": "string",
								"enum": []string{"public", "protected", "private", "unspecified"},
							},
						},
						"file_pattern": map[string]interface{}{
							"type":        "string",
							"description": "Glob pattern for file paths (e.g. 'src/*')",
						},
						"min_relevance": map[string]interface{}{
							"type":        "number",
							"description": "Minimum relevance score threshold (0.0-1.0)",
							"minimum":     0.0,
							"maximum":     1.0,
						},
					},
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getSymbolsTool returns the tool definition for get_symbols
func getSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_symbols",
		Description: "List the declaration tree extracted from one indexed source file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to an indexed project",
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root (e.g. 'src/auth.cpp')",
				},
			},
			Required: []string{"path", "file"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
			},
			Required: []string{"path"},
		},
	}
}
