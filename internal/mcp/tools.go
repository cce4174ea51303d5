package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gianged/cindex/internal/indexer"
	"github.com/gianged/cindex/internal/searcher"
	"github.com/gianged/cindex/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain C-family sources
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeFileNotFound       = -32005 // File not part of the index
)

// handleIndexCodebase handles the index_codebase tool invocation
func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoSourceFiles) {
			code = ErrorCodeProjectNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	config := &indexer.Config{
		Force:           getBoolDefault(args, "force_reindex", false),
		IncludePatterns: getStringSlice(args, "include_patterns"),
		ExcludePatterns: getStringSlice(args, "exclude_patterns"),
	}

	stats, err := s.indexer.IndexProject(ctx, path, config)
	if err != nil {
		if errors.Is(err, indexer.ErrIndexInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Stored content changed; cached query results are stale
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"indexed":           true,
		"files_indexed":     stats.FilesIndexed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"symbols_extracted": stats.SymbolsExtracted,
		"chunks_created":    stats.ChunksCreated,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
		} else {
			response["errors"] = stats.ErrorMessages
		}
		response["error_count"] = errorCount
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	searchMode := getStringDefault(args, "search_mode", "hybrid")
	switch searchMode {
	case "hybrid", "symbol", "keyword":
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   searchMode,
			"allowed": []string{"hybrid", "symbol", "keyword"},
		})
	}

	project, err := s.lookupProject(ctx, path)
	if err != nil {
		return nil, err
	}

	req := searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		Mode:      searcher.SearchMode(searchMode),
		Filters:   parseFilters(args),
		ProjectID: project.ID,
		UseCache:  true,
	}

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		entry := map[string]interface{}{
			"rank":       r.Rank,
			"score":      r.RelevanceScore,
			"file":       r.File.Path,
			"language":   r.File.Language,
			"start_line": r.File.StartLine,
			"end_line":   r.File.EndLine,
			"content":    r.Content,
		}
		if r.Context != "" {
			entry["context"] = r.Context
		}
		if r.Symbol != nil {
			entry["symbol"] = map[string]interface{}{
				"name":           r.Symbol.Name,
				"kind":           string(r.Symbol.Kind),
				"qualified_name": r.Symbol.QualifiedName(),
				"signature":      r.Symbol.Signature,
				"visibility":     string(r.Symbol.Visibility),
			}
		}
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"query":         query,
		"search_mode":   searchMode,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSymbols handles the get_symbols tool invocation
func (s *Server) handleGetSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	filePath, ok := args["file"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}
	filePath = filepath.ToSlash(filePath)

	project, err := s.lookupProject(ctx, path)
	if err != nil {
		return nil, err
	}

	file, err := s.storage.GetFile(ctx, project.ID, filePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeFileNotFound, "file not indexed", map[string]interface{}{
			"file": filePath,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load file", map[string]interface{}{
			"error": err.Error(),
		})
	}

	symbols, err := s.storage.ListSymbolsByFile(ctx, file.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load symbols", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"file":     filePath,
		"language": file.Language,
		"symbols":  buildSymbolForest(symbols),
	}
	if file.ParseError != nil {
		response["parse_error"] = *file.ParseError
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	project, err := s.storage.GetProject(ctx, absPath)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"path":    absPath,
			"message": "Project not indexed. Use index_codebase tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"name":            project.Name,
			"index_version":   project.IndexVersion,
			"last_indexed_at": project.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"files_count":   status.FilesCount,
			"symbols_count": status.SymbolsCount,
			"chunks_count":  status.ChunksCount,
			"index_size_mb": fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// lookupProject resolves an indexed project by root path
func (s *Server) lookupProject(ctx context.Context, path string) (*storage.Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	project, err := s.storage.GetProject(ctx, absPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path": absPath,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load project", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return project, nil
}

// parseFilters converts the filters argument into storage search filters
func parseFilters(args map[string]interface{}) *storage.SearchFilters {
	raw, ok := args["filters"].(map[string]interface{})
	if !ok {
		return nil
	}

	filters := &storage.SearchFilters{
		FilePattern: getStringDefault(raw, "file_pattern", ""),
		SymbolKinds: getStringSlice(raw, "symbol_kinds"),
		Visibility:  getStringSlice(raw, "visibility"),
	}
	if v, ok := raw["min_relevance"].(float64); ok {
		filters.MinRelevance = v
	}
	return filters
}

// symbolNode is the JSON shape of one symbol in the get_symbols response
type symbolNode struct {
	Name          string        `json:"name"`
	Kind          string        `json:"kind"`
	QualifiedPath string        `json:"qualified_path"`
	Signature     string        `json:"signature,omitempty"`
	Doc           string        `json:"doc,omitempty"`
	Visibility    string        `json:"visibility,omitempty"`
	Declaration   bool          `json:"declaration_only,omitempty"`
	StartLine     int           `json:"start_line"`
	EndLine       int           `json:"end_line"`
	Children      []*symbolNode `json:"children,omitempty"`
}

// buildSymbolForest reassembles the flat symbol rows into their declaration
// tree using parent IDs. Rows arrive in insertion order, so parents precede
// their children.
func buildSymbolForest(symbols []*storage.Symbol) []*symbolNode {
	nodes := make(map[int64]*symbolNode, len(symbols))
	roots := make([]*symbolNode, 0)

	for _, sym := range symbols {
		node := &symbolNode{
			Name:          sym.Name,
			Kind:          sym.Kind,
			QualifiedPath: sym.QualifiedPath,
			Signature:     sym.Signature,
			Doc:           sym.DocComment,
			Visibility:    sym.Visibility,
			Declaration:   sym.DeclarationOnly,
			StartLine:     sym.StartLine,
			EndLine:       sym.EndLine,
		}
		nodes[sym.ID] = node

		if sym.ParentID != nil {
			if parent, ok := nodes[*sym.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that a path is an absolute, readable directory that
// contains at least one C-family source file
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	if !hasSourceFiles(path) {
		return ErrNoSourceFiles
	}

	return nil
}

// hasSourceFiles reports whether the tree contains at least one C-family
// source file
func hasSourceFiles(path string) bool {
	found := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".c", ".h", ".cc", ".cpp", ".cxx", ".c++", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp", ".cs", ".java":
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Validation sentinels

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoSourceFiles   = errors.New("directory does not contain C-family source files")
)
