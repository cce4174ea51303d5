package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates a server backed by a temp database directory
func newTestServer(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.storage.Close() })

	return server
}

// newTestProject writes a small C++ project and returns its absolute root
func newTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	source := `#include <vector>

namespace geo {

// Euclidean distance between two points.
double distance(double x1, double y1, double x2, double y2) {
    return 0.0;
}

class Point {
public:
    Point(double x, double y);
    double norm() const { return 0.0; }
private:
    double x;
    double y;
};

}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geo.cpp"), []byte(source), 0o644))

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	return abs
}

// toolRequest builds a CallToolRequest with the given arguments
func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultJSON decodes a tool result's text content as JSON
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	return data
}

func TestNewServer_Components(t *testing.T) {
	server := newTestServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.storage)
	assert.NotNil(t, server.indexer)
	assert.NotNil(t, server.searcher)
}

func TestHandleIndexCodebase(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)

	result, err := server.handleIndexCodebase(context.Background(),
		toolRequest("index_codebase", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	data := resultJSON(t, result)
	assert.Equal(t, true, data["indexed"])
	assert.Equal(t, float64(1), data["files_indexed"])
	assert.Greater(t, data["symbols_extracted"], float64(3))
}

func TestHandleIndexCodebase_RelativePath(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleIndexCodebase(context.Background(),
		toolRequest("index_codebase", map[string]interface{}{"path": "relative/dir"}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexCodebase_NoSources(t *testing.T) {
	server := newTestServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	_, err := server.handleIndexCodebase(context.Background(),
		toolRequest("index_codebase", map[string]interface{}{"path": dir}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeProjectNotFound, mcpErr.Code)
}

func TestHandleSearchCode(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)
	ctx := context.Background()

	_, err := server.handleIndexCodebase(ctx,
		toolRequest("index_codebase", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err := server.handleSearchCode(ctx,
		toolRequest("search_code", map[string]interface{}{
			"path":  root,
			"query": "distance",
		}))
	require.NoError(t, err)

	data := resultJSON(t, result)
	assert.Equal(t, "hybrid", data["search_mode"])
	results, ok := data["results"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, results)

	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "geo.cpp", first["file"])
	assert.Contains(t, first["content"], "distance")
}

func TestHandleSearchCode_NotIndexed(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)

	_, err := server.handleSearchCode(context.Background(),
		toolRequest("search_code", map[string]interface{}{
			"path":  root,
			"query": "distance",
		}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNotIndexed, mcpErr.Code)
}

func TestHandleSearchCode_EmptyQuery(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)

	_, err := server.handleSearchCode(context.Background(),
		toolRequest("search_code", map[string]interface{}{
			"path":  root,
			"query": "  ",
		}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleSearchCode_InvalidMode(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)

	_, err := server.handleSearchCode(context.Background(),
		toolRequest("search_code", map[string]interface{}{
			"path":        root,
			"query":       "distance",
			"search_mode": "vector",
		}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleGetSymbols(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)
	ctx := context.Background()

	_, err := server.handleIndexCodebase(ctx,
		toolRequest("index_codebase", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err := server.handleGetSymbols(ctx,
		toolRequest("get_symbols", map[string]interface{}{
			"path": root,
			"file": "geo.cpp",
		}))
	require.NoError(t, err)

	data := resultJSON(t, result)
	assert.Equal(t, "geo.cpp", data["file"])

	symbols, ok := data["symbols"].([]interface{})
	require.True(t, ok)
	require.Len(t, symbols, 1, "one top-level namespace")

	ns, ok := symbols[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "geo", ns["name"])
	assert.Equal(t, "namespace", ns["kind"])

	children, ok := ns["children"].([]interface{})
	require.True(t, ok)
	require.Len(t, children, 2, "distance and Point")

	point, ok := children[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Point", point["name"])
	assert.NotEmpty(t, point["children"])
}

func TestHandleGetSymbols_FileNotIndexed(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)
	ctx := context.Background()

	_, err := server.handleIndexCodebase(ctx,
		toolRequest("index_codebase", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	_, err = server.handleGetSymbols(ctx,
		toolRequest("get_symbols", map[string]interface{}{
			"path": root,
			"file": "missing.cpp",
		}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeFileNotFound, mcpErr.Code)
}

func TestHandleGetStatus(t *testing.T) {
	server := newTestServer(t)
	root := newTestProject(t)
	ctx := context.Background()

	// Before indexing: reported as not indexed, not an error
	result, err := server.handleGetStatus(ctx,
		toolRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	data := resultJSON(t, result)
	assert.Equal(t, false, data["indexed"])

	_, err = server.handleIndexCodebase(ctx,
		toolRequest("index_codebase", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	result, err = server.handleGetStatus(ctx,
		toolRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	data = resultJSON(t, result)
	assert.Equal(t, true, data["indexed"])

	stats, ok := data["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), stats["files_count"])
	assert.Greater(t, stats["symbols_count"], float64(0))
}

func TestValidatePath(t *testing.T) {
	projectDir := newTestProject(t)
	emptyDir := t.TempDir()

	filePath := filepath.Join(projectDir, "geo.cpp")

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid project", projectDir, nil},
		{"empty", "", ErrPathRequired},
		{"relative", "some/dir", ErrPathNotAbsolute},
		{"missing", filepath.Join(emptyDir, "nope"), ErrPathNotFound},
		{"file not dir", filePath, ErrNotDirectory},
		{"no sources", emptyDir, ErrNoSourceFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseFilters(t *testing.T) {
	args := map[string]interface{}{
		"filters": map[string]interface{}{
			"symbol_kinds":  []interface{}{"function", "method"},
			"visibility":    []interface{}{"public"},
			"file_pattern":  "src/*",
			"min_relevance": 0.25,
		},
	}

	filters := parseFilters(args)
	require.NotNil(t, filters)
	assert.Equal(t, []string{"function", "method"}, filters.SymbolKinds)
	assert.Equal(t, []string{"public"}, filters.Visibility)
	assert.Equal(t, "src/*", filters.FilePattern)
	assert.Equal(t, 0.25, filters.MinRelevance)

	assert.Nil(t, parseFilters(map[string]interface{}{}))
}
