package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gianged/cindex/internal/storage"
)

// seedIndex populates an in-memory database with a small indexed project:
// two callables with linked chunks plus one file-level chunk.
func seedIndex(t *testing.T) (storage.Storage, int64) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	project := &storage.Project{RootPath: "/tmp/searchable", Name: "searchable"}
	require.NoError(t, store.CreateProject(ctx, project))

	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    "src/db.cpp",
		Language:    "C++",
		ContentHash: [32]byte{1},
		ModTime:     time.Now(),
		SizeBytes:   256,
	}
	require.NoError(t, store.UpsertFile(ctx, file))

	connect := &storage.Symbol{
		FileID:        file.ID,
		Name:          "connectDatabase",
		Kind:          "function",
		QualifiedPath: "db::connectDatabase",
		Signature:     "()",
		DocComment:    "Opens the connection pool.",
		Visibility:    "public",
		StartLine:     10,
		EndLine:       14,
	}
	require.NoError(t, store.UpsertSymbol(ctx, connect))

	closeFn := &storage.Symbol{
		FileID:        file.ID,
		Name:          "closeDatabase",
		Kind:          "function",
		QualifiedPath: "db::closeDatabase",
		Signature:     "()",
		DocComment:    "Releases the connection pool.",
		Visibility:    "public",
		StartLine:     20,
		EndLine:       24,
	}
	require.NoError(t, store.UpsertSymbol(ctx, closeFn))

	for _, c := range []*storage.Chunk{
		{
			FileID:      file.ID,
			SymbolID:    &connect.ID,
			Content:     "int connectDatabase() {\n    return pool.open();\n}",
			ContentHash: [32]byte{2},
			TokenCount:  12,
			StartLine:   10,
			EndLine:     14,
			ChunkType:   "callable",
		},
		{
			FileID:      file.ID,
			SymbolID:    &closeFn.ID,
			Content:     "void closeDatabase() {\n    pool.release();\n}",
			ContentHash: [32]byte{3},
			TokenCount:  10,
			StartLine:   20,
			EndLine:     24,
			ChunkType:   "callable",
		},
		{
			FileID:      file.ID,
			Content:     "// logging helpers shared by the transport layer",
			ContentHash: [32]byte{4},
			TokenCount:  8,
			StartLine:   30,
			EndLine:     31,
			ChunkType:   "file",
		},
	} {
		require.NoError(t, store.UpsertChunk(ctx, c))
	}

	return store, project.ID
}

func TestSearch_Keyword(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, SearchModeKeyword, resp.SearchMode)
	assert.Contains(t, resp.Results[0].Content, "connectDatabase")
	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.Equal(t, "src/db.cpp", resp.Results[0].File.Path)
}

func TestSearch_Symbol(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "connection pool",
		Mode:      SearchModeSymbol,
		ProjectID: projectID,
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, 2, resp.SymbolResults, "both doc comments mention the pool")
	for _, r := range resp.Results {
		require.NotNil(t, r.Symbol)
		assert.Contains(t, r.Symbol.Name, "Database")
		assert.Equal(t, "db::"+r.Symbol.Name, r.Symbol.QualifiedName())
	}
}

func TestSearch_Hybrid(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "connectDatabase",
		ProjectID: projectID,
	})
	require.NoError(t, err)

	assert.Equal(t, SearchModeHybrid, resp.SearchMode, "hybrid is the default mode")
	require.NotEmpty(t, resp.Results)
	assert.Contains(t, resp.Results[0].Content, "connectDatabase")
	assert.Greater(t, resp.Results[0].RelevanceScore, 0.0)
	assert.LessOrEqual(t, resp.Results[0].RelevanceScore, 1.0)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	_, err := s.Search(context.Background(), SearchRequest{
		Query:     "   ",
		ProjectID: projectID,
	})
	assert.Error(t, err)
}

func TestSearch_UnsupportedMode(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	_, err := s.Search(context.Background(), SearchRequest{
		Query:     "pool",
		Mode:      SearchMode("semantic"),
		ProjectID: projectID,
	})
	assert.Error(t, err)
}

func TestSearch_NoMatches(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "nonexistentquerytoken",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalResults)
}

func TestSearch_CacheHit(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
		UseCache:  true,
	}

	first, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.TotalResults, second.TotalResults)
}

func TestSearch_CacheExpiry(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
		UseCache:  true,
		CacheTTL:  time.Millisecond,
	}

	_, err := s.Search(ctx, req)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	resp, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestInvalidateCache(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
		UseCache:  true,
	}

	_, err := s.Search(ctx, req)
	require.NoError(t, err)

	s.InvalidateCache()

	resp, err := s.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestSearch_CachedResponseIsACopy(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
		UseCache:  true,
	}

	first, err := s.Search(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)
	first.Results[0].Content = "mutated"

	second, err := s.Search(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, second.Results)
	assert.NotEqual(t, "mutated", second.Results[0].Content)
}

func TestSearch_FilePatternFilter(t *testing.T) {
	store, projectID := seedIndex(t)
	s := NewSearcher(store)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "connectDatabase",
		Mode:      SearchModeKeyword,
		ProjectID: projectID,
		Filters:   &storage.SearchFilters{FilePattern: "lib/*"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestApplyRRF(t *testing.T) {
	symbolResults := []storage.SymbolResult{
		{SymbolID: 1, ChunkID: 100, BM25Score: 0.9},
		{SymbolID: 2, ChunkID: 200, BM25Score: 0.5},
		{SymbolID: 3, ChunkID: 0, BM25Score: 0.4}, // no chunk, dropped
	}
	textResults := []storage.TextResult{
		{ChunkID: 300, BM25Score: 0.8},
		{ChunkID: 100, BM25Score: 0.6},
	}

	ranked := applyRRF(symbolResults, textResults, 60)

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(100), ranked[0].chunkID, "chunk in both lists fuses highest")
	assert.Equal(t, 1, ranked[0].rank)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].score, ranked[i].score)
		assert.Equal(t, i+1, ranked[i].rank)
	}
}

func TestApplyRRF_DefaultConstant(t *testing.T) {
	textResults := []storage.TextResult{{ChunkID: 1, BM25Score: 0.5}}

	ranked := applyRRF(nil, textResults, 0)

	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.0/61.0, ranked[0].score, 1e-9)
}

func TestValidateRequest_Defaults(t *testing.T) {
	s := &Searcher{}

	req := SearchRequest{Query: "pool"}
	require.NoError(t, s.validateRequest(&req))

	assert.Equal(t, 10, req.Limit)
	assert.Equal(t, SearchModeHybrid, req.Mode)
	assert.Equal(t, float64(60), req.RRFConstant)
	assert.Equal(t, time.Hour, req.CacheTTL)

	req = SearchRequest{Query: "pool", Limit: 5000}
	require.NoError(t, s.validateRequest(&req))
	assert.Equal(t, 100, req.Limit)
}

func TestComputeQueryHash_Distinguishes(t *testing.T) {
	base := SearchRequest{Query: "pool", Mode: SearchModeKeyword, ProjectID: 1, Limit: 10}

	other := base
	other.Query = "pools"
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	other = base
	other.Filters = &storage.SearchFilters{FilePattern: "src/*"}
	assert.NotEqual(t, computeQueryHash(base), computeQueryHash(other))

	assert.Equal(t, computeQueryHash(base), computeQueryHash(base))
}
