package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gianged/cindex/internal/storage"
	"github.com/gianged/cindex/pkg/types"
)

// SearchMode defines how search is performed
type SearchMode string

const (
	SearchModeHybrid  SearchMode = "hybrid"  // Symbol + chunk FTS combined with RRF
	SearchModeSymbol  SearchMode = "symbol"  // Symbol name/signature/doc search only
	SearchModeKeyword SearchMode = "keyword" // Chunk content BM25 search only
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query       string
	Limit       int
	Mode        SearchMode
	Filters     *storage.SearchFilters
	ProjectID   int64
	UseCache    bool
	CacheTTL    time.Duration
	RRFConstant float64 // k value for Reciprocal Rank Fusion (default 60)
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results       []types.SearchResult
	TotalResults  int
	SearchMode    SearchMode
	Duration      time.Duration
	CacheHit      bool
	SymbolResults int
	TextResults   int
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher coordinates search operations across symbol and chunk full-text
// indexes
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage) *Searcher {
	// 1000-entry LRU; least recently used queries evict automatically
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// Only reachable with an invalid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage: store,
		cache:   cache,
	}
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	var response *SearchResponse
	var err error

	switch req.Mode {
	case SearchModeHybrid:
		response, err = s.hybridSearch(ctx, req)
	case SearchModeSymbol:
		response, err = s.symbolSearch(ctx, req)
	case SearchModeKeyword:
		response, err = s.keywordSearch(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode)
	}

	if err != nil {
		return nil, err
	}

	response.Duration = time.Since(startTime)
	response.SearchMode = req.Mode

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

// searchLegResult holds results from one concurrent search leg
type searchLegResult struct {
	symbolResults []storage.SymbolResult
	textResults   []storage.TextResult
	err           error
}

// runSymbolSearch executes symbol FTS in a goroutine
func (s *Searcher) runSymbolSearch(ctx context.Context, req SearchRequest, resultChan chan<- searchLegResult) {
	var res searchLegResult
	res.symbolResults, res.err = s.storage.SearchSymbolText(ctx, req.ProjectID, req.Query, req.Limit*2, req.Filters)
	select {
	case resultChan <- res:
	case <-ctx.Done():
	}
}

// runTextSearch executes chunk FTS in a goroutine
func (s *Searcher) runTextSearch(ctx context.Context, req SearchRequest, resultChan chan<- searchLegResult) {
	var res searchLegResult
	res.textResults, res.err = s.storage.SearchText(ctx, req.ProjectID, req.Query, req.Limit*2, req.Filters)
	select {
	case resultChan <- res:
	case <-ctx.Done():
	}
}

// hybridSearch combines symbol and chunk FTS rankings using Reciprocal Rank
// Fusion
func (s *Searcher) hybridSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	symbolChan := make(chan searchLegResult, 1)
	textChan := make(chan searchLegResult, 1)

	go s.runSymbolSearch(ctx, req, symbolChan)
	go s.runTextSearch(ctx, req, textChan)

	var symbolRes, textRes searchLegResult
	var symbolDone, textDone bool
	for !symbolDone || !textDone {
		select {
		case symbolRes = <-symbolChan:
			symbolDone = true
		case textRes = <-textChan:
			textDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// One leg may fail; both failing is an error
	if symbolRes.err != nil && textRes.err != nil {
		return nil, fmt.Errorf("both searches failed: symbol=%w, text=%v", symbolRes.err, textRes.err)
	}

	rrf := applyRRF(symbolRes.symbolResults, textRes.textResults, req.RRFConstant)
	results, err := s.fetchResults(ctx, rrf, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:       results,
		TotalResults:  len(results),
		SymbolResults: len(symbolRes.symbolResults),
		TextResults:   len(textRes.textResults),
	}, nil
}

// symbolSearch ranks chunks by their symbol's FTS relevance
func (s *Searcher) symbolSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	symbolResults, err := s.storage.SearchSymbolText(ctx, req.ProjectID, req.Query, req.Limit, req.Filters)
	if err != nil {
		return nil, err
	}

	ranked := make([]rankedResult, 0, len(symbolResults))
	for _, sr := range symbolResults {
		// Symbols with no chunk (fields, enumerators) have nothing to show
		if sr.ChunkID == 0 {
			continue
		}
		ranked = append(ranked, rankedResult{
			chunkID: sr.ChunkID,
			score:   sr.BM25Score,
			rank:    len(ranked) + 1,
		})
	}

	results, err := s.fetchResults(ctx, ranked, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:       results,
		TotalResults:  len(results),
		SymbolResults: len(symbolResults),
	}, nil
}

// keywordSearch performs only chunk BM25 text search
func (s *Searcher) keywordSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	textResults, err := s.storage.SearchText(ctx, req.ProjectID, req.Query, req.Limit, req.Filters)
	if err != nil {
		return nil, err
	}

	ranked := make([]rankedResult, len(textResults))
	for i, tr := range textResults {
		ranked[i] = rankedResult{
			chunkID: tr.ChunkID,
			score:   tr.BM25Score,
			rank:    i + 1,
		}
	}

	results, err := s.fetchResults(ctx, ranked, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		TextResults:  len(textResults),
	}, nil
}

// rankedResult represents a chunk with its relevance score and rank
type rankedResult struct {
	chunkID int64
	score   float64
	rank    int
}

// applyRRF fuses the two rankings: RRF(d) = sum over lists of 1/(k + rank(d))
func applyRRF(symbolResults []storage.SymbolResult, textResults []storage.TextResult, k float64) []rankedResult {
	if k == 0 {
		k = 60
	}

	scores := make(map[int64]float64)

	rank := 0
	for _, sr := range symbolResults {
		if sr.ChunkID == 0 {
			continue
		}
		rank++
		scores[sr.ChunkID] += 1.0 / (k + float64(rank))
	}

	for rank, tr := range textResults {
		scores[tr.ChunkID] += 1.0 / (k + float64(rank+1))
	}

	results := make([]rankedResult, 0, len(scores))
	for chunkID, score := range scores {
		results = append(results, rankedResult{
			chunkID: chunkID,
			score:   score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].chunkID < results[j].chunkID
	})

	for i := range results {
		results[i].rank = i + 1
	}

	return results
}

// fetchResults retrieves full chunk data and metadata for ranked results
func (s *Searcher) fetchResults(ctx context.Context, ranked []rankedResult, limit int) ([]types.SearchResult, error) {
	if limit > len(ranked) {
		limit = len(ranked)
	}

	results := make([]types.SearchResult, 0, limit)

	for i := 0; i < limit; i++ {
		rr := ranked[i]

		chunk, err := s.storage.GetChunk(ctx, rr.chunkID)
		if err != nil {
			continue // skip chunks that can't be loaded
		}

		file, err := s.storage.GetFileByID(ctx, chunk.FileID)
		if err != nil {
			continue
		}

		var symbol *types.Symbol
		if chunk.SymbolID != nil {
			storageSymbol, err := s.storage.GetSymbol(ctx, *chunk.SymbolID)
			if err == nil {
				typesSymbol := storageSymbol.ToTypesSymbol()
				symbol = &typesSymbol
			}
		}

		results = append(results, types.SearchResult{
			ChunkID:        rr.chunkID,
			Rank:           rr.rank,
			RelevanceScore: rr.score,
			Symbol:         symbol,
			File: &types.FileInfo{
				Path:      file.FilePath,
				Language:  file.Language,
				StartLine: chunk.StartLine,
				EndLine:   chunk.EndLine,
			},
			Content: chunk.Content,
			Context: chunk.ContextBefore,
		})
	}

	return results, nil
}

// validateRequest ensures the search request is valid, filling defaults
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Mode == "" {
		req.Mode = SearchModeHybrid
	}

	if req.RRFConstant == 0 {
		req.RRFConstant = 60
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = 1 * time.Hour
	}

	return nil
}

// checkCache returns a cached response for the request, or nil on a miss or
// an expired entry
func (s *Searcher) checkCache(req SearchRequest) *SearchResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}

	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

// storeInCache saves search results to the cache
func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// InvalidateCache drops all cached queries. Called after re-indexing; the
// LRU does not support per-project filtering so the whole cache is purged.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse so cached
// entries cannot be mutated by callers
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := &SearchResponse{
		TotalResults:  src.TotalResults,
		SearchMode:    src.SearchMode,
		Duration:      src.Duration,
		CacheHit:      src.CacheHit,
		SymbolResults: src.SymbolResults,
		TextResults:   src.TextResults,
		Results:       make([]types.SearchResult, len(src.Results)),
	}

	for i, result := range src.Results {
		dst.Results[i] = types.SearchResult{
			ChunkID:        result.ChunkID,
			Rank:           result.Rank,
			RelevanceScore: result.RelevanceScore,
			Content:        result.Content,
			Context:        result.Context,
		}

		if result.Symbol != nil {
			symbolCopy := *result.Symbol
			symbolCopy.Children = nil
			symbolCopy.Owner = nil
			dst.Results[i].Symbol = &symbolCopy
		}
		if result.File != nil {
			fileCopy := *result.File
			dst.Results[i].File = &fileCopy
		}
	}

	return dst
}

// computeQueryHash computes a stable hash identifying a search request
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(string(req.Mode))
	data.WriteString("|")
	fmt.Fprintf(&data, "%d|%d", req.ProjectID, req.Limit)

	if req.Filters != nil {
		data.WriteString("|filters:")
		data.WriteString(strings.Join(req.Filters.SymbolKinds, ","))
		data.WriteString("|")
		data.WriteString(req.Filters.FilePattern)
		data.WriteString("|")
		data.WriteString(strings.Join(req.Filters.Visibility, ","))
		data.WriteString("|")
		fmt.Fprintf(&data, "%.2f", req.Filters.MinRelevance)
	}

	return sha256.Sum256([]byte(data.String()))
}
