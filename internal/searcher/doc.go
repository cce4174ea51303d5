// Package searcher coordinates search over the indexed corpus.
//
// Two full-text indexes back every query: the chunk index over code content
// and the symbol index over names, qualified paths, signatures, and doc
// comments. Three modes expose them:
//
//   - keyword: BM25 over chunk content only
//   - symbol:  BM25 over symbol metadata only
//   - hybrid:  both, fused with Reciprocal Rank Fusion (the default)
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    Query:     "connection pool",
//	    ProjectID: project.ID,
//	    Limit:     10,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("%s:%d %.3f\n", r.File.Path, r.File.StartLine, r.RelevanceScore)
//	}
//
// # Reciprocal Rank Fusion
//
// Hybrid mode runs both legs concurrently and merges their rankings by
//
//	RRF(chunk) = sum over lists of 1/(k + rank(chunk))
//
// with k = 60 by default. A chunk appearing in both rankings accumulates
// both terms and rises above single-list hits. One leg failing degrades to
// the other's ranking; both failing is an error.
//
// # Query Cache
//
// Responses are cached in a 1000-entry LRU keyed by a hash of the request
// (query, mode, project, limit, filters). Entries carry a TTL (default one
// hour) and are copied on read and write so callers cannot mutate cached
// data. InvalidateCache purges the cache after re-indexing.
package searcher
