package storage

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// searchText performs BM25 full-text search over chunk content
func searchText(ctx context.Context, q querier, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}

	sqlQuery := `
		SELECT
			c.id as chunk_id,
			bm25(chunks_fts) as score
		FROM chunks_fts
		INNER JOIN chunks c ON chunks_fts.rowid = c.id
		INNER JOIN files f ON c.file_id = f.id
		WHERE chunks_fts MATCH ?
		AND f.project_id = ?
	`
	args := []interface{}{sanitized, projectID}

	sqlQuery, args = applyChunkFilters(sqlQuery, args, filters)

	// Order by BM25 score (lower is better) and limit
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]TextResult, 0)
	for rows.Next() {
		var result TextResult
		if err := rows.Scan(&result.ChunkID, &result.BM25Score); err != nil {
			return nil, err
		}
		result.BM25Score = normalizeBM25(result.BM25Score)
		if filters != nil && filters.MinRelevance > 0 && result.BM25Score < filters.MinRelevance {
			continue
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// searchSymbolText performs BM25 full-text search over symbol names,
// qualified paths, signatures, and documentation. Each hit also reports the
// chunk built for that symbol, when one exists.
func searchSymbolText(ctx context.Context, q querier, projectID int64, query string, limit int, filters *SearchFilters) ([]SymbolResult, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}

	sqlQuery := `
		SELECT
			s.id as symbol_id,
			COALESCE(c.id, 0) as chunk_id,
			bm25(symbols_fts) as score
		FROM symbols_fts
		INNER JOIN symbols s ON symbols_fts.rowid = s.id
		INNER JOIN files f ON s.file_id = f.id
		LEFT JOIN chunks c ON c.symbol_id = s.id
		WHERE symbols_fts MATCH ?
		AND f.project_id = ?
	`
	args := []interface{}{sanitized, projectID}

	sqlQuery, args = applySymbolFilters(sqlQuery, args, filters)

	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute symbol FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SymbolResult, 0)
	for rows.Next() {
		var result SymbolResult
		if err := rows.Scan(&result.SymbolID, &result.ChunkID, &result.BM25Score); err != nil {
			return nil, err
		}
		result.BM25Score = normalizeBM25(result.BM25Score)
		if filters != nil && filters.MinRelevance > 0 && result.BM25Score < filters.MinRelevance {
			continue
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// applyChunkFilters adds WHERE clause filters for chunk text search
func applyChunkFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if len(filters.SymbolKinds) > 0 && filters.SymbolKinds[0] != "" {
		query += " AND c.symbol_id IN (SELECT id FROM symbols WHERE kind IN ("
		for i, kind := range filters.SymbolKinds {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, kind)
		}
		query += "))"
	}

	if len(filters.Visibility) > 0 && filters.Visibility[0] != "" {
		query += " AND c.symbol_id IN (SELECT id FROM symbols WHERE visibility IN ("
		for i, vis := range filters.Visibility {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, vis)
		}
		query += "))"
	}

	if filters.FilePattern != "" {
		query += " AND f.file_path GLOB ?"
		args = append(args, filters.FilePattern)
	}

	return query, args
}

// applySymbolFilters adds WHERE clause filters for symbol text search
func applySymbolFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if len(filters.SymbolKinds) > 0 && filters.SymbolKinds[0] != "" {
		query += " AND s.kind IN ("
		for i, kind := range filters.SymbolKinds {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, kind)
		}
		query += ")"
	}

	if len(filters.Visibility) > 0 && filters.Visibility[0] != "" {
		query += " AND s.visibility IN ("
		for i, vis := range filters.Visibility {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, vis)
		}
		query += ")"
	}

	if filters.FilePattern != "" {
		query += " AND f.file_path GLOB ?"
		args = append(args, filters.FilePattern)
	}

	return query, args
}

// normalizeBM25 converts a BM25 score (negative, lower is better) to a
// positive score in (0, 1]. BM25 scores are typically in range [-50, 0].
func normalizeBM25(score float64) float64 {
	return 1.0 / (1.0 + math.Abs(score)/50.0)
}

// sanitizeFTSQuery rewrites a free-text query into a safe FTS5 match
// expression. Every term is double-quoted so FTS5 operators and punctuation
// in user input are treated as literal text, never as query syntax.
func sanitizeFTSQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !isFTSTermRune(r)
	})
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}

func isFTSTermRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r > 127
}
