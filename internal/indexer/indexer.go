package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/gianged/cindex/internal/chunker"
	"github.com/gianged/cindex/internal/parser"
	"github.com/gianged/cindex/internal/storage"
	"github.com/gianged/cindex/pkg/types"
)

// ErrIndexInProgress is returned when an indexing run is already underway
// for this Indexer instance.
var ErrIndexInProgress = errors.New("indexing already in progress")

// Indexer coordinates the indexing pipeline: discover -> parse -> chunk -> store
type Indexer struct {
	parser  *parser.Parser
	chunker *chunker.Chunker
	storage storage.Storage

	workers int
	lock    IndexLock
}

// Config contains configuration for an indexing run
type Config struct {
	Workers         int      // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize       int      // Number of files to commit per transaction (default: 16)
	IncludePatterns []string // Glob patterns a file path must match (empty: all C-family files)
	ExcludePatterns []string // Glob patterns that exclude a file path
	Force           bool     // Re-index files even when their content hash is unchanged
}

// Statistics summarizes one indexing run
type Statistics struct {
	FilesIndexed     int
	FilesSkipped     int
	FilesFailed      int
	SymbolsExtracted int
	ChunksCreated    int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return &Indexer{
		parser:  parser.New(),
		chunker: chunker.New(),
		storage: store,
		workers: runtime.NumCPU(),
	}
}

// IndexProject indexes every C-family source file under rootPath. Files
// whose content hash matches the stored record are skipped unless
// config.Force is set. Only one run may be active per Indexer.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	idx.workers = config.Workers

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	project, err := idx.getOrCreateProject(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	matcher, err := newFileMatcher(config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern: %w", err)
	}

	files, err := discoverFiles(absRoot, matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	if err := idx.indexFiles(ctx, project, files, config, stats); err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	if err := idx.updateProjectStats(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		Name:         filepath.Base(rootPath),
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// fileMatcher applies include/exclude glob patterns to slash-separated
// relative paths.
type fileMatcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newFileMatcher(includePatterns, excludePatterns []string) (*fileMatcher, error) {
	m := &fileMatcher{}
	for _, p := range includePatterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", p, err)
		}
		m.include = append(m.include, g)
	}
	for _, p := range excludePatterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// match reports whether relPath passes the pattern filters. An empty
// include list admits every path.
func (m *fileMatcher) match(relPath string) bool {
	for _, g := range m.exclude {
		if g.Match(relPath) {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, g := range m.include {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// cFamilyExtensions gates file discovery before any content is read.
// Language detection proper happens at parse time via enry.
var cFamilyExtensions = map[string]bool{
	".c":    true,
	".h":    true,
	".cc":   true,
	".cpp":  true,
	".cxx":  true,
	".c++":  true,
	".hh":   true,
	".hpp":  true,
	".hxx":  true,
	".h++":  true,
	".inl":  true,
	".ipp":  true,
	".cs":   true,
	".java": true,
}

// discoverFiles finds candidate source files under rootPath. Hidden
// directories and build output directories are never descended into.
func discoverFiles(rootPath string, matcher *fileMatcher) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if path != rootPath && (strings.HasPrefix(name, ".") || name == "build" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		if !cFamilyExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		if !matcher.match(filepath.ToSlash(relPath)) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// indexFiles indexes files concurrently in batch transactions
func (idx *Indexer) indexFiles(ctx context.Context, project *storage.Project, files []string, config *Config, stats *Statistics) error {
	semaphore := make(chan struct{}, idx.workers)

	var (
		indexed int32
		skipped int32
		failed  int32
		symbols int32
		chunks  int32
	)

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // protects stats.ErrorMessages

	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		g.Go(func() error {
			return idx.indexBatch(gctx, project, batch, config, semaphore,
				&indexed, &skipped, &failed, &symbols, &chunks, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.SymbolsExtracted = int(symbols)
	stats.ChunksCreated = int(chunks)

	return nil
}

// indexBatch indexes a batch of files within one transaction. A file that
// fails is recorded and skipped; the batch still commits.
func (idx *Indexer) indexBatch(ctx context.Context, project *storage.Project, files []string,
	config *Config, semaphore chan struct{},
	indexed, skipped, failed, symbols, chunks *int32,
	mu *sync.Mutex, stats *Statistics) error {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		err := idx.indexFile(ctx, tx, project, filePath, config, indexed, skipped, symbols, chunks)
		<-semaphore

		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			mu.Unlock()
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lineSpan keys a symbol's chunk by its source line range
type lineSpan struct {
	start, end int
}

// indexFile parses, chunks, and stores a single file
func (idx *Indexer) indexFile(ctx context.Context, store storage.Storage, project *storage.Project,
	filePath string, config *Config, indexed, skipped, symbols, chunks *int32) error {

	relPath, err := filepath.Rel(project.RootPath, filePath)
	if err != nil {
		return err
	}
	relPath = filepath.ToSlash(relPath)

	content, modTime, sizeBytes, err := readFileWithInfo(filePath)
	if err != nil {
		return err
	}
	hash := sha256.Sum256(content)

	existing, err := store.GetFile(ctx, project.ID, relPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		existing = nil
	case err != nil:
		return err
	case existing.ContentHash == hash && !config.Force:
		atomic.AddInt32(skipped, 1)
		return nil
	}

	result := idx.parser.Parse(relPath, content)

	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    relPath,
		Language:    detectLanguage(filePath, content),
		ContentHash: hash,
		ModTime:     modTime,
		SizeBytes:   sizeBytes,
	}
	if len(result.Errors) > 0 {
		msg := result.Errors[0].Message
		file.ParseError = &msg
	}

	if err := store.UpsertFile(ctx, file); err != nil {
		return err
	}

	// Re-indexing replaces everything derived from the old content
	if existing != nil {
		if err := store.DeleteChunksByFile(ctx, file.ID); err != nil {
			return fmt.Errorf("failed to delete old chunks: %w", err)
		}
		if err := store.DeleteSymbolsByFile(ctx, file.ID); err != nil {
			return fmt.Errorf("failed to delete old symbols: %w", err)
		}
		if err := store.DeleteIncludesByFile(ctx, file.ID); err != nil {
			return fmt.Errorf("failed to delete old includes: %w", err)
		}
	}

	spans := make(map[lineSpan]int64)
	symbolCount, err := idx.storeSymbolTree(ctx, store, file.ID, result.Root.Symbols, nil, spans)
	if err != nil {
		return fmt.Errorf("failed to store symbols: %w", err)
	}

	chunkCount, err := idx.storeChunks(ctx, store, file.ID, content, result, spans)
	if err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	for _, inc := range result.Includes {
		rec := &storage.Include{
			FileID: file.ID,
			Path:   inc.Path,
			System: inc.System,
		}
		if err := store.UpsertInclude(ctx, rec); err != nil {
			return fmt.Errorf("failed to store include: %w", err)
		}
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(symbols, int32(symbolCount))
	atomic.AddInt32(chunks, int32(chunkCount))
	return nil
}

// storeSymbolTree persists a symbol subtree depth-first, wiring each child
// row's parent_id to the freshly inserted parent row. Chunk-bearing symbols
// record their line span so chunks can link back to them.
func (idx *Indexer) storeSymbolTree(ctx context.Context, store storage.Storage, fileID int64,
	syms []*types.Symbol, parentID *int64, spans map[lineSpan]int64) (int, error) {

	count := 0
	for _, sym := range syms {
		rec := storage.FromTypesSymbol(sym, fileID)
		rec.ParentID = parentID
		if err := store.UpsertSymbol(ctx, rec); err != nil {
			return count, err
		}
		count++

		if chunkableKind(sym.Kind) {
			spans[lineSpan{sym.Span.Start.Line, sym.Span.End.Line}] = rec.ID
		}

		childCount, err := idx.storeSymbolTree(ctx, store, fileID, sym.Children, &rec.ID, spans)
		count += childCount
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// storeChunks persists the file's chunks, linking each to its symbol row
// by line span.
func (idx *Indexer) storeChunks(ctx context.Context, store storage.Storage, fileID int64,
	content []byte, result *types.ParseResult, spans map[lineSpan]int64) (int, error) {

	fileChunks := idx.chunker.ChunkSource(content, result, fileID)

	count := 0
	for _, chunk := range fileChunks {
		rec := &storage.Chunk{
			FileID:        fileID,
			Content:       chunk.Content,
			ContentHash:   chunk.ContentHash,
			TokenCount:    chunk.TokenCount,
			StartLine:     chunk.StartLine,
			EndLine:       chunk.EndLine,
			ContextBefore: chunk.ContextBefore,
			ChunkType:     string(chunk.ChunkType),
		}
		if chunk.ChunkType != types.ChunkFile {
			if symbolID, ok := spans[lineSpan{chunk.StartLine, chunk.EndLine}]; ok {
				rec.SymbolID = &symbolID
			}
		}
		if err := store.UpsertChunk(ctx, rec); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// chunkableKind mirrors the chunker's symbol selection
func chunkableKind(kind types.SymbolKind) bool {
	switch kind {
	case types.KindFunction, types.KindMethod, types.KindConstructor,
		types.KindDestructor, types.KindTemplateFunction,
		types.KindClass, types.KindStruct, types.KindTemplateClass,
		types.KindEnum:
		return true
	default:
		return false
	}
}

// updateProjectStats refreshes the project's file and chunk counts
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project) error {
	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	totalChunks := 0
	for _, file := range files {
		fileChunks, err := idx.storage.ListChunksByFile(ctx, file.ID)
		if err != nil {
			return err
		}
		totalChunks += len(fileChunks)
	}

	project.TotalFiles = len(files)
	project.TotalChunks = totalChunks
	project.LastIndexedAt = time.Now()
	project.IndexVersion = storage.CurrentSchemaVersion

	return idx.storage.UpdateProject(ctx, project)
}

// detectLanguage classifies the file's language. enry works from filename
// and content; the extension map is the fallback for ambiguous headers it
// cannot place.
func detectLanguage(filePath string, content []byte) string {
	if lang := enry.GetLanguage(filepath.Base(filePath), content); lang != "" && lang != enry.OtherLanguage {
		return lang
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".c":
		return "C"
	case ".cs":
		return "C#"
	case ".java":
		return "Java"
	default:
		return "C++"
	}
}

// readFileWithInfo reads a file and returns its content, mod time, and size
func readFileWithInfo(filePath string) ([]byte, time.Time, int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	return content, info.ModTime(), info.Size(), nil
}
