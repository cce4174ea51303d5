package storage

import (
	"context"
	"time"

	"github.com/gianged/cindex/pkg/types"
)

// Storage defines the interface for persisting and querying indexed code data
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	GetFileByHash(ctx context.Context, contentHash [32]byte) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Symbol operations
	UpsertSymbol(ctx context.Context, symbol *Symbol) error
	GetSymbol(ctx context.Context, symbolID int64) (*Symbol, error)
	ListSymbolsByFile(ctx context.Context, fileID int64) ([]*Symbol, error)
	ListSymbolChildren(ctx context.Context, symbolID int64) ([]*Symbol, error)
	DeleteSymbolsByFile(ctx context.Context, fileID int64) error
	SearchSymbols(ctx context.Context, query string, limit int) ([]*Symbol, error)

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*Chunk, error)
	ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error)
	DeleteChunk(ctx context.Context, chunkID int64) error
	DeleteChunksByFile(ctx context.Context, fileID int64) error

	// Search operations
	SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error)
	SearchSymbolText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]SymbolResult, error)

	// Include operations
	UpsertInclude(ctx context.Context, inc *Include) error
	ListIncludesByFile(ctx context.Context, fileID int64) ([]*Include, error)
	DeleteIncludesByFile(ctx context.Context, fileID int64) error

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed codebase
type Project struct {
	ID            int64
	RootPath      string
	Name          string
	TotalFiles    int
	TotalChunks   int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File represents a tracked source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	Language      string
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Symbol represents one declaration extracted from a source file. The tree
// shape survives flattening: ParentID points at the enclosing container
// symbol's row and QualifiedPath is the "::"-joined scope path.
type Symbol struct {
	ID              int64
	FileID          int64
	ParentID        *int64 // Nullable, top-level symbols have no parent
	Name            string
	Kind            string
	QualifiedPath   string
	Signature       string
	DocComment      string
	Visibility      string
	DeclarationOnly bool
	StartLine       int
	StartCol        int
	EndLine         int
	EndCol          int
	CreatedAt       time.Time
}

// Chunk represents an indexed code section
type Chunk struct {
	ID            int64
	FileID        int64
	SymbolID      *int64 // Nullable
	Content       string
	ContentHash   [32]byte
	TokenCount    int
	StartLine     int
	EndLine       int
	ContextBefore string
	ChunkType     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Include represents an include directive in a source file
type Include struct {
	ID        int64
	FileID    int64
	Path      string
	System    bool
	CreatedAt time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	SymbolKinds  []string // Filter by symbol kind
	FilePattern  string   // Glob pattern for file paths
	Visibility   []string // Filter by member visibility
	MinRelevance float64  // Minimum relevance score
}

// TextResult represents a result from chunk full-text search
type TextResult struct {
	ChunkID   int64
	BM25Score float64
}

// SymbolResult represents a result from symbol full-text search
type SymbolResult struct {
	SymbolID  int64
	ChunkID   int64 // 0 when the symbol has no associated chunk
	BM25Score float64
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project       *Project
	FilesCount    int
	SymbolsCount  int
	ChunksCount   int
	IndexSizeMB   float64
	LastIndexedAt time.Time
	IndexDuration time.Duration
	Health        HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

// ToTypesSymbol converts a storage Symbol back to the parser's symbol shape
func (s *Symbol) ToTypesSymbol() types.Symbol {
	return types.Symbol{
		Name:            s.Name,
		Kind:            types.SymbolKind(s.Kind),
		StoredPath:      s.QualifiedPath,
		Signature:       s.Signature,
		Doc:             s.DocComment,
		Visibility:      types.Visibility(s.Visibility),
		DeclarationOnly: s.DeclarationOnly,
		Span: types.Span{
			Start: types.Position{Line: s.StartLine, Column: s.StartCol},
			End:   types.Position{Line: s.EndLine, Column: s.EndCol},
		},
	}
}

// FromTypesSymbol converts a parsed symbol to its storage row. The parent
// linkage is the caller's concern; it is only known once the parent row has
// an ID.
func FromTypesSymbol(s *types.Symbol, fileID int64) *Symbol {
	return &Symbol{
		FileID:          fileID,
		Name:            s.Name,
		Kind:            string(s.Kind),
		QualifiedPath:   s.QualifiedName(),
		Signature:       s.Signature,
		DocComment:      s.Doc,
		Visibility:      string(s.Visibility),
		DeclarationOnly: s.DeclarationOnly,
		StartLine:       s.Span.Start.Line,
		StartCol:        s.Span.Start.Column,
		EndLine:         s.Span.End.Line,
		EndCol:          s.Span.End.Column,
	}
}
