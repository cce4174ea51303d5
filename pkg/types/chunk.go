package types

import (
	"crypto/sha256"
	"errors"
)

// ChunkType represents the type of code chunk
type ChunkType string

const (
	ChunkCallable  ChunkType = "callable"
	ChunkTypeDecl  ChunkType = "type"
	ChunkEnum      ChunkType = "enum"
	ChunkNamespace ChunkType = "namespace"
	ChunkFile      ChunkType = "file"
)

// Chunk represents a semantically meaningful code section for indexing and
// search, cut along symbol boundaries
type Chunk struct {
	// Identification
	ID       int64
	FileID   int64
	SymbolID *int64 // Nullable - file-level chunks have no symbol

	// Content
	Content       string
	ContentHash   [32]byte // SHA-256 hash for deduplication
	TokenCount    int
	ContextBefore string // include list and enclosing scope path

	// Location
	StartLine int
	EndLine   int

	// Metadata
	ChunkType ChunkType
}

// ValidateContent checks if the chunk content is valid
func (c *Chunk) ValidateContent() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}

// ComputeTokenCount estimates the number of tokens in the chunk
// Uses a simple heuristic: characters / 4
func (c *Chunk) ComputeTokenCount() int {
	totalChars := len(c.Content) + len(c.ContextBefore)
	c.TokenCount = totalChars / 4
	return c.TokenCount
}

// ComputeContentHash computes the SHA-256 hash of the chunk content
func (c *Chunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Content))
}

// ValidateChunkType checks if the chunk type is valid
func (c *Chunk) ValidateChunkType() error {
	switch c.ChunkType {
	case ChunkCallable, ChunkTypeDecl, ChunkEnum, ChunkNamespace, ChunkFile:
		return nil
	default:
		return errors.New("invalid chunk type")
	}
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	if err := c.ValidateChunkType(); err != nil {
		return err
	}

	if c.FileID == 0 {
		return errors.New("file ID is required")
	}

	var zeroHash [32]byte
	if c.ContentHash == zeroHash {
		return errors.New("content hash must be computed")
	}

	return nil
}

// FullContent returns the complete content including context
func (c *Chunk) FullContent() string {
	if c.ContextBefore == "" {
		return c.Content
	}
	return c.ContextBefore + "\n\n" + c.Content
}
