package chunker

import (
	"fmt"
	"os"
	"strings"

	"github.com/gianged/cindex/pkg/types"
)

const (
	// MaxTokensPerChunk is the target maximum token count per chunk
	MaxTokensPerChunk = 1000

	// TokensPerChar is the heuristic for estimating tokens (chars/4)
	TokensPerChar = 4
)

// Chunker cuts parsed source files into indexable chunks along symbol
// boundaries
type Chunker struct{}

// New creates a new Chunker instance
func New() *Chunker {
	return &Chunker{}
}

// ChunkFile creates chunks from a source file and its parse result. Each
// callable, type, and enum symbol becomes one chunk carrying the file's
// include list and the symbol's scope path as context; a file with no
// recognized symbols becomes a single file-level chunk.
func (c *Chunker) ChunkFile(filePath string, result *types.ParseResult, fileID int64) ([]*types.Chunk, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return c.ChunkSource(content, result, fileID), nil
}

// ChunkSource chunks an in-memory buffer against its parse result
func (c *Chunker) ChunkSource(content []byte, result *types.ParseResult, fileID int64) []*types.Chunk {
	lines := strings.Split(string(content), "\n")
	fileContext := c.buildIncludeContext(result)

	chunks := make([]*types.Chunk, 0)
	result.Root.Walk(func(sym *types.Symbol) bool {
		_, ok := symbolChunkType(sym.Kind)
		if !ok {
			return true
		}
		if chunk := c.createChunkForSymbol(sym, lines, fileContext, fileID); chunk != nil {
			chunks = append(chunks, chunk)
		}
		return true
	})

	// Nothing recognized: index the whole file as one chunk
	if len(chunks) == 0 && len(content) > 0 {
		if chunk := c.createFileChunk(lines, fileContext, fileID); chunk != nil {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// createChunkForSymbol extracts the symbol's line range as one chunk
func (c *Chunker) createChunkForSymbol(sym *types.Symbol, lines []string, fileContext string, fileID int64) *types.Chunk {
	start, end := sym.Span.Start.Line, sym.Span.End.Line
	if start <= 0 || end <= 0 || start > len(lines) {
		return nil
	}
	if end > len(lines) {
		end = len(lines)
	}

	chunkType, _ := symbolChunkType(sym.Kind)

	chunk := &types.Chunk{
		FileID:        fileID,
		Content:       strings.Join(lines[start-1:end], "\n"),
		ContextBefore: c.buildSymbolContext(fileContext, sym),
		StartLine:     start,
		EndLine:       end,
		ChunkType:     chunkType,
	}
	if chunk.Content == "" {
		return nil
	}

	chunk.ComputeTokenCount()
	chunk.ComputeContentHash()
	return chunk
}

// createFileChunk wraps the entire file into a single chunk
func (c *Chunker) createFileChunk(lines []string, fileContext string, fileID int64) *types.Chunk {
	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}

	chunk := &types.Chunk{
		FileID:        fileID,
		Content:       content,
		ContextBefore: fileContext,
		StartLine:     1,
		EndLine:       len(lines),
		ChunkType:     types.ChunkFile,
	}
	chunk.ComputeTokenCount()
	chunk.ComputeContentHash()
	return chunk
}

// buildIncludeContext renders the file's include directives as context
func (c *Chunker) buildIncludeContext(result *types.ParseResult) string {
	if len(result.Includes) == 0 {
		return ""
	}
	var b strings.Builder
	for _, inc := range result.Includes {
		if inc.System {
			fmt.Fprintf(&b, "#include <%s>\n", inc.Path)
		} else {
			fmt.Fprintf(&b, "#include %q\n", inc.Path)
		}
	}
	return b.String()
}

// buildSymbolContext prepends the enclosing scope path to the file context
func (c *Chunker) buildSymbolContext(fileContext string, sym *types.Symbol) string {
	path := sym.Path()
	if len(path) == 0 {
		return fileContext
	}
	scope := "// scope: " + strings.Join(path, "::")
	if fileContext == "" {
		return scope
	}
	return fileContext + scope
}

// symbolChunkType maps symbol kinds to chunk types. Fields, enumerators,
// and namespaces do not get their own chunks; their content is covered by
// the enclosing type's chunk or by their members' chunks.
func symbolChunkType(kind types.SymbolKind) (types.ChunkType, bool) {
	switch kind {
	case types.KindFunction, types.KindMethod, types.KindConstructor,
		types.KindDestructor, types.KindTemplateFunction:
		return types.ChunkCallable, true
	case types.KindClass, types.KindStruct, types.KindTemplateClass:
		return types.ChunkTypeDecl, true
	case types.KindEnum:
		return types.ChunkEnum, true
	default:
		return "", false
	}
}

// EstimateTokenCount estimates the number of tokens in a string
func EstimateTokenCount(text string) int {
	return len(text) / TokensPerChar
}
