package storage

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func testProject(t *testing.T, s *SQLiteStorage) *Project {
	t.Helper()
	project := &Project{
		RootPath:     "/test/path",
		Name:         "authlib",
		IndexVersion: CurrentSchemaVersion,
	}
	require.NoError(t, s.CreateProject(context.Background(), project))
	return project
}

func testFile(t *testing.T, s *SQLiteStorage, projectID int64, path string) *File {
	t.Helper()
	file := &File{
		ProjectID:   projectID,
		FilePath:    path,
		Language:    "cpp",
		ContentHash: sha256.Sum256([]byte(path)),
		ModTime:     time.Now(),
		SizeBytes:   128,
	}
	require.NoError(t, s.UpsertFile(context.Background(), file))
	return file
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	assert.Greater(t, project.ID, int64(0))

	// Duplicate root path violates the unique constraint
	duplicate := &Project{RootPath: "/test/path", IndexVersion: "1.0.0"}
	assert.Error(t, storage.CreateProject(ctx, duplicate))
}

func TestGetProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	project := testProject(t, storage)

	retrieved, err := storage.GetProject(context.Background(), "/test/path")
	require.NoError(t, err)
	assert.Equal(t, project.ID, retrieved.ID)
	assert.Equal(t, "authlib", retrieved.Name)

	_, err = storage.GetProject(context.Background(), "/no/such/path")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)

	project.TotalFiles = 12
	project.TotalChunks = 80
	project.LastIndexedAt = time.Now()
	require.NoError(t, storage.UpdateProject(ctx, project))

	retrieved, err := storage.GetProject(ctx, project.RootPath)
	require.NoError(t, err)
	assert.Equal(t, 12, retrieved.TotalFiles)
	assert.Equal(t, 80, retrieved.TotalChunks)
	assert.False(t, retrieved.LastIndexedAt.IsZero())
}

func TestUpsertFile(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth_service.cpp")
	firstID := file.ID
	assert.Greater(t, firstID, int64(0))

	// Upserting the same path updates in place and keeps the row ID
	file.SizeBytes = 999
	require.NoError(t, storage.UpsertFile(ctx, file))
	assert.Equal(t, firstID, file.ID)

	retrieved, err := storage.GetFile(ctx, project.ID, "src/auth_service.cpp")
	require.NoError(t, err)
	assert.Equal(t, int64(999), retrieved.SizeBytes)
	assert.Equal(t, "cpp", retrieved.Language)
}

func TestGetFileByHash(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/user.cpp")

	retrieved, err := storage.GetFileByHash(ctx, file.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, file.ID, retrieved.ID)

	_, err = storage.GetFileByHash(ctx, sha256.Sum256([]byte("nothing")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDeleteFiles(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	a := testFile(t, storage, project.ID, "a.cpp")
	testFile(t, storage, project.ID, "b.cpp")

	files, err := storage.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "a.cpp", files[0].FilePath)

	require.NoError(t, storage.DeleteFile(ctx, a.ID))
	files, err = storage.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestUpsertSymbolTree(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	parent := &Symbol{
		FileID:        file.ID,
		Name:          "AuthService",
		Kind:          "class",
		QualifiedPath: "auth::AuthService",
		Signature:     "class AuthService",
		Visibility:    "unspecified",
		StartLine:     10,
		EndLine:       60,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, parent))
	require.Greater(t, parent.ID, int64(0))

	child := &Symbol{
		FileID:        file.ID,
		ParentID:      &parent.ID,
		Name:          "login",
		Kind:          "method",
		QualifiedPath: "auth::AuthService::login",
		Signature:     "(const string& email)",
		DocComment:    "Attempts to authenticate the given credentials.",
		Visibility:    "public",
		StartLine:     20,
		EndLine:       30,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, child))

	children, err := storage.ListSymbolChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "login", children[0].Name)
	require.NotNil(t, children[0].ParentID)
	assert.Equal(t, parent.ID, *children[0].ParentID)

	// Upsert of the same symbol updates in place
	child.Signature = "(const string& email, const string& password)"
	require.NoError(t, storage.UpsertSymbol(ctx, child))

	symbols, err := storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, symbols, 2)
}

func TestToTypesSymbolKeepsQualifiedName(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	sym := &Symbol{
		FileID:        file.ID,
		Name:          "login",
		Kind:          "method",
		QualifiedPath: "auth::AuthService::login",
		Signature:     "(const string& email)",
		Visibility:    "public",
		StartLine:     20,
		EndLine:       30,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, sym))

	loaded, err := storage.GetSymbol(ctx, sym.ID)
	require.NoError(t, err)

	converted := loaded.ToTypesSymbol()
	assert.Equal(t, "auth::AuthService::login", converted.QualifiedName())
	assert.Equal(t, "login", converted.Name)
}

func TestSearchSymbols(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	sym := &Symbol{
		FileID:        file.ID,
		Name:          "verifyPassword",
		Kind:          "method",
		QualifiedPath: "auth::AuthService::verifyPassword",
		Signature:     "(const string& password, const string& hash)",
		DocComment:    "Checks a cleartext password against the stored hash.",
		Visibility:    "private",
		StartLine:     5,
		EndLine:       9,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, sym))

	results, err := storage.SearchSymbols(ctx, "verifyPassword", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "verifyPassword", results[0].Name)

	results, err = storage.SearchSymbols(ctx, "cleartext", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = storage.SearchSymbols(ctx, "nothingmatches", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteSymbolsByFileCascades(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	sym := &Symbol{
		FileID: file.ID, Name: "helper", Kind: "function",
		QualifiedPath: "helper", StartLine: 1, EndLine: 3,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, sym))
	require.NoError(t, storage.DeleteSymbolsByFile(ctx, file.ID))

	symbols, err := storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, symbols)

	// FTS rows go with their base rows
	results, err := storage.SearchSymbols(ctx, "helper", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpsertChunkAndSearchText(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	chunk := &Chunk{
		FileID:        file.ID,
		Content:       "Token* login(const string& email) { return nullptr; }",
		ContentHash:   sha256.Sum256([]byte("login")),
		TokenCount:    14,
		StartLine:     20,
		EndLine:       22,
		ContextBefore: "#include <string>\n// scope: auth::AuthService",
		ChunkType:     "callable",
	}
	require.NoError(t, storage.UpsertChunk(ctx, chunk))
	assert.Greater(t, chunk.ID, int64(0))

	results, err := storage.SearchText(ctx, project.ID, "login", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunk.ID, results[0].ChunkID)
	assert.Greater(t, results[0].BM25Score, 0.0)
	assert.LessOrEqual(t, results[0].BM25Score, 1.0)

	// Text from the context column matches too
	results, err = storage.SearchText(ctx, project.ID, "AuthService", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchTextFilters(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")
	other := testFile(t, storage, project.ID, "lib/util.cpp")

	for i, f := range []*File{file, other} {
		chunk := &Chunk{
			FileID:      f.ID,
			Content:     "void sharedToken() {}",
			ContentHash: sha256.Sum256([]byte(f.FilePath)),
			StartLine:   1 + i,
			EndLine:     2 + i,
			ChunkType:   "callable",
		}
		require.NoError(t, storage.UpsertChunk(ctx, chunk))
	}

	results, err := storage.SearchText(ctx, project.ID, "sharedToken", 10,
		&SearchFilters{FilePattern: "src/*"})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchTextEmptyQuery(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.SearchText(context.Background(), 1, "  !!  ", 10, nil)
	assert.Error(t, err)
}

func TestSearchSymbolText(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	sym := &Symbol{
		FileID: file.ID, Name: "createSession", Kind: "method",
		QualifiedPath: "auth::AuthService::createSession",
		Visibility:    "public", StartLine: 40, EndLine: 45,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, sym))

	chunk := &Chunk{
		FileID: file.ID, SymbolID: &sym.ID,
		Content:     "Session* createSession(const User& user) { return nullptr; }",
		ContentHash: sha256.Sum256([]byte("createSession")),
		StartLine:   40, EndLine: 45, ChunkType: "callable",
	}
	require.NoError(t, storage.UpsertChunk(ctx, chunk))

	results, err := storage.SearchSymbolText(ctx, project.ID, "createSession", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sym.ID, results[0].SymbolID)
	assert.Equal(t, chunk.ID, results[0].ChunkID)

	// Kind filter excludes non-matching symbols
	results, err = storage.SearchSymbolText(ctx, project.ID, "createSession", 10,
		&SearchFilters{SymbolKinds: []string{"class"}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIncludes(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	require.NoError(t, storage.UpsertInclude(ctx, &Include{FileID: file.ID, Path: "string", System: true}))
	require.NoError(t, storage.UpsertInclude(ctx, &Include{FileID: file.ID, Path: "db/client.h"}))

	includes, err := storage.ListIncludesByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, includes, 2)
	assert.True(t, includes[0].System)
	assert.Equal(t, "db/client.h", includes[1].Path)

	require.NoError(t, storage.DeleteIncludesByFile(ctx, file.ID))
	includes, err = storage.ListIncludesByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, includes)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/auth.cpp")

	sym := &Symbol{
		FileID: file.ID, Name: "main", Kind: "function",
		QualifiedPath: "main", StartLine: 1, EndLine: 5,
	}
	require.NoError(t, storage.UpsertSymbol(ctx, sym))

	status, err := storage.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 1, status.SymbolsCount)
	assert.Equal(t, 0, status.ChunksCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.True(t, status.Health.FTSIndexesBuilt)
}

func TestTransactionCommitAndRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)

	// Rolled-back work leaves no trace
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	file := &File{
		ProjectID: project.ID, FilePath: "rollback.cpp",
		ContentHash: sha256.Sum256([]byte("x")), ModTime: time.Now(),
	}
	require.NoError(t, tx.UpsertFile(ctx, file))
	require.NoError(t, tx.Rollback())

	_, err = storage.GetFile(ctx, project.ID, "rollback.cpp")
	assert.ErrorIs(t, err, ErrNotFound)

	// Committed work is visible
	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	file = &File{
		ProjectID: project.ID, FilePath: "commit.cpp",
		ContentHash: sha256.Sum256([]byte("y")), ModTime: time.Now(),
	}
	require.NoError(t, tx.UpsertFile(ctx, file))
	require.NoError(t, tx.Commit())

	retrieved, err := storage.GetFile(ctx, project.ID, "commit.cpp")
	require.NoError(t, err)
	assert.Equal(t, file.ID, retrieved.ID)
}

func TestNestedTransactionsRejected(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	tx, err := storage.BeginTx(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(context.Background())
	assert.Error(t, err)
}
