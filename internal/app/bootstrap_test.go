package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *config.Settings {
	s := config.Defaults()
	s.Index.Dir = filepath.Join(t.TempDir(), "index")
	s.Embedding.Dimension = 64
	return s
}

func TestBuild_Defaults(t *testing.T) {
	s := testSettings(t)
	a, err := Build(context.Background(), s)
	require.NoError(t, err)
	defer a.Close()

	stats := a.Service.Stats(context.Background())
	assert.Equal(t, 64, stats.Index.Dimension)
	assert.Equal(t, config.DefaultEmbeddingModel, stats.EmbeddingModel)
	assert.Empty(t, stats.LLMProvider)
	assert.FileExists(t, stats.Index.IndexPath)
}

func TestBuild_ReopensSameIndex(t *testing.T) {
	s := testSettings(t)
	a, err := Build(context.Background(), s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("the lighthouse keeper logs the weather every evening"), 0o644))
	res := a.Service.IngestDocument(context.Background(), rag.IngestRequest{Path: path})
	require.Equal(t, commonModels.StatusCompleted, res.Status)
	a.Close()

	b, err := Build(context.Background(), s)
	require.NoError(t, err)
	defer b.Close()
	hits, err := b.Service.Query(context.Background(), "lighthouse weather", 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note.txt", hits[0].DocumentFilename)

	docs, err := b.Service.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, res.DocumentId, docs[0].Id)
	assert.Equal(t, commonModels.StatusCompleted, docs[0].Status)
}

func TestBuild_UnknownProviders(t *testing.T) {
	s := testSettings(t)
	s.Embedding.Provider = "word2vec"
	_, err := Build(context.Background(), s)
	assert.Error(t, err)

	s = testSettings(t)
	s.LLM.Provider = "llama"
	_, err = Build(context.Background(), s)
	assert.Error(t, err)
}

func TestBuild_RedisStores(t *testing.T) {
	mr := miniredis.RunT(t)
	s := testSettings(t)
	s.Redis.Enabled = true
	s.Redis.Addr = mr.Addr()

	a, err := Build(context.Background(), s)
	require.NoError(t, err)
	defer a.Close()

	path := filepath.Join(t.TempDir(), "a.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nsome markdown body text"), 0o644))
	res := a.Service.IngestDocument(context.Background(), rag.IngestRequest{Path: path})
	require.Equal(t, commonModels.StatusCompleted, res.Status)

	docs, err := a.Service.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, commonModels.StatusCompleted, docs[0].Status)
}

func TestBuild_RedisOfflineFallsBack(t *testing.T) {
	s := testSettings(t)
	s.Redis.Enabled = true
	s.Redis.Addr = "127.0.0.1:1"

	a, err := Build(context.Background(), s)
	require.NoError(t, err)
	defer a.Close()
	_, err = a.Service.Documents(context.Background())
	assert.NoError(t, err)
}
