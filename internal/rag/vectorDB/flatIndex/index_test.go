package flatIndex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

const testDim = 4

func openTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	idx, err := Open(Config{Dir: dir, Name: "test", Dimension: testDim, EmbeddingModel: "unit-model"})
	require.NoError(t, err)
	return idx
}

func unit(v ...float32) []float32 {
	var n float64
	for _, x := range v {
		n += float64(x) * float64(x)
	}
	n = math.Sqrt(n)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func chunkRecords(contents ...string) []vectorDB.ChunkRecord {
	out := make([]vectorDB.ChunkRecord, len(contents))
	for i, c := range contents {
		out[i] = vectorDB.ChunkRecord{ChunkIndex: i, Content: c, StartChar: i * 10, EndChar: i*10 + len(c)}
	}
	return out
}

func addSample(t *testing.T, idx *Index) vectorDB.AddResult {
	t.Helper()
	vectors := [][]float32{unit(1, 0, 0, 0), unit(0, 1, 0, 0), unit(1, 1, 0, 0)}
	res, err := idx.AddVectors(context.Background(), vectors, chunkRecords("alpha", "beta", "gamma"),
		vectorDB.DocumentRecord{Id: "doc-1", Filename: "sample.txt"})
	require.NoError(t, err)
	return res
}

func TestOpenCreatesEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)

	st := idx.Stats()
	assert.Equal(t, vectorDB.StateReady, st.State)
	assert.Equal(t, 0, st.TotalVectors)
	assert.Equal(t, testDim, st.Dimension)
	assert.False(t, st.OutOfSync)
	assert.FileExists(t, st.IndexPath)
	assert.FileExists(t, st.MetadataPath)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(Config{Dir: t.TempDir(), Name: "x", Dimension: 0})
	assert.Error(t, err)
	_, err = Open(Config{Dir: t.TempDir(), Dimension: 3})
	assert.Error(t, err)
}

func TestAddAndSearchSelfMatch(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	res := addSample(t, idx)
	assert.Equal(t, 0, res.FirstRow)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 3, res.TotalVectors)

	hits, err := idx.Search(context.Background(), unit(0, 1, 0, 0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Row)
	assert.Equal(t, "beta", hits[0].Chunk.Content)
	assert.Equal(t, "sample.txt", hits[0].Document.Filename)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSearchOrdering(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	addSample(t, idx)

	hits, err := idx.Search(context.Background(), unit(1, 0, 0, 0), 10)
	require.NoError(t, err)
	// fewer rows than k
	require.Len(t, hits, 3)
	assert.Equal(t, []int{0, 2, 1}, []int{hits[0].Row, hits[1].Row, hits[2].Row})
	for n := 1; n < len(hits); n++ {
		assert.GreaterOrEqual(t, hits[n-1].Score, hits[n].Score)
	}
}

func TestSearchTiesByRow(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	v := unit(0, 0, 1, 0)
	_, err := idx.AddVectors(context.Background(), [][]float32{v, v, v}, chunkRecords("a", "b", "c"),
		vectorDB.DocumentRecord{Id: "d"})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), v, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Row)
	assert.Equal(t, 1, hits[1].Row)
}

func TestSearchEdgeCases(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())

	hits, err := idx.Search(context.Background(), unit(1, 0, 0, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	addSample(t, idx)
	hits, err = idx.Search(context.Background(), unit(1, 0, 0, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, commonModels.ErrDimensionMismatch)
}

func TestAddWrongDimensionInsertsNothing(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	addSample(t, idx)

	vectors := [][]float32{unit(1, 0, 0, 0), {1, 0, 0}}
	_, err := idx.AddVectors(context.Background(), vectors, chunkRecords("ok", "bad"), vectorDB.DocumentRecord{Id: "doc-2"})
	assert.ErrorIs(t, err, commonModels.ErrDimensionMismatch)
	assert.Equal(t, 3, idx.Stats().TotalVectors)
	assert.Equal(t, 1, idx.Stats().TotalDocuments)
}

func TestAddMismatchedChunkCount(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	_, err := idx.AddVectors(context.Background(), [][]float32{unit(1, 0, 0, 0)}, nil, vectorDB.DocumentRecord{Id: "d"})
	assert.Error(t, err)
	assert.Equal(t, 0, idx.Stats().TotalVectors)
}

func TestAddReusesDocument(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	first := addSample(t, idx)

	second, err := idx.AddVectors(context.Background(), [][]float32{unit(0, 0, 0, 1)}, chunkRecords("delta"),
		vectorDB.DocumentRecord{Id: "doc-1", Filename: "sample.txt"})
	require.NoError(t, err)
	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, 3, second.FirstRow)

	docs := idx.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, 4, docs[0].TotalChunks)
}

func TestReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	addSample(t, idx)
	before, err := idx.Search(context.Background(), unit(1, 1, 0, 0), 3)
	require.NoError(t, err)

	reopened := openTestIndex(t, dir)
	assert.Equal(t, 3, reopened.Stats().TotalVectors)
	after, err := reopened.Search(context.Background(), unit(1, 1, 0, 0), 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// handles keep counting after a reload
	res, err := reopened.AddVectors(context.Background(), [][]float32{unit(0, 0, 1, 1)}, chunkRecords("x"),
		vectorDB.DocumentRecord{Id: "doc-2"})
	require.NoError(t, err)
	assert.Equal(t, vectorDB.DocHandle(1), res.Document)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	addSample(t, idx)

	require.NoError(t, idx.Clear(context.Background()))
	st := idx.Stats()
	assert.Equal(t, 0, st.TotalVectors)
	assert.Equal(t, 0, st.TotalDocuments)
	assert.Equal(t, vectorDB.StateReady, st.State)

	hits, err := idx.Search(context.Background(), unit(1, 0, 0, 0), 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	reopened := openTestIndex(t, dir)
	assert.Equal(t, 0, reopened.Stats().TotalVectors)
}

func TestCorruptFilesFallBackToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, idx *Index)
	}{
		{"garbage matrix", func(t *testing.T, idx *Index) {
			require.NoError(t, os.WriteFile(idx.matrixPath, []byte("not a matrix"), 0o644))
		}},
		{"garbage metadata", func(t *testing.T, idx *Index) {
			require.NoError(t, os.WriteFile(idx.metaPath, []byte("{"), 0o644))
		}},
		{"flipped byte", func(t *testing.T, idx *Index) {
			raw, err := os.ReadFile(idx.matrixPath)
			require.NoError(t, err)
			raw[headerSize+1] ^= 0xff
			require.NoError(t, os.WriteFile(idx.matrixPath, raw, 0o644))
		}},
		{"missing metadata", func(t *testing.T, idx *Index) {
			require.NoError(t, os.Remove(idx.metaPath))
		}},
		{"missing matrix", func(t *testing.T, idx *Index) {
			require.NoError(t, os.Remove(idx.matrixPath))
		}},
		{"header count larger than file", func(t *testing.T, idx *Index) {
			raw, err := os.ReadFile(idx.matrixPath)
			require.NoError(t, err)
			copy(raw[10:14], []byte{0xff, 0xff, 0xff, 0x1f})
			require.NoError(t, os.WriteFile(idx.matrixPath, raw, 0o644))
		}},
		{"truncated matrix", func(t *testing.T, idx *Index) {
			raw, err := os.ReadFile(idx.matrixPath)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(idx.matrixPath, raw[:len(raw)-8], 0o644))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			idx := openTestIndex(t, dir)
			addSample(t, idx)
			tt.corrupt(t, idx)

			reopened := openTestIndex(t, dir)
			st := reopened.Stats()
			assert.Equal(t, 0, st.TotalVectors)
			assert.False(t, st.OutOfSync)

			// the fresh index was persisted right away
			again := openTestIndex(t, dir)
			assert.Equal(t, 0, again.Stats().TotalVectors)
		})
	}
}

func TestModelMismatchFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	addSample(t, idx)

	other, err := Open(Config{Dir: dir, Name: "test", Dimension: testDim, EmbeddingModel: "other-model"})
	require.NoError(t, err)
	assert.Equal(t, 0, other.Stats().TotalVectors)
	assert.Equal(t, "other-model", other.Stats().EmbeddingModel)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	addSample(t, idx)

	diskErr := errors.New("disk full")
	renameFile = func(string, string) error { return diskErr }
	t.Cleanup(func() { renameFile = os.Rename })

	_, err := idx.AddVectors(context.Background(), [][]float32{unit(0, 0, 0, 1)}, chunkRecords("lost"),
		vectorDB.DocumentRecord{Id: "doc-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, commonModels.ErrPersistence)
	assert.ErrorIs(t, err, diskErr)

	var pErr *commonModels.PersistenceError
	require.ErrorAs(t, err, &pErr)

	st := idx.Stats()
	assert.Equal(t, 3, st.TotalVectors)
	assert.Equal(t, 1, st.TotalDocuments)
	assert.Equal(t, 3, st.TotalChunks)
	assert.True(t, st.OutOfSync)

	renameFile = os.Rename
	require.NoError(t, idx.Flush())
	assert.False(t, idx.Stats().OutOfSync)

	reopened := openTestIndex(t, dir)
	assert.Equal(t, 3, reopened.Stats().TotalVectors)
}

func TestMetadataWriteFailureKeepsPreviousFiles(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	addSample(t, idx)
	committed := idx.Stats().IndexPath

	diskErr := errors.New("disk full")
	renameFile = func(from, to string) error {
		if strings.HasSuffix(to, ".meta.json") {
			return diskErr
		}
		return os.Rename(from, to)
	}
	t.Cleanup(func() { renameFile = os.Rename })

	_, err := idx.AddVectors(context.Background(), [][]float32{unit(0, 0, 0, 1)}, chunkRecords("lost"),
		vectorDB.DocumentRecord{Id: "doc-2"})
	require.ErrorIs(t, err, diskErr)
	assert.Equal(t, 3, idx.Stats().TotalVectors)
	assert.Equal(t, committed, idx.Stats().IndexPath)
	renameFile = os.Rename

	matrices, err := filepath.Glob(filepath.Join(dir, "test.*.vectors"))
	require.NoError(t, err)
	assert.Equal(t, []string{committed}, matrices)

	reopened := openTestIndex(t, dir)
	st := reopened.Stats()
	assert.Equal(t, 3, st.TotalVectors)
	assert.Equal(t, 1, st.TotalDocuments)
	hits, err := reopened.Search(context.Background(), unit(1, 0, 0, 0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha", hits[0].Chunk.Content)
}

func TestSaveRemovesPreviousMatrix(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	first := idx.Stats().IndexPath
	addSample(t, idx)
	second := idx.Stats().IndexPath

	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)
	matrices, err := filepath.Glob(filepath.Join(dir, "test.*.vectors"))
	require.NoError(t, err)
	assert.Equal(t, []string{second}, matrices)
}

func TestConcurrentSearchAndAdd(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	addSample(t, idx)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := idx.Search(context.Background(), unit(1, 0, 0, 0), 2)
			assert.NoError(t, err)
		}()
		go func(n int) {
			defer wg.Done()
			_, err := idx.AddVectors(context.Background(), [][]float32{unit(0, 1, 1, 0)}, chunkRecords("c"),
				vectorDB.DocumentRecord{Id: "concurrent"})
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()
	assert.Equal(t, 11, idx.Stats().TotalVectors)
}
