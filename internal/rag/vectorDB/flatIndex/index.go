package flatIndex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

/*
Index is an exact inner-product index held in memory and mirrored to two files:
<dir>/<name>.<generation>.vectors with the row-major float32 matrix and <dir>/<name>.meta.json
with document and chunk records plus the name of the matrix file they belong to. Vectors are expected to be L2 normalized so the inner
product is the cosine similarity.

Adds and clears take the write lock, searches share the read lock. Every add is persisted
before it returns; a failed save rolls the add back and flags the index out of sync.
*/
type Index struct {
	mu sync.RWMutex

	cfg        Config
	// matrixPath is the matrix file named by the committed metadata, empty before the first save
	matrixPath string
	metaPath   string
	logger     *logger_i.Logger

	state      vectorDB.IndexState
	matrix     []float32
	arena      *arena
	generation uint64
	outOfSync  bool
}

type Config struct {
	Dir            string
	Name           string
	Dimension      int
	EmbeddingModel string
}

var _ vectorDB.VectorIndex = (*Index)(nil)

// Open creates the index directory when needed and loads or creates the named index.
func Open(cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", cfg.Dimension)
	}
	if cfg.Name == "" {
		return nil, errors.New("index name is required")
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, &commonModels.PersistenceError{Op: "create index dir", Path: cfg.Dir, Cause: err}
	}

	idx := &Index{
		cfg:      cfg,
		metaPath: filepath.Join(cfg.Dir, cfg.Name+".meta.json"),
		logger:   logger_i.NewLogger("flatIndex").With("index", cfg.Name),
		state:    vectorDB.StateUninitialized,
	}
	if err := idx.Initialize(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Initialize loads the persisted files, or starts an empty index when the metadata or the
// matrix it names is missing or fails to load. A load failure never fails initialization.
func (i *Index) Initialize() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if fileExists(i.metaPath) {
		data, a, gen, err := i.load()
		if err == nil {
			i.matrix = data
			i.arena = a
			i.generation = gen
			i.state = vectorDB.StateReady
			i.outOfSync = false
			i.logger.Info("loaded index", "vectors", i.count(), "documents", len(a.docs), "generation", gen)
			return nil
		}
		i.logger.Error("could not load index, starting empty", "error", err, "path", i.metaPath)
	}

	return i.resetLocked()
}

// resetLocked replaces the state with an empty index and persists it.
func (i *Index) resetLocked() error {
	i.state = vectorDB.StateUninitialized
	i.matrix = nil
	i.arena = newArena()

	next := i.generation + 1
	if err := i.save(next); err != nil {
		// the empty index is still usable for this process
		i.outOfSync = true
		i.state = vectorDB.StateReady
		i.logger.Error("could not persist empty index", "error", err)
		return nil
	}
	i.generation = next
	i.outOfSync = false
	i.state = vectorDB.StateReady
	i.logger.Info("created empty index", "dimension", i.cfg.Dimension, "model", i.cfg.EmbeddingModel)
	return nil
}

func (i *Index) AddVectors(ctx context.Context, vectors [][]float32, chunks []vectorDB.ChunkRecord, doc vectorDB.DocumentRecord) (vectorDB.AddResult, error) {
	if len(vectors) != len(chunks) {
		return vectorDB.AddResult{}, fmt.Errorf("%d vectors for %d chunks", len(vectors), len(chunks))
	}
	for _, v := range vectors {
		if len(v) != i.cfg.Dimension {
			return vectorDB.AddResult{}, commonModels.DimensionError(i.cfg.Dimension, len(v))
		}
	}
	if err := ctx.Err(); err != nil {
		return vectorDB.AddResult{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if len(vectors) == 0 {
		return vectorDB.AddResult{Document: -1, FirstRow: i.count(), TotalVectors: i.count()}, nil
	}

	cp := i.arena.checkpoint(doc.Id)
	matrixLen := len(i.matrix)
	firstRow := i.count()

	if doc.EmbeddingModel == "" {
		doc.EmbeddingModel = i.cfg.EmbeddingModel
	}
	handle := i.arena.upsertDocument(doc, len(chunks))
	for n, c := range chunks {
		c.Document = handle
		i.arena.appendChunk(c)
		i.matrix = append(i.matrix, vectors[n]...)
	}

	next := i.generation + 1
	if err := i.save(next); err != nil {
		i.arena.rollback(cp)
		i.matrix = i.matrix[:matrixLen]
		i.outOfSync = true
		i.logger.Error("add rolled back, index out of sync with disk", "error", err, "document", doc.Id)
		return vectorDB.AddResult{}, err
	}
	i.generation = next
	i.outOfSync = false

	return vectorDB.AddResult{
		Document:     handle,
		FirstRow:     firstRow,
		Added:        len(chunks),
		TotalVectors: i.count(),
	}, nil
}

func (i *Index) Search(ctx context.Context, query []float32, k int) ([]vectorDB.SearchHit, error) {
	if len(query) != i.cfg.Dimension {
		return nil, commonModels.DimensionError(i.cfg.Dimension, len(query))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	total := i.count()
	if k <= 0 || total == 0 {
		return []vectorDB.SearchHit{}, nil
	}

	type scored struct {
		row   int
		score float64
	}
	scores := make([]scored, total)
	dim := i.cfg.Dimension
	for row := 0; row < total; row++ {
		vec := i.matrix[row*dim : (row+1)*dim]
		var dot float64
		for j, q := range query {
			dot += float64(q) * float64(vec[j])
		}
		scores[row] = scored{row: row, score: dot}
	}
	slices.SortFunc(scores, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.row - b.row
		}
	})

	if k > total {
		k = total
	}
	hits := make([]vectorDB.SearchHit, 0, k)
	for _, s := range scores[:k] {
		chunk, doc, ok := i.arena.resolve(s.row)
		if !ok {
			i.logger.Warn("search hit without metadata", "row", s.row)
			continue
		}
		hits = append(hits, vectorDB.SearchHit{Row: s.row, Score: s.score, Chunk: chunk, Document: doc})
	}
	return hits, nil
}

// Clear drops every vector and record, removes both files and persists a new empty index
// with the same dimension and embedding model.
func (i *Index) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	var removeErr error
	for _, p := range append([]string{i.metaPath}, i.matrixFiles()...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			removeErr = &commonModels.PersistenceError{Op: "remove", Path: p, Cause: err}
		}
	}

	i.matrixPath = ""
	_ = i.resetLocked()
	if removeErr != nil {
		return removeErr
	}
	if i.outOfSync {
		return &commonModels.PersistenceError{Op: "write empty index", Path: i.metaPath, Cause: errors.New("index is out of sync with disk")}
	}
	i.logger.Info("index cleared")
	return nil
}

// Flush retries persisting the in-memory state, typically after an earlier save failed.
func (i *Index) Flush() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	next := i.generation + 1
	if err := i.save(next); err != nil {
		i.outOfSync = true
		return err
	}
	i.generation = next
	i.outOfSync = false
	return nil
}

func (i *Index) Stats() vectorDB.IndexStats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return vectorDB.IndexStats{
		Name:           i.cfg.Name,
		State:          i.state,
		TotalVectors:   i.count(),
		TotalDocuments: len(i.arena.docs),
		TotalChunks:    len(i.arena.chunks),
		Dimension:      i.cfg.Dimension,
		EmbeddingModel: i.cfg.EmbeddingModel,
		IndexPath:      i.matrixPath,
		MetadataPath:   i.metaPath,
		OutOfSync:      i.outOfSync,
	}
}

// Documents returns the document records in insertion order.
func (i *Index) Documents() []vectorDB.DocumentRecord {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.arena.documentList()
}

func (i *Index) count() int {
	return len(i.matrix) / i.cfg.Dimension
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
