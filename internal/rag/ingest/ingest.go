package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

var ErrEmptyDocument = errors.New("no text could be extracted from document")

type Request struct {
	DocumentId string
	Path       string
	Name       string
	// ContentType is the extension used to pick the extractor; the path extension when empty
	ContentType string
	Size        int64
}

type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

// Outcome is the result of one ingest together with the chunk metadata that was indexed.
type Outcome struct {
	Result commonModels.IngestResult
	Chunks []commonModels.DocChunk
}

// ProcessDocumentIngestion runs extract, chunk, embed and index for one file. Nothing is written
// to the index unless every step before it succeeded; any failure ends in a failed result.
func ProcessDocumentIngestion(ctx context.Context, req Request, e embedding.Embedder, index vectorDB.VectorIndex, opts Options) Outcome {
	log := logger.WithTrace(ctx).With("document", req.DocumentId, "filename", req.Name)

	if req.Name == "" {
		req.Name = filepath.Base(req.Path)
	}
	ext := req.ContentType
	if ext == "" {
		ext = filepath.Ext(req.Path)
	}
	out := Outcome{Result: commonModels.IngestResult{
		Status:     commonModels.StatusProcessing,
		DocumentId: req.DocumentId,
		Filename:   req.Name,
	}}
	fail := func(step string, err error) Outcome {
		log.Error("Error processing document", "step", step, "error", err)
		out.Result.Status = commonModels.StatusFailed
		out.Result.Error = err.Error()
		out.Chunks = nil
		return out
	}

	log.Debug("Processing document", "path", req.Path, "type", ext)
	extracted, err := Extract(req.Path, ext)
	if err != nil {
		return fail("extract", err)
	}
	text := extracted.Text
	if text == "" {
		return fail("extract", ErrEmptyDocument)
	}

	pieces := ChunkText(text, opts.ChunkSize, opts.ChunkOverlap)
	if len(pieces) == 0 {
		return fail("chunk", ErrEmptyDocument)
	}
	log.Debug("Processing document", "Number of chunks", len(pieces))

	contents := make([]string, len(pieces))
	for i, p := range pieces {
		contents[i] = p.Content
	}
	vectors, err := e.BatchEmbedding(ctx, contents)
	if err != nil {
		return fail("embed", fmt.Errorf("embedding chunks: %w", err))
	}
	if err := embedding.CheckVectors(vectors, len(pieces), e.Dimension()); err != nil {
		return fail("embed", err)
	}

	size := req.Size
	if size == 0 {
		if info, err := os.Stat(req.Path); err == nil {
			size = info.Size()
		}
	}
	doc := vectorDB.DocumentRecord{
		Id:             req.DocumentId,
		Filename:       req.Name,
		Size:           size,
		ContentType:    string(DocTypeFromExtension(ext)),
		TextLength:     len(text),
		EmbeddingModel: e.ModelName(),
		IngestedAt:     time.Now().UTC(),
	}
	records := make([]vectorDB.ChunkRecord, len(pieces))
	for i, p := range pieces {
		records[i] = vectorDB.ChunkRecord{
			ChunkIndex: p.ChunkIndex,
			PageNum:    extracted.PageOf(p.StartWord),
			StartChar:  p.StartChar,
			EndChar:    p.EndChar,
			Content:    p.Content,
		}
	}

	added, err := index.AddVectors(ctx, vectors, records, doc)
	if err != nil {
		return fail("index", err)
	}

	out.Chunks = make([]commonModels.DocChunk, len(pieces))
	for i, p := range pieces {
		out.Chunks[i] = commonModels.DocChunk{
			DocumentId:   req.DocumentId,
			Content:      p.Content,
			ChunkIndex:   p.ChunkIndex,
			PageNum:      records[i].PageNum,
			StartChar:    p.StartChar,
			EndChar:      p.EndChar,
			EmbeddingRow: added.FirstRow + i,
		}
	}
	out.Result.Status = commonModels.StatusCompleted
	out.Result.TotalChunks = len(pieces)
	out.Result.TotalVectors = added.TotalVectors
	log.Info("Document ingested", "chunks", len(pieces), "totalVectors", added.TotalVectors)
	return out
}

// DefaultOptions returns the chunking defaults from config.
func DefaultOptions() Options {
	return Options{ChunkSize: config.DefaultChunkSizeWords, ChunkOverlap: config.DefaultChunkOverlapWords}
}
