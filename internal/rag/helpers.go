package rag

import (
	"context"
	"path/filepath"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

// startDocument fills in the id and name and records the upload in the mirror.
func (s *service) startDocument(ctx context.Context, req *IngestRequest) commonModels.Document {
	if req.DocumentId == "" {
		req.DocumentId = utils.GetNewUUID()
	}
	if req.Name == "" {
		req.Name = filepath.Base(req.Path)
	}
	ext := req.ContentType
	if ext == "" {
		ext = filepath.Ext(req.Name)
	}
	now := time.Now().UTC()
	doc := commonModels.Document{
		Id:          req.DocumentId,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: ingest.DocTypeFromExtension(ext),
		Status:      commonModels.StatusUploading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		s.logger.WithTrace(ctx).Warn("could not mirror document", "document", doc.Id, "error", err)
	}
	return doc
}

func (s *service) mirrorDocument(ctx context.Context, doc commonModels.Document, status commonModels.DocumentStatus, procErr string) {
	doc.Status = status
	doc.ProcessingError = procErr
	doc.UpdatedAt = time.Now().UTC()
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		s.logger.WithTrace(ctx).Warn("could not mirror document", "document", doc.Id, "status", status, "error", err)
	}
}

func (s *service) executeIngestStep(ctx context.Context, req IngestRequest) ingest.Outcome {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest_pipeline", time.Since(start)) }()

	return ingest.ProcessDocumentIngestion(ctx, ingest.Request{
		DocumentId:  req.DocumentId,
		Path:        req.Path,
		Name:        req.Name,
		ContentType: req.ContentType,
		Size:        req.Size,
	}, s.embedder, s.index, s.chunking)
}

func (s *service) executeEmbeddingStep(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, text)
}

func (s *service) executeVectorSearchStep(ctx context.Context, emb []float32, k int) ([]vectorDB.SearchHit, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.index.Search(ctx, emb, k)
}

func (s *service) executeCacheCheckStep(ctx context.Context, emb []float32) (string, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, err := s.cache.GetCachedAnswer(ctx, emb)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("answer cache lookup failed", "error", err)
		return "", false
	}
	return ans, found
}

func (s *service) executeLLMStep(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()
	return s.llmProvider.Generate(ctx, prompt)
}

func toSearchResult(hit vectorDB.SearchHit) commonModels.SearchResult {
	return commonModels.SearchResult{
		DocumentId:       hit.Document.Id,
		DocumentFilename: hit.Document.Filename,
		ChunkId:          int(hit.Chunk.Handle),
		ChunkIndex:       hit.Chunk.ChunkIndex,
		Content:          hit.Chunk.Content,
		SimilarityScore:  hit.Score,
		PageNum:          hit.Chunk.PageNum,
		StartChar:        hit.Chunk.StartChar,
		EndChar:          hit.Chunk.EndChar,
	}
}
