package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract used by the HTTP handlers, the MCP tools and the CLI.
  - None of them need to know which index, embedder or LLM sits behind it.

2. service (Private Struct):
  - It holds the "state" (index, embedder, stores, LLM client).
  - It is lowercase so other packages cannot reach the dependencies directly.

3. Dependency Injection (NewService):
  - The constructor validates the wiring (embedder and index must agree on the
    vector dimension) and links the private struct to the public interface.
  - Tests swap real dependencies for mocks without touching callers.
*/

type Service interface {
	IngestDocument(ctx context.Context, req IngestRequest) commonModels.IngestResult
	IngestBatch(ctx context.Context, reqs []IngestRequest) []commonModels.IngestResult
	Query(ctx context.Context, text string, k int, threshold float64) ([]commonModels.SearchResult, error)
	Answer(ctx context.Context, req AnswerRequest) (commonModels.Answer, error)
	Stats(ctx context.Context) Status
	ClearIndex(ctx context.Context) error
	Documents(ctx context.Context) ([]commonModels.Document, error)
	Document(ctx context.Context, id string) (commonModels.Document, bool)
}

type IngestRequest struct {
	// DocumentId is generated when empty
	DocumentId  string
	Path        string
	Name        string
	ContentType string
	Size        int64
}

type AnswerRequest struct {
	Question            string
	K                   int
	SimilarityThreshold float64
	ConversationId      string
}

// Dependencies wires a Service. Index and Embedder are required; LLM and Cache are optional,
// nil stores fall back to in-memory ones.
type Dependencies struct {
	Index         vectorDB.VectorIndex
	Embedder      embedding.Embedder
	LLM           llm.Provider
	Cache         vectorDB.AnswerCache
	Documents     commonModels.DocumentStore
	Conversations commonModels.ConversationStore
	Chunking      ingest.Options
	Concurrency   int
	LLMTimeout    time.Duration
}

type service struct {
	index         vectorDB.VectorIndex
	embedder      embedding.Embedder
	llmProvider   llm.Provider
	cache         vectorDB.AnswerCache
	documents     commonModels.DocumentStore
	conversations commonModels.ConversationStore
	chunking      ingest.Options
	concurrency   int
	llmTimeout    time.Duration
	logger        *logger_i.Logger
}

// NewService constructor
func NewService(deps Dependencies) (Service, error) {
	if deps.Index == nil || deps.Embedder == nil {
		return nil, errors.New("rag service needs an index and an embedder")
	}
	stats := deps.Index.Stats()
	if stats.Dimension != deps.Embedder.Dimension() {
		return nil, commonModels.DimensionError(stats.Dimension, deps.Embedder.Dimension())
	}

	s := &service{
		index:         deps.Index,
		embedder:      deps.Embedder,
		llmProvider:   deps.LLM,
		cache:         deps.Cache,
		documents:     deps.Documents,
		conversations: deps.Conversations,
		chunking:      deps.Chunking,
		concurrency:   deps.Concurrency,
		llmTimeout:    deps.LLMTimeout,
		logger:        logger_i.NewLogger("RAG Service"),
	}
	if s.documents == nil {
		s.documents = store.InitInMemoryDocumentStore()
	}
	if s.conversations == nil {
		s.conversations = store.InitConversationStore()
	}
	if s.chunking.ChunkSize <= 0 {
		s.chunking = ingest.DefaultOptions()
	}
	if s.concurrency <= 0 {
		s.concurrency = config.IngestConcurrency
	}
	if s.llmTimeout <= 0 {
		s.llmTimeout = config.LLMTimeout
	}
	if stats.EmbeddingModel != "" && stats.EmbeddingModel != deps.Embedder.ModelName() {
		s.logger.Warn("index and embedder report different models", "index", stats.EmbeddingModel, "embedder", deps.Embedder.ModelName())
	}
	metrics.SetIndexSize(stats.TotalVectors)
	return s, nil
}

func (s *service) IngestDocument(ctx context.Context, req IngestRequest) commonModels.IngestResult {
	start := time.Now()
	defer func() { metrics.CaptureRequestMetrics("ingest", time.Since(start)) }()

	doc := s.startDocument(ctx, &req)

	s.mirrorDocument(ctx, doc, commonModels.StatusProcessing, "")
	outcome := s.executeIngestStep(ctx, req)
	result := outcome.Result

	if result.Status == commonModels.StatusCompleted {
		doc.TotalChunks = result.TotalChunks
		doc.EmbeddingModel = s.embedder.ModelName()
		s.mirrorDocument(ctx, doc, commonModels.StatusCompleted, "")
		if err := s.documents.SaveChunks(ctx, doc.Id, outcome.Chunks); err != nil {
			s.logger.WithTrace(ctx).Warn("could not mirror chunks", "document", doc.Id, "error", err)
		}
	} else {
		s.mirrorDocument(ctx, doc, commonModels.StatusFailed, result.Error)
	}

	metrics.CountIngest(string(result.Status))
	metrics.SetIndexSize(s.index.Stats().TotalVectors)
	return result
}

// IngestBatch ingests every file independently; results keep the input order.
func (s *service) IngestBatch(ctx context.Context, reqs []IngestRequest) []commonModels.IngestResult {
	results := make([]commonModels.IngestResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range reqs {
		g.Go(func() error {
			results[i] = s.IngestDocument(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *service) Stats(ctx context.Context) Status {
	st := Status{
		State:          "operational",
		Index:          s.index.Stats(),
		DocumentCounts: map[commonModels.DocumentStatus]int{},
		EmbeddingModel: s.embedder.ModelName(),
		Features:       features(s.llmProvider != nil, s.cache != nil),
	}
	if s.llmProvider != nil {
		st.LLMProvider = s.llmProvider.Name()
	}
	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("could not list documents for status", "error", err)
		return st
	}
	st.TotalDocuments = len(docs)
	for _, d := range docs {
		st.DocumentCounts[d.Status]++
	}
	return st
}

// ClearIndex drops the index, the metadata mirror and the answer cache. Only the index
// failure is returned; the other two are mirrors.
func (s *service) ClearIndex(ctx context.Context) error {
	log := s.logger.WithTrace(ctx)
	if err := s.index.Clear(ctx); err != nil {
		log.Error("Error clearing index", "error", err)
		return err
	}
	metrics.SetIndexSize(0)
	if err := s.documents.Clear(ctx); err != nil {
		log.Warn("could not clear document mirror", "error", err)
	}
	if s.cache != nil {
		if err := s.cache.Reset(ctx); err != nil {
			log.Warn("could not reset answer cache", "error", err)
		}
	}
	log.Info("Index cleared")
	return nil
}

func (s *service) Documents(ctx context.Context) ([]commonModels.Document, error) {
	return s.documents.ListDocuments(ctx)
}

func (s *service) Document(ctx context.Context, id string) (commonModels.Document, bool) {
	return s.documents.GetDocument(ctx, id)
}
