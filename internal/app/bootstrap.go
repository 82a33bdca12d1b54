package app

import (
	"context"
	"fmt"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/llm/gemini"
	"github.com/akolanti/DocRAG/internal/rag/llm/openai"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/flatIndex"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("bootstrap")

// App is the wired retrieval stack shared by the HTTP server, the CLI and the MCP server.
type App struct {
	Service  rag.Service
	Index    *flatIndex.Index
	Settings *config.Settings
	closers  []func() error
}

// Build opens the index and connects the configured providers. Redis and qdrant are optional:
// when they are unreachable the in-memory stores are used and answers are not cached.
func Build(ctx context.Context, s *config.Settings) (*App, error) {
	a := &App{Settings: s}

	embedder, err := newEmbedder(ctx, s.Embedding)
	if err != nil {
		return nil, err
	}
	provider, err := newLLM(ctx, s.LLM)
	if err != nil {
		return nil, err
	}

	idx, err := flatIndex.Open(flatIndex.Config{
		Dir:            s.Index.Dir,
		Name:           s.Index.Name,
		Dimension:      embedder.Dimension(),
		EmbeddingModel: embedder.ModelName(),
	})
	if err != nil {
		return nil, err
	}
	a.Index = idx

	docs, conversations := a.newStores(ctx, s.Redis)
	if mem, ok := docs.(*store.InMemoryDocumentStore); ok {
		seedDocuments(ctx, mem, idx)
	}

	var cache vectorDB.AnswerCache
	if provider != nil {
		cache = a.newCache(ctx, s.Qdrant, embedder)
	}

	svc, err := rag.NewService(rag.Dependencies{
		Index:         idx,
		Embedder:      embedder,
		LLM:           provider,
		Cache:         cache,
		Documents:     docs,
		Conversations: conversations,
		Chunking:      ingest.Options{ChunkSize: s.Chunking.SizeWords, ChunkOverlap: s.Chunking.OverlapWords},
		Concurrency:   s.Server.Concurrency,
		LLMTimeout:    s.LLM.Timeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc

	logger.Info("Retrieval stack ready",
		"index", idx.Stats().IndexPath,
		"vectors", idx.Stats().TotalVectors,
		"embedding", embedder.ModelName(),
		"llm", s.LLM.Provider,
		"answerCache", cache != nil)
	return a, nil
}

// Close flushes a pending index write and releases external connections.
func (a *App) Close() {
	if a.Index != nil {
		if err := a.Index.Flush(); err != nil {
			logger.Error("Could not flush index", "error", err)
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("Error closing connection", "error", err)
		}
	}
	a.closers = nil
}

// seedDocuments fills an empty in-memory mirror with the documents already in the index.
func seedDocuments(ctx context.Context, mem *store.InMemoryDocumentStore, idx *flatIndex.Index) {
	for _, d := range idx.Documents() {
		err := mem.SaveDocument(ctx, commonModels.Document{
			Id:             d.Id,
			Name:           d.Filename,
			Size:           d.Size,
			ContentType:    commonModels.DocType(d.ContentType),
			Status:         commonModels.StatusCompleted,
			TotalChunks:    d.TotalChunks,
			EmbeddingModel: d.EmbeddingModel,
			CreatedAt:      d.IngestedAt,
			UpdatedAt:      d.IngestedAt,
		})
		if err != nil {
			logger.Warn("could not seed document mirror", "document", d.Id, "error", err)
		}
	}
}

func newEmbedder(ctx context.Context, s config.EmbeddingSettings) (embedding.Embedder, error) {
	switch s.Provider {
	case "hash", "":
		return hashEmbedding.New(s.Dimension, s.Model), nil
	case "google":
		return googleEmbedding.NewGoogleEmbedder(ctx, googleEmbedding.Config{
			APIKey:     s.APIKey,
			Model:      s.Model,
			Dimension:  s.Dimension,
			HTTPClient: customHttpClient.Shared(),
		})
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(openaiEmbedding.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimension:  s.Dimension,
			HTTPClient: customHttpClient.Shared(),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}

// newLLM returns nil when no completion provider is configured.
func newLLM(ctx context.Context, s config.LLMSettings) (llm.Provider, error) {
	switch s.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		return gemini.NewGeminiClient(ctx, gemini.Config{
			APIKey:     s.APIKey,
			Model:      s.Model,
			HTTPClient: customHttpClient.WithTimeout(s.Timeout),
		})
	case "openai":
		return openai.NewOpenAIClient(openai.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			HTTPClient: customHttpClient.WithTimeout(s.Timeout),
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}

func (a *App) newStores(ctx context.Context, s config.RedisSettings) (commonModels.DocumentStore, commonModels.ConversationStore) {
	if !s.Enabled {
		return store.InitInMemoryDocumentStore(), store.InitConversationStore()
	}

	docDB, err := redisStore.NewRedisStore(ctx, redisStore.Options{Addr: s.Addr, Password: s.Password, DB: config.RedisDocumentStore})
	if err != nil {
		logger.Error("Redis stores are offline, using in-memory stores", "error", err)
		return store.InitInMemoryDocumentStore(), store.InitConversationStore()
	}
	convDB, err := redisStore.NewRedisStore(ctx, redisStore.Options{Addr: s.Addr, Password: s.Password, DB: config.RedisConversationStore})
	if err != nil {
		logger.Error("Redis conversation store is offline, using in-memory store", "error", err)
		a.closers = append(a.closers, docDB.Close)
		return store.NewRedisDocumentStore(docDB), store.InitConversationStore()
	}
	a.closers = append(a.closers, docDB.Close, convDB.Close)
	return store.NewRedisDocumentStore(docDB), store.NewRedisConversationStore(convDB)
}

func (a *App) newCache(ctx context.Context, s config.QdrantSettings, e embedding.Embedder) vectorDB.AnswerCache {
	if !s.Enabled {
		return nil
	}
	cache, err := qdrantDB.NewAnswerCache(ctx, qdrantDB.Config{
		Host:       s.Host,
		Port:       s.Port,
		APIKey:     s.APIKey,
		Collection: config.SemanticCacheName,
		Dimension:  e.Dimension(),
		Model:      e.ModelName(),
	})
	if err != nil {
		logger.Error("Answer cache is offline", "error", err)
		return nil
	}
	a.closers = append(a.closers, cache.Close)
	return cache
}
