package googleEmbedding

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const retryDelay = 5 * time.Second

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

type Config struct {
	APIKey     string
	Model      string
	Dimension  int
	HTTPClient *http.Client
}

func NewGoogleEmbedder(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google embedding: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.GoogleEmbeddingModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = config.DefaultDimension
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = customHttpClient.Shared()
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)

	return &client{genAi: c, model: cfg.Model, dimension: int32(cfg.Dimension), logger: logger}, nil
}

func (c *client) Dimension() int    { return int(c.dimension) }
func (c *client) ModelName() string { return c.model }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCall(ctx, getContent([]string{query}), "RETRIEVAL_QUERY")
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	vectors := toVectors(res)
	if err := embedding.CheckVectors(vectors, 1, int(c.dimension)); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding embeds texts in groups of config.EmbeddingBatchSize, retrying a group
// once when the API reports a rate limit.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, func(ctx context.Context, batch []string) ([][]float32, error) {
		res, err := c.doCall(ctx, getContent(batch), "RETRIEVAL_DOCUMENT")
		if err != nil && doRetry(err, log) {
			log.Debug("Retrying batch", "delay", retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			res, err = c.doCall(ctx, getContent(batch), "RETRIEVAL_DOCUMENT")
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err, "batch", len(batch))
			return nil, err
		}
		vectors := toVectors(res)
		if err := embedding.CheckVectors(vectors, len(batch), int(c.dimension)); err != nil {
			return nil, err
		}
		return vectors, nil
	})
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
}
