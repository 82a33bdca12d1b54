package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config describes an OpenAI compatible embeddings endpoint. BaseURL is empty for api.openai.com.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimension  int
	MaxRetries int
	HTTPClient *http.Client
}

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

var _ embedding.Embedder = (*client)(nil)

func NewOpenAIEmbedder(cfg Config) (embedding.Embedder, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai embedding: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.OpenAIEmbeddingModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = config.DefaultDimension
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = customHttpClient.Shared()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", cfg.Model, "dimension", cfg.Dimension)
	return &client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}, nil
}

func (c *client) Dimension() int    { return c.dimension }
func (c *client) ModelName() string { return c.model }

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, c.embed)
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	}
	// only the v3 models accept a reduced output size
	if strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	res, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting Embeddings from OpenAI", "error", err, "batch", len(texts))
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, d := range res.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			continue
		}
		vectors[d.Index] = embedding.Float64To32(d.Embedding)
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("openai embedding: missing vector for input %d", i)
		}
	}
	if err := embedding.CheckVectors(vectors, len(texts), c.dimension); err != nil {
		return nil, err
	}
	return vectors, nil
}
