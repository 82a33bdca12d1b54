package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const providerName = "gemini"

type llmClient struct {
	client    *genai.Client
	modelName string
	system    string
	logger    *logger_i.Logger
}

type Config struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

var _ llm.Provider = (*llmClient)(nil)

func NewGeminiClient(ctx context.Context, cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.GeminiModelName
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
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", cfg.Model)
	return &llmClient{client: c, modelName: cfg.Model, system: config.ModelContext, logger: logger}, nil
}

func (c *llmClient) Name() string { return providerName }

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.system}},
		},
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), contentConfig)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error generating content", "error", err)
		return "", &commonModels.CompletionError{Provider: providerName, Cause: err}
	}
	if result == nil {
		return "", &commonModels.CompletionError{Provider: providerName, Cause: errors.New("empty response")}
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &commonModels.CompletionError{Provider: providerName, Cause: errors.New("empty response")}
	}
	return text, nil
}
