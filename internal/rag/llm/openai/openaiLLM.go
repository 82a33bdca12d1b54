package openai

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
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const providerName = "openai"

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	HTTPClient *http.Client
}

type llmClient struct {
	api       openaisdk.Client
	modelName string
	system    string
	logger    *logger_i.Logger
}

var _ llm.Provider = (*llmClient)(nil)

// NewOpenAIClient talks to any OpenAI compatible chat completions endpoint.
func NewOpenAIClient(cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = config.OpenAIModelName
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

	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", cfg.Model)
	return &llmClient{
		api:       openaisdk.NewClient(opts...),
		modelName: cfg.Model,
		system:    config.ModelContext,
		logger:    logger,
	}, nil
}

func (c *llmClient) Name() string { return providerName }

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.modelName),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(c.system),
			openaisdk.UserMessage(prompt),
		},
		Temperature: openaisdk.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error generating completion", "error", err)
		return "", &commonModels.CompletionError{Provider: providerName, Cause: err}
	}
	if len(res.Choices) == 0 {
		return "", &commonModels.CompletionError{Provider: providerName, Cause: errors.New("no choices in response")}
	}
	text := strings.TrimSpace(res.Choices[0].Message.Content)
	if text == "" {
		return "", &commonModels.CompletionError{Provider: providerName, Cause: errors.New("empty response")}
	}
	return text, nil
}
