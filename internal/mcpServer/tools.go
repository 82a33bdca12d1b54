package mcpServer

import (
	"context"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchInput struct {
	Query               string  `json:"query" jsonschema:"the text to search the indexed documents for"`
	Limit               int     `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (1-20, default 5)"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" jsonschema:"drop chunks scoring below this value"`
}

type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

type ChunkOutput struct {
	DocumentId string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	ContextDocs    int    `json:"context_docs,omitempty" jsonschema:"number of chunks to use as context (1-10, default 4)"`
	ConversationId string `json:"conversation_id,omitempty" jsonschema:"continue an earlier conversation"`
}

type AskOutput struct {
	Answer         string        `json:"answer"`
	ConversationId string        `json:"conversation_id"`
	UsedLLM        bool          `json:"used_llm"`
	Cached         bool          `json:"cached,omitempty"`
	LLMError       string        `json:"llm_error,omitempty"`
	Sources        []ChunkOutput `json:"sources"`
}

type StatsInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over the indexed documents, best matches first",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using the indexed documents as context",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Vector index statistics and document counts",
	}, s.handleStats)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := utils.Clamp(input.Limit, config.DefaultSearchResults, 1, config.MaxSearchResults)
	results, err := s.service.Query(ctx, input.Query, limit, input.SimilarityThreshold)
	if err != nil {
		s.logger.WithTrace(ctx).Error("search_documents failed", "error", err)
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{Results: make([]ChunkOutput, len(results)), Count: len(results)}
	for i, r := range results {
		out.Results[i] = ChunkOutput{
			DocumentId: r.DocumentId,
			Filename:   r.DocumentFilename,
			ChunkIndex: r.ChunkIndex,
			Score:      r.SimilarityScore,
			Content:    r.Content,
		}
	}
	return nil, out, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	ans, err := s.service.Answer(ctx, rag.AnswerRequest{
		Question:       input.Question,
		K:              utils.Clamp(input.ContextDocs, config.DefaultContextDocs, 1, config.MaxContextDocs),
		ConversationId: input.ConversationId,
	})
	if err != nil {
		s.logger.WithTrace(ctx).Error("ask_documents failed", "error", err)
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:         ans.AnswerText,
		ConversationId: ans.ConversationId,
		UsedLLM:        ans.UsedLLM,
		Cached:         ans.Cached,
		LLMError:       ans.LLMError,
		Sources:        make([]ChunkOutput, len(ans.Sources)),
	}
	for i, r := range ans.Sources {
		out.Sources[i] = ChunkOutput{
			DocumentId: r.DocumentId,
			Filename:   r.DocumentFilename,
			ChunkIndex: r.ChunkIndex,
			Score:      r.SimilarityScore,
			Content:    r.Content,
		}
	}
	return nil, out, nil
}

func (s *Server) handleStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, rag.Status, error) {
	return nil, s.service.Stats(ctx), nil
}
