package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
)

const (
	modeLLM         = "llm"
	modeCached      = "cached"
	modeContextOnly = "context_only"
	modeFallback    = "fallback"
)

// Answer retrieves context for the question and asks the completion service. Without a
// completion service, or when it fails, the answer is assembled from the retrieved chunks.
func (s *service) Answer(ctx context.Context, req AnswerRequest) (commonModels.Answer, error) {
	start := time.Now()
	defer func() { metrics.CaptureRequestMetrics("answer", time.Since(start)) }()
	log := s.logger.WithTrace(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return commonModels.Answer{}, commonModels.ErrEmptyQuestion
	}
	k := req.K
	if k <= 0 {
		k = config.DefaultContextDocs
	}
	conversationId := req.ConversationId
	if conversationId == "" {
		conversationId = utils.GetNewUUID()
	}

	results, emb, err := s.retrieve(ctx, question, k, req.SimilarityThreshold)
	if err != nil {
		return commonModels.Answer{}, err
	}

	ans := commonModels.Answer{
		Question:       question,
		Sources:        results,
		ConversationId: conversationId,
	}

	mode := s.generate(ctx, &ans, emb)
	metrics.CountAnswer(mode)
	log.Debug("Answer", "mode", mode, "sources", len(results), "conversation", conversationId)

	s.recordTurn(ctx, ans)
	return ans, nil
}

func (s *service) generate(ctx context.Context, ans *commonModels.Answer, emb []float32) string {
	if s.llmProvider == nil {
		ans.AnswerText = contextOnlyAnswer(ans.Question, ans.Sources)
		return modeContextOnly
	}

	history, err := s.conversations.RecentTurns(ctx, ans.ConversationId, config.ConversationTurnLimit)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("could not load conversation", "conversation", ans.ConversationId, "error", err)
	}

	// cached answers were produced without history, so follow-up turns always go to the model
	if s.cache != nil && len(history) == 0 {
		if cached, found := s.executeCacheCheckStep(ctx, emb); found {
			ans.AnswerText = cached
			ans.UsedLLM = true
			ans.Cached = true
			return modeCached
		}
	}

	text, err := s.executeLLMStep(ctx, buildPrompt(ans.Question, ans.Sources, history))
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error generating answer", "provider", s.llmProvider.Name(), "error", err)
		ans.AnswerText = contextOnlyAnswer(ans.Question, ans.Sources)
		ans.LLMError = err.Error()
		return modeFallback
	}

	ans.AnswerText = text
	ans.UsedLLM = true
	if s.cache != nil && len(history) == 0 {
		if err := s.cache.SaveToCache(ctx, utils.GetNewUUID(), emb, text); err != nil {
			s.logger.WithTrace(ctx).Warn("could not cache answer", "error", err)
		}
	}
	return modeLLM
}

func (s *service) recordTurn(ctx context.Context, ans commonModels.Answer) {
	sources := make([]string, 0, len(ans.Sources))
	seen := map[string]bool{}
	for _, r := range ans.Sources {
		if !seen[r.DocumentFilename] {
			seen[r.DocumentFilename] = true
			sources = append(sources, r.DocumentFilename)
		}
	}
	turn := commonModels.ConversationTurn{
		Question: ans.Question,
		Answer:   ans.AnswerText,
		Sources:  sources,
		At:       time.Now().UTC(),
	}
	if err := s.conversations.AppendTurn(ctx, ans.ConversationId, turn); err != nil {
		s.logger.WithTrace(ctx).Warn("could not record conversation turn", "conversation", ans.ConversationId, "error", err)
	}
}
