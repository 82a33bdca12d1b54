package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
)

// Query returns up to k chunks ranked by similarity, dropping those scoring below threshold.
// A threshold of 0 keeps everything.
func (s *service) Query(ctx context.Context, text string, k int, threshold float64) ([]commonModels.SearchResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureRequestMetrics("query", time.Since(start)) }()

	results, _, err := s.retrieve(ctx, text, k, threshold)
	return results, err
}

func (s *service) retrieve(ctx context.Context, text string, k int, threshold float64) ([]commonModels.SearchResult, []float32, error) {
	log := s.logger.WithTrace(ctx)
	if strings.TrimSpace(text) == "" {
		return nil, nil, commonModels.ErrEmptyQuestion
	}

	emb, err := s.executeEmbeddingStep(ctx, text)
	if err != nil {
		log.Error("Error embedding query", "error", err)
		return nil, nil, err
	}
	if k <= 0 {
		return []commonModels.SearchResult{}, emb, nil
	}

	hits, err := s.executeVectorSearchStep(ctx, emb, k)
	if err != nil {
		log.Error("Error searching index", "error", err)
		return nil, nil, err
	}

	results := make([]commonModels.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if threshold > 0 && hit.Score < threshold {
			continue
		}
		results = append(results, toSearchResult(hit))
	}
	log.Debug("Query", "hits", len(hits), "kept", len(results))
	return results, emb, nil
}
