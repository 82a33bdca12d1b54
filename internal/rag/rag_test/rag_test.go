package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

const testDim = 8

func newTestService(t *testing.T, idx *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) rag.Service {
	t.Helper()
	deps := rag.Dependencies{
		Index:      idx,
		Embedder:   e,
		LLMTimeout: 50 * time.Millisecond,
	}
	if l != nil {
		deps.LLM = l
	}
	if c != nil {
		deps.Cache = c
	}
	s, err := rag.NewService(deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		withLLM       bool
		withCache     bool
		setupMocks    func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache)
		expectedErr   error
		anyErr        bool
		wantAnswer    string
		wantPrefix    string
		wantUsedLLM   bool
		wantCached    bool
		wantLLMError  bool
		wantNoSources bool
	}{
		{
			name:        "Success_Full_Flow",
			withLLM:     true,
			withCache:   true,
			setupMocks:  func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {},
			wantAnswer:  "mocked llm response",
			wantUsedLLM: true,
		},
		{
			name:      "Success_Cache_Hit",
			withLLM:   true,
			withCache: true,
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				c.OnGetCachedAnswer = func(ctx context.Context, v []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "", errors.New("must not be called")
				}
			},
			wantAnswer:  "cached answer",
			wantUsedLLM: true,
			wantCached:  true,
		},
		{
			name:      "Cache_Failure_Is_Ignored",
			withLLM:   true,
			withCache: true,
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				c.OnGetCachedAnswer = func(ctx context.Context, v []float32) (string, bool, error) {
					return "", false, errors.New("qdrant down")
				}
				c.OnSaveToCache = func(ctx context.Context, id string, v []float32, a string) error {
					return errors.New("qdrant down")
				}
			},
			wantAnswer:  "mocked llm response",
			wantUsedLLM: true,
		},
		{
			name:       "No_LLM_Context_Only",
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {},
			wantPrefix: "Based on the uploaded documents, I found 1 relevant pieces of information:",
		},
		{
			name: "No_LLM_No_Results",
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				i.OnSearch = func(ctx context.Context, q []float32, k int) ([]vectorDB.SearchHit, error) {
					return nil, nil
				}
			},
			wantPrefix:    "I couldn't find relevant information in the uploaded documents",
			wantNoSources: true,
		},
		{
			name:    "LLM_Failure_Falls_Back",
			withLLM: true,
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "", &commonModels.CompletionError{Provider: "mock", Cause: errors.New("provider down")}
				}
			},
			wantPrefix:   "Based on the uploaded documents",
			wantLLMError: true,
		},
		{
			name:    "LLM_Timeout_Falls_Back",
			withLLM: true,
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					<-ctx.Done()
					return "", ctx.Err()
				}
			},
			wantPrefix:   "Based on the uploaded documents",
			wantLLMError: true,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			anyErr: true,
		},
		{
			name:    "Failure_Vector_Search",
			withLLM: true,
			setupMocks: func(i *MockIndex, e *MockEmbedder, l *MockLLM, c *MockCache) {
				i.OnSearch = func(ctx context.Context, q []float32, k int) ([]vectorDB.SearchHit, error) {
					return nil, commonModels.DimensionError(testDim, len(q))
				}
			},
			expectedErr: commonModels.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mIdx := &MockIndex{Dim: testDim}
			mEmbed := &MockEmbedder{Dim: testDim}
			mLLM := &MockLLM{}
			mCache := &MockCache{}

			tt.setupMocks(mIdx, mEmbed, mLLM, mCache)

			var l *MockLLM
			var c *MockCache
			if tt.withLLM {
				l = mLLM
			}
			if tt.withCache {
				c = mCache
			}
			s := newTestService(t, mIdx, mEmbed, l, c)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			ans, err := s.Answer(ctx, rag.AnswerRequest{Question: "test question", K: 3})

			if tt.expectedErr != nil || tt.anyErr {
				if err == nil {
					t.Fatalf("expected error, got answer %q", ans.AnswerText)
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("error got %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantAnswer != "" && ans.AnswerText != tt.wantAnswer {
				t.Errorf("Answer got %q, want %q", ans.AnswerText, tt.wantAnswer)
			}
			if tt.wantPrefix != "" && !strings.HasPrefix(ans.AnswerText, tt.wantPrefix) {
				t.Errorf("Answer got %q, want prefix %q", ans.AnswerText, tt.wantPrefix)
			}
			if ans.UsedLLM != tt.wantUsedLLM {
				t.Errorf("UsedLLM got %v, want %v", ans.UsedLLM, tt.wantUsedLLM)
			}
			if ans.Cached != tt.wantCached {
				t.Errorf("Cached got %v, want %v", ans.Cached, tt.wantCached)
			}
			if (ans.LLMError != "") != tt.wantLLMError {
				t.Errorf("LLMError got %q", ans.LLMError)
			}
			if tt.wantNoSources != (len(ans.Sources) == 0) {
				t.Errorf("Sources got %d", len(ans.Sources))
			}
			if ans.ConversationId == "" {
				t.Error("expected a conversation id")
			}
			if !strings.Contains(ans.AnswerText, "test question") && !tt.wantUsedLLM {
				t.Errorf("templated answer should quote the question: %q", ans.AnswerText)
			}
		})
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	s := newTestService(t, &MockIndex{Dim: testDim}, &MockEmbedder{Dim: testDim}, &MockLLM{}, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := s.Answer(context.Background(), rag.AnswerRequest{Question: q}); !errors.Is(err, commonModels.ErrEmptyQuestion) {
			t.Errorf("question %q: got %v, want ErrEmptyQuestion", q, err)
		}
	}
}

func TestAnswer_PromptCarriesContextAndHistory(t *testing.T) {
	mLLM := &MockLLM{}
	s := newTestService(t, &MockIndex{Dim: testDim}, &MockEmbedder{Dim: testDim}, mLLM, nil)
	ctx := context.Background()

	first, err := s.Answer(ctx, rag.AnswerRequest{Question: "what is in my notes?", ConversationId: "conv-1"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ConversationId != "conv-1" {
		t.Errorf("conversation id got %s, want conv-1", first.ConversationId)
	}
	if _, err := s.Answer(ctx, rag.AnswerRequest{Question: "and the second thing?", ConversationId: "conv-1"}); err != nil {
		t.Fatal(err)
	}

	if len(mLLM.Prompts) != 2 {
		t.Fatalf("prompts got %d, want 2", len(mLLM.Prompts))
	}
	if !strings.Contains(mLLM.Prompts[0], "Document: notes.txt\nContent: default context") {
		t.Errorf("prompt missing context block: %q", mLLM.Prompts[0])
	}
	if strings.Contains(mLLM.Prompts[0], "Previous conversation") {
		t.Error("first prompt should have no history")
	}
	if !strings.Contains(mLLM.Prompts[1], "Question: what is in my notes?\nAnswer: mocked llm response") {
		t.Errorf("second prompt missing history: %q", mLLM.Prompts[1])
	}
	if !strings.HasSuffix(mLLM.Prompts[1], "Question: and the second thing?\n\nAnswer based on the context provided:") {
		t.Errorf("prompt should end with the question: %q", mLLM.Prompts[1])
	}
}

func TestAnswer_OnlyLLMAnswersAreCached(t *testing.T) {
	saved := 0
	mCache := &MockCache{
		OnSaveToCache: func(ctx context.Context, id string, v []float32, a string) error {
			saved++
			return nil
		},
	}
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("provider down")
	}}
	s := newTestService(t, &MockIndex{Dim: testDim}, &MockEmbedder{Dim: testDim}, mLLM, mCache)

	if _, err := s.Answer(context.Background(), rag.AnswerRequest{Question: "q"}); err != nil {
		t.Fatal(err)
	}
	if saved != 0 {
		t.Errorf("fallback answers must not be cached, saved %d", saved)
	}

	mLLM.OnGenerate = nil
	if _, err := s.Answer(context.Background(), rag.AnswerRequest{Question: "q"}); err != nil {
		t.Fatal(err)
	}
	if saved != 1 {
		t.Errorf("saved got %d, want 1", saved)
	}
}

func TestAnswer_FollowUpSkipsCache(t *testing.T) {
	lookups := 0
	mCache := &MockCache{
		OnGetCachedAnswer: func(ctx context.Context, v []float32) (string, bool, error) {
			lookups++
			return "answer cached without history", true, nil
		},
	}
	mLLM := &MockLLM{}
	s := newTestService(t, &MockIndex{Dim: testDim}, &MockEmbedder{Dim: testDim}, mLLM, mCache)
	ctx := context.Background()

	first, err := s.Answer(ctx, rag.AnswerRequest{Question: "what is in my notes?", ConversationId: "conv-2"})
	if err != nil {
		t.Fatal(err)
	}
	if !first.Cached || lookups != 1 {
		t.Fatalf("first turn should be served from cache: cached=%v lookups=%d", first.Cached, lookups)
	}

	second, err := s.Answer(ctx, rag.AnswerRequest{Question: "what is in my notes?", ConversationId: "conv-2"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Cached {
		t.Error("follow-up turn must not be answered from cache")
	}
	if lookups != 1 {
		t.Errorf("cache lookups got %d, want 1", lookups)
	}
	if second.AnswerText != "mocked llm response" || len(mLLM.Prompts) != 1 {
		t.Errorf("follow-up should go to the model: %q, prompts %d", second.AnswerText, len(mLLM.Prompts))
	}
	if !strings.Contains(mLLM.Prompts[0], "Previous conversation") {
		t.Errorf("follow-up prompt missing history: %q", mLLM.Prompts[0])
	}
}

func TestQuery_Threshold(t *testing.T) {
	mIdx := &MockIndex{Dim: testDim, OnSearch: func(ctx context.Context, q []float32, k int) ([]vectorDB.SearchHit, error) {
		hits := []vectorDB.SearchHit{
			{Row: 0, Score: 0.9, Chunk: vectorDB.ChunkRecord{Handle: 1, Content: "a"}, Document: vectorDB.DocumentRecord{Id: "d", Filename: "a.txt"}},
			{Row: 1, Score: 0.5, Chunk: vectorDB.ChunkRecord{Handle: 2, Content: "b"}, Document: vectorDB.DocumentRecord{Id: "d", Filename: "a.txt"}},
			{Row: 2, Score: 0.1, Chunk: vectorDB.ChunkRecord{Handle: 3, Content: "c"}, Document: vectorDB.DocumentRecord{Id: "d", Filename: "a.txt"}},
		}
		return hits[:min(k, len(hits))], nil
	}}
	s := newTestService(t, mIdx, &MockEmbedder{Dim: testDim}, nil, nil)

	tests := []struct {
		name      string
		k         int
		threshold float64
		want      int
	}{
		{"no threshold", 5, 0, 3},
		{"threshold drops low scores", 5, 0.4, 2},
		{"threshold above all", 5, 0.95, 0},
		{"k limits", 1, 0, 1},
		{"k zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(context.Background(), "query", tt.k, tt.threshold)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("results got %d, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].SimilarityScore > got[i-1].SimilarityScore {
					t.Errorf("results not descending at %d", i)
				}
			}
		})
	}
}

func TestNewService_DimensionMismatch(t *testing.T) {
	_, err := rag.NewService(rag.Dependencies{
		Index:    &MockIndex{Dim: 16},
		Embedder: &MockEmbedder{Dim: testDim},
	})
	if !errors.Is(err, commonModels.ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}

	if _, err := rag.NewService(rag.Dependencies{Embedder: &MockEmbedder{Dim: testDim}}); err == nil {
		t.Fatal("expected error for missing index")
	}
}

func TestClearIndex(t *testing.T) {
	resets := 0
	mCache := &MockCache{OnReset: func(ctx context.Context) error {
		resets++
		return errors.New("cache unavailable")
	}}
	s := newTestService(t, &MockIndex{Dim: testDim}, &MockEmbedder{Dim: testDim}, &MockLLM{}, mCache)
	if err := s.ClearIndex(context.Background()); err != nil {
		t.Fatalf("cache failures must not fail a clear: %v", err)
	}
	if resets != 1 {
		t.Errorf("resets got %d, want 1", resets)
	}

	failing := &MockIndex{Dim: testDim, OnClear: func(ctx context.Context) error {
		return &commonModels.PersistenceError{Op: "remove", Path: "x", Cause: errors.New("read-only")}
	}}
	s = newTestService(t, failing, &MockEmbedder{Dim: testDim}, nil, nil)
	if err := s.ClearIndex(context.Background()); !errors.Is(err, commonModels.ErrPersistence) {
		t.Errorf("got %v, want ErrPersistence", err)
	}
}
