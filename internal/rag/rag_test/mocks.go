package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

// MockIndex implements vectorDB.VectorIndex
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnAddVectors func(ctx context.Context, vectors [][]float32, chunks []vectorDB.ChunkRecord, doc vectorDB.DocumentRecord) (vectorDB.AddResult, error)
	OnSearch     func(ctx context.Context, query []float32, k int) ([]vectorDB.SearchHit, error)
	OnClear      func(ctx context.Context) error
	Dim          int
}

func (m *MockIndex) AddVectors(ctx context.Context, vectors [][]float32, chunks []vectorDB.ChunkRecord, doc vectorDB.DocumentRecord) (vectorDB.AddResult, error) {
	if m.OnAddVectors != nil {
		return m.OnAddVectors(ctx, vectors, chunks, doc)
	}
	return vectorDB.AddResult{Added: len(vectors), TotalVectors: len(vectors)}, nil
}

func (m *MockIndex) Search(ctx context.Context, query []float32, k int) ([]vectorDB.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, k)
	}
	return []vectorDB.SearchHit{defaultHit}, nil
}

func (m *MockIndex) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	return nil
}

func (m *MockIndex) Stats() vectorDB.IndexStats {
	return vectorDB.IndexStats{Name: "mock", State: vectorDB.StateReady, Dimension: m.Dim}
}

var defaultHit = vectorDB.SearchHit{
	Row:      0,
	Score:    0.9,
	Chunk:    vectorDB.ChunkRecord{Handle: 1, ChunkIndex: 0, Content: "default context"},
	Document: vectorDB.DocumentRecord{Id: "doc-1", Filename: "notes.txt"},
}

// MockCache implements vectorDB.AnswerCache
type MockCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
	OnReset           func(ctx context.Context) error
}

func (m *MockCache) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockCache) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockCache) Reset(ctx context.Context) error {
	if m.OnReset != nil {
		return m.OnReset(ctx)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
	Dim              int
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = m.vector()
	}
	return out, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return m.vector(), nil
}

func (m *MockEmbedder) Dimension() int    { return m.Dim }
func (m *MockEmbedder) ModelName() string { return "mock-embedding" }

func (m *MockEmbedder) vector() []float32 {
	v := make([]float32, m.Dim)
	if m.Dim > 0 {
		v[0] = 1
	}
	return v
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Name() string { return "mock" }
