package rag

import (
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

type Status struct {
	State          string                              `json:"status"`
	Index          vectorDB.IndexStats                 `json:"vector_store"`
	TotalDocuments int                                 `json:"total_documents"`
	DocumentCounts map[commonModels.DocumentStatus]int `json:"document_counts"`
	EmbeddingModel string                              `json:"embedding_model"`
	LLMProvider    string                              `json:"llm_provider,omitempty"`
	Features       Features                            `json:"features"`
}

type Features struct {
	DocumentUpload   bool     `json:"document_upload"`
	TextExtraction   bool     `json:"text_extraction"`
	VectorSearch     bool     `json:"vector_search"`
	RAGChat          bool     `json:"rag_chat"`
	LLMAnswers       bool     `json:"llm_answers"`
	AnswerCache      bool     `json:"answer_cache"`
	SupportedFormats []string `json:"supported_formats"`
}

func features(llm, cache bool) Features {
	return Features{
		DocumentUpload:   true,
		TextExtraction:   true,
		VectorSearch:     true,
		RAGChat:          true,
		LLMAnswers:       llm,
		AnswerCache:      cache,
		SupportedFormats: ingest.SupportedExtensions(),
	}
}
