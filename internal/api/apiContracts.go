package api

import "time"

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"query is required"`
	TraceId string `json:"trace_id,omitempty" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
}

type UploadResult struct {
	Filename     string `json:"filename" example:"handbook.pdf"`
	Status       string `json:"status" example:"completed"`
	DocumentId   string `json:"document_id,omitempty"`
	TotalChunks  int    `json:"total_chunks"`
	TotalVectors int    `json:"total_vectors"`
	Error        string `json:"error,omitempty"`
}

type UploadResponse struct {
	Message   string         `json:"message" example:"Documents processed successfully"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []UploadResult `json:"results"`
}

type DocumentResponse struct {
	Id              string    `json:"id"`
	Filename        string    `json:"filename"`
	FileSize        int64     `json:"file_size"`
	ContentType     string    `json:"content_type"`
	Status          string    `json:"status"`
	ProcessingError string    `json:"processing_error,omitempty"`
	TotalChunks     int       `json:"total_chunks"`
	EmbeddingModel  string    `json:"embedding_model,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type SearchResult struct {
	DocumentId       string  `json:"document_id"`
	DocumentFilename string  `json:"document_filename"`
	ChunkId          int     `json:"chunk_id"`
	ChunkIndex       int     `json:"chunk_index"`
	Content          string  `json:"content"`
	SimilarityScore  float64 `json:"similarity_score"`
	PageNumber       int     `json:"page_number,omitempty"`
}

type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

type ChatResponse struct {
	Message        string         `json:"message"`
	Response       string         `json:"response"`
	ConversationId string         `json:"conversation_id"`
	Sources        []SearchResult `json:"sources"`
	UsedLLM        bool           `json:"used_llm"`
	Cached         bool           `json:"cached,omitempty"`
	LLMError       string         `json:"llm_error,omitempty"`
}

type ClearResponse struct {
	Message string `json:"message" example:"Vector store cleared successfully"`
}

// requests---------------------

type SearchRequest struct {
	Query               string  `json:"query" validate:"required" example:"refund policy"`
	NumResults          int     `json:"num_results,omitempty" example:"5"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" example:"0.2"`
}

type ChatRequest struct {
	Message             string  `json:"message" validate:"required" example:"What is our refund policy?"`
	ConversationId      string  `json:"conversation_id,omitempty"`
	NumContextDocs      int     `json:"num_context_docs,omitempty" example:"4"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}
