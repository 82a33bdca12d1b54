package commonModels

import (
	"context"
	"time"
)

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var MD DocType = "MD"
var ERR DocType = "ERROR"

type DocumentStatus string

const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Document struct {
	Id              string         `json:"id"`
	Name            string         `json:"filename"`
	Size            int64          `json:"file_size"`
	ContentType     DocType        `json:"content_type"`
	Status          DocumentStatus `json:"status"`
	ProcessingError string         `json:"processing_error,omitempty"`
	TotalChunks     int            `json:"total_chunks"`
	EmbeddingModel  string         `json:"embedding_model,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type DocChunk struct {
	DocumentId   string `json:"document_id"`
	Content      string `json:"content"`
	ChunkIndex   int    `json:"chunk_index"`
	PageNum      int    `json:"page_num,omitempty"`
	StartChar    int    `json:"start_char"`
	EndChar      int    `json:"end_char"`
	EmbeddingRow int    `json:"embedding_row"`
}

type IngestResult struct {
	Status       DocumentStatus `json:"status"`
	DocumentId   string         `json:"document_id,omitempty"`
	Filename     string         `json:"filename"`
	TotalChunks  int            `json:"total_chunks"`
	TotalVectors int            `json:"total_vectors"`
	Error        string         `json:"error,omitempty"`
}

type SearchResult struct {
	DocumentId       string  `json:"document_id"`
	DocumentFilename string  `json:"document_filename"`
	ChunkId          int     `json:"chunk_id"`
	ChunkIndex       int     `json:"chunk_index"`
	Content          string  `json:"content"`
	SimilarityScore  float64 `json:"similarity_score"`
	PageNum          int     `json:"page_num,omitempty"`
	StartChar        int     `json:"start_char"`
	EndChar          int     `json:"end_char"`
}

type Answer struct {
	Question       string         `json:"question"`
	AnswerText     string         `json:"answer"`
	Sources        []SearchResult `json:"sources"`
	UsedLLM        bool           `json:"used_llm"`
	Cached         bool           `json:"cached,omitempty"`
	LLMError       string         `json:"llm_error,omitempty"`
	ConversationId string         `json:"conversation_id,omitempty"`
}

type ConversationTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []string  `json:"sources,omitempty"`
	At       time.Time `json:"at"`
}

// DocumentStore mirrors document and chunk records for the management layer.
// The retrieval core never depends on it for correctness.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	ListDocuments(ctx context.Context) ([]Document, error)
	SaveChunks(ctx context.Context, documentId string, chunks []DocChunk) error
	GetChunks(ctx context.Context, documentId string) ([]DocChunk, error)
	Clear(ctx context.Context) error
}

type ConversationStore interface {
	AppendTurn(ctx context.Context, conversationId string, turn ConversationTurn) error
	RecentTurns(ctx context.Context, conversationId string, limit int) ([]ConversationTurn, error)
}
