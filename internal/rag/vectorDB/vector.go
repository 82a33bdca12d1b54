package vectorDB

import (
	"context"
	"time"
)

type DocHandle int
type ChunkHandle int

type IndexState string

const (
	StateUninitialized IndexState = "UNINITIALIZED"
	StateReady         IndexState = "READY"
)

type DocumentRecord struct {
	Handle         DocHandle `json:"handle"`
	Id             string    `json:"id"`
	Filename       string    `json:"filename"`
	Size           int64     `json:"file_size"`
	ContentType    string    `json:"content_type"`
	TextLength     int       `json:"text_length"`
	TotalChunks    int       `json:"total_chunks"`
	EmbeddingModel string    `json:"embedding_model"`
	IngestedAt     time.Time `json:"ingested_at"`
}

type ChunkRecord struct {
	Handle     ChunkHandle `json:"handle"`
	Document   DocHandle   `json:"document"`
	Row        int         `json:"row"`
	ChunkIndex int         `json:"chunk_index"`
	PageNum    int         `json:"page_num,omitempty"`
	StartChar  int         `json:"start_char"`
	EndChar    int         `json:"end_char"`
	Content    string      `json:"content"`
}

type SearchHit struct {
	Row      int
	Score    float64
	Chunk    ChunkRecord
	Document DocumentRecord
}

type AddResult struct {
	Document     DocHandle
	FirstRow     int
	Added        int
	TotalVectors int
}

type IndexStats struct {
	Name           string     `json:"name"`
	State          IndexState `json:"state"`
	TotalVectors   int        `json:"total_vectors"`
	TotalDocuments int        `json:"total_documents"`
	TotalChunks    int        `json:"total_chunks"`
	Dimension      int        `json:"dimension"`
	EmbeddingModel string     `json:"embedding_model"`
	IndexPath      string     `json:"index_path"`
	MetadataPath   string     `json:"metadata_path"`
	OutOfSync      bool       `json:"out_of_sync"`
}

// VectorIndex is a persistent nearest-neighbour structure with chunk and document metadata
// aligned to its vector rows.
type VectorIndex interface {
	AddVectors(ctx context.Context, vectors [][]float32, chunks []ChunkRecord, doc DocumentRecord) (AddResult, error)
	Search(ctx context.Context, query []float32, k int) ([]SearchHit, error)
	Clear(ctx context.Context) error
	Stats() IndexStats
}

// AnswerCache stores generated answers keyed by question embedding.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
	Reset(ctx context.Context) error
}
