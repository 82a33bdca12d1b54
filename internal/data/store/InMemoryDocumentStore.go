package store

import (
	"context"
	"slices"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

type InMemoryDocumentStore struct {
	mu     *sync.RWMutex
	docs   map[string]commonModels.Document
	chunks map[string][]commonModels.DocChunk
}

var _ commonModels.DocumentStore = (*InMemoryDocumentStore)(nil)

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		mu:     new(sync.RWMutex),
		docs:   make(map[string]commonModels.Document),
		chunks: make(map[string][]commonModels.DocChunk),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if existing, ok := store.docs[doc.Id]; ok && existing.Status.IsTerminal() && existing.Status != doc.Status {
		return ErrTerminalStatus
	}
	store.docs[doc.Id] = doc
	inMemLogger.Debug("Saved document to store", "document", doc.Id, "status", doc.Status)
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (commonModels.Document, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	doc, found := store.docs[id]
	return doc, found
}

func (store *InMemoryDocumentStore) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	out := make([]commonModels.Document, 0, len(store.docs))
	for _, d := range store.docs {
		out = append(out, d)
	}
	sortNewestFirst(out)
	return out, nil
}

func (store *InMemoryDocumentStore) SaveChunks(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.chunks[documentId] = slices.Clone(chunks)
	return nil
}

func (store *InMemoryDocumentStore) GetChunks(ctx context.Context, documentId string) ([]commonModels.DocChunk, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return slices.Clone(store.chunks[documentId]), nil
}

func (store *InMemoryDocumentStore) Clear(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.docs = make(map[string]commonModels.Document)
	store.chunks = make(map[string][]commonModels.DocChunk)
	return nil
}
