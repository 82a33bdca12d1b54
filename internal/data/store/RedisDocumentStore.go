package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

const (
	documentKeyPrefix = "doc:"
	chunksKeyPrefix   = "chunks:"
	documentSetKey    = "docs"
)

var ErrTerminalStatus = errors.New("document already reached a terminal status")

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ commonModels.DocumentStore = (*RedisDocumentStore)(nil)

func NewRedisDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	log := s.logger.WithTrace(ctx).With("document", doc.Id)

	if existing, ok := s.GetDocument(ctx, doc.Id); ok && existing.Status.IsTerminal() && existing.Status != doc.Status {
		return ErrTerminalStatus
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, documentKeyPrefix+doc.Id, data, 0); err != nil {
		log.Error("Error saving document", "error", err)
		return err
	}
	if err := s.store.SetAdd(ctx, documentSetKey, doc.Id); err != nil {
		log.Error("Error indexing document id", "error", err)
		return err
	}
	log.Debug("Saved document to Redis", "status", doc.Status)
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (commonModels.Document, bool) {
	var doc commonModels.Document
	val, err := s.store.Get(ctx, documentKeyPrefix+id)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.WithTrace(ctx).Error("Error getting document", "document", id, "error", err)
		return doc, false
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	ids, err := s.store.SetMembers(ctx, documentSetKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = documentKeyPrefix + id
	}
	values, err := s.store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	docs := make([]commonModels.Document, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var doc commonModels.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.WithTrace(ctx).Warn("Skipping unreadable document record", "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (s *RedisDocumentStore) SaveChunks(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, chunksKeyPrefix+documentId, data, 0)
}

func (s *RedisDocumentStore) GetChunks(ctx context.Context, documentId string) ([]commonModels.DocChunk, error) {
	val, err := s.store.Get(ctx, chunksKeyPrefix+documentId)
	if s.store.IsNil(err) {
		return []commonModels.DocChunk{}, nil
	} else if err != nil {
		return nil, err
	}
	var chunks []commonModels.DocChunk
	if err := json.Unmarshal([]byte(val), &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Clear empties the whole document database; it is dedicated to this store.
func (s *RedisDocumentStore) Clear(ctx context.Context) error {
	return s.store.FlushDB(ctx)
}

func sortNewestFirst(docs []commonModels.Document) {
	slices.SortFunc(docs, func(a, b commonModels.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
}
