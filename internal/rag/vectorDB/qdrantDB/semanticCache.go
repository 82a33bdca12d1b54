package qdrantDB

import (
	"context"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/qdrant/go-client/qdrant"
)

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	loggr := db.logger.WithTrace(ctx)

	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache Query failed", "error", err)
		return "", false, err
	}
	if len(searchResult) == 0 {
		return "", false, nil
	}

	hit := searchResult[0]
	loggr.Debug("Closest cached answer", "semantic similarity score", hit.Score)
	if hit.Score < config.CacheSimilarityCutoff {
		return "", false, nil
	}
	if db.model != "" && hit.Payload["model"].GetStringValue() != db.model {
		return "", false, nil
	}

	answer := hit.Payload["answer"].GetStringValue()
	if answer == "" {
		return "", false, nil
	}
	loggr.Info("cache hit")
	return answer, true, nil
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	loggr := db.logger.WithTrace(ctx)

	loggr.Debug("Saving answer to cache")
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer,
					"model":     db.model,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}

// Reset drops every cached answer. Cached answers refer to documents that may no longer
// be indexed, so this runs whenever the index is cleared.
func (db *ClientHolder) Reset(ctx context.Context) error {
	if err := db.QObj.DeleteCollection(ctx, db.collection); err != nil {
		db.logger.WithTrace(ctx).Error("Dropping cache collection failed", "error", err)
		return err
	}
	return db.createCollection(ctx)
}
