package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

// pointsAPI is the part of *qdrant.Client the answer cache uses.
type pointsAPI interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Close() error
}

type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
	Dimension  int
	// Model is stored with every cached answer; answers from another embedding model never match
	Model string
}

type ClientHolder struct {
	QObj       pointsAPI
	collection string
	dimension  uint64
	model      string
	logger     *logger_i.Logger
}

var _ vectorDB.AnswerCache = (*ClientHolder)(nil)

// NewAnswerCache connects to qdrant and makes sure the cache collection exists.
func NewAnswerCache(ctx context.Context, cfg Config) (*ClientHolder, error) {
	if cfg.Host == "" {
		return nil, errors.New("qdrant host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = config.QdrantGrpcPort
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}
	return newClientHolder(ctx, client, cfg)
}

func newClientHolder(ctx context.Context, client pointsAPI, cfg Config) (*ClientHolder, error) {
	if cfg.Collection == "" {
		cfg.Collection = config.SemanticCacheName
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("invalid cache dimension %d", cfg.Dimension)
	}
	db := &ClientHolder{
		QObj:       client,
		collection: cfg.Collection,
		dimension:  uint64(cfg.Dimension),
		model:      cfg.Model,
		logger:     logger_i.NewLogger("Qdrant").With("collection", cfg.Collection),
	}

	initCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := db.createCollection(initCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", cfg.Collection, err)
	}
	db.logger.Info("Semantic cache ready")
	return db, nil
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) createCollection(ctx context.Context) error {
	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
