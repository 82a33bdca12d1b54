package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 3 * time.Second
	ioTimeout   = 30 * time.Second
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

type Options struct {
	Addr     string
	Password string
	// DB selects one of the 16 logical databases, see config.RedisDocumentStore
	DB int
}

// NewRedisStore connects and pings. Callers fall back to in-memory stores when this fails.
func NewRedisStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	newClient := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           ioTimeout,
		WriteTimeout:          ioTimeout,
	})
	logger := logger_i.NewLogger("Redis Store").With("db", opts.DB)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := newClient.Ping(pingCtx).Err(); err != nil {
		_ = newClient.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", opts.Addr, err)
	}

	logger.Info("Redis Store init successfully", "addr", opts.Addr)
	return &Store{client: newClient, Type: opts.DB, logger: logger}, nil
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis Store")
	return s.client.Close()
}

// NewTestStore wraps an existing client, used with miniredis in tests.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store"),
	}
}
