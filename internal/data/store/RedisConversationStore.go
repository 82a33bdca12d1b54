package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

const (
	conversationKeyPrefix = "conv:"
	maxStoredTurns        = 50
)

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ commonModels.ConversationStore = (*RedisConversationStore)(nil)

func NewRedisConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) AppendTurn(ctx context.Context, id string, turn commonModels.ConversationTurn) error {
	log := s.logger.WithTrace(ctx).With("conversation", id)
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	key := conversationKeyPrefix + id
	if err := s.store.ListPush(ctx, key, data, maxStoredTurns); err != nil {
		log.Error("error saving turn", "error", err)
		return err
	}
	if err := s.store.Expire(ctx, key, config.RedisConversationTTL); err != nil {
		log.Warn("could not refresh conversation ttl", "error", err)
	}
	return nil
}

// RecentTurns returns up to limit turns, oldest first.
func (s *RedisConversationStore) RecentTurns(ctx context.Context, id string, limit int) ([]commonModels.ConversationTurn, error) {
	raw, err := s.store.ListGetLast(ctx, conversationKeyPrefix+id, int64(limit))
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error getting history", "conversation", id, "error", err)
		return nil, err
	}
	turns := make([]commonModels.ConversationTurn, 0, len(raw))
	for _, r := range raw {
		var turn commonModels.ConversationTurn
		if err := json.Unmarshal([]byte(r), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
