package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]commonModels.ConversationTurn
}

var _ commonModels.ConversationStore = (*InMemoryConversationStore)(nil)

func InitConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]commonModels.ConversationTurn),
	}
}

func (store *InMemoryConversationStore) AppendTurn(ctx context.Context, id string, turn commonModels.ConversationTurn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	turns := append(store.chatMap[id], turn)
	if len(turns) > maxStoredTurns {
		turns = turns[len(turns)-maxStoredTurns:]
	}
	store.chatMap[id] = turns
	return nil
}

func (store *InMemoryConversationStore) RecentTurns(ctx context.Context, id string, limit int) ([]commonModels.ConversationTurn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	turns := store.chatMap[id]
	if limit <= 0 || len(turns) == 0 {
		return []commonModels.ConversationTurn{}, nil
	}
	start := max(len(turns)-limit, 0)
	out := make([]commonModels.ConversationTurn, len(turns)-start)
	copy(out, turns[start:])
	return out, nil
}
