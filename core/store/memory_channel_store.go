package store

import (
	"context"
	"sync"

	"github.com/conduithq/conduit/core/message"
	"github.com/google/uuid"
)

// MemoryChannelStore is a process-local ChannelStore.
type MemoryChannelStore struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]message.Channel
}

func NewMemoryChannelStore() *MemoryChannelStore {
	return &MemoryChannelStore{channels: make(map[uuid.UUID]message.Channel)}
}

func (s *MemoryChannelStore) Save(ctx context.Context, ch *message.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = *ch
	return nil
}

func (s *MemoryChannelStore) Get(ctx context.Context, id uuid.UUID) (*message.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := ch
	return &cp, nil
}

func (s *MemoryChannelStore) List(ctx context.Context) ([]message.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]message.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (s *MemoryChannelStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
	return nil
}
