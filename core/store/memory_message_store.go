package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/google/uuid"
)

// MemoryMessageStore is a process-local MessageStore, useful for tests and
// for deployments that run without durable persistence.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*PersistedMessage
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{messages: make(map[uuid.UUID]*PersistedMessage)}
}

func (s *MemoryMessageStore) Save(ctx context.Context, msg *PersistedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now

	cp := *msg
	s.messages[msg.ID] = &cp
	return nil
}

func (s *MemoryMessageStore) UpdateStatus(ctx context.Context, id uuid.UUID, status message.Status, errMsg string, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	m.Error = errMsg
	if duration > 0 {
		m.Duration = duration
	}
	m.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryMessageStore) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return ErrNotFound
	}
	m.RetryCount++
	m.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryMessageStore) Get(ctx context.Context, id uuid.UUID) (*PersistedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryMessageStore) ListByChannel(ctx context.Context, channelID uuid.UUID, limit int) ([]PersistedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PersistedMessage
	for _, m := range s.messages {
		if m.ChannelID == channelID {
			out = append(out, *m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryMessageStore) ListErrored(ctx context.Context) ([]PersistedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PersistedMessage
	for _, m := range s.messages {
		if m.Status == message.StatusError {
			out = append(out, *m)
		}
	}
	return out, nil
}

// GetPending returns every message left in PENDING or PROCESSING, newest
// first -- the set recover_pending_messages re-injects at boot.
func (s *MemoryMessageStore) GetPending(ctx context.Context) ([]PersistedMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PersistedMessage
	for _, m := range s.messages {
		if m.Status == message.StatusPending || m.Status == message.StatusProcessing {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Prune deletes every message older than olderThanDays and reports how
// many rows were removed.
func (s *MemoryMessageStore) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var removed int64
	for id, m := range s.messages {
		if m.CreatedAt.Before(cutoff) {
			delete(s.messages, id)
			removed++
		}
	}
	return removed, nil
}
