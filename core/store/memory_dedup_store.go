package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDedupTTL matches the original implementation's default
// deduplication window for the `processed_ids` table.
const DefaultDedupTTL = 24 * time.Hour

type dedupEntry struct {
	expiresAt time.Time
}

// MemoryDedupStore is a process-local, TTL-bounded content-hash dedup
// store, keyed per channel exactly as the original `processed_ids` table
// is (channel_id, message_hash, expires_at).
type MemoryDedupStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]map[string]dedupEntry
	ttl     time.Duration
}

func NewMemoryDedupStore(ttl time.Duration) *MemoryDedupStore {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &MemoryDedupStore{
		entries: make(map[uuid.UUID]map[string]dedupEntry),
		ttl:     ttl,
	}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (s *MemoryDedupStore) IsDuplicate(ctx context.Context, channelID uuid.UUID, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byHash, ok := s.entries[channelID]
	if !ok {
		return false, nil
	}
	entry, ok := byHash[hashContent(content)]
	if !ok {
		return false, nil
	}
	return time.Now().Before(entry.expiresAt), nil
}

func (s *MemoryDedupStore) MarkProcessed(ctx context.Context, channelID uuid.UUID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byHash, ok := s.entries[channelID]
	if !ok {
		byHash = make(map[string]dedupEntry)
		s.entries[channelID] = byHash
	}
	hash := hashContent(content)
	if _, exists := byHash[hash]; exists {
		return nil // INSERT OR IGNORE semantics
	}
	byHash[hash] = dedupEntry{expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryDedupStore) CleanupExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for channelID, byHash := range s.entries {
		for hash, entry := range byHash {
			if now.After(entry.expiresAt) {
				delete(byHash, hash)
				removed++
			}
		}
		if len(byHash) == 0 {
			delete(s.entries, channelID)
		}
	}
	return removed, nil
}

func (s *MemoryDedupStore) ClearChannel(ctx context.Context, channelID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, channelID)
	return nil
}
