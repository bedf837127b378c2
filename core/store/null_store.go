package store

import (
	"context"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/google/uuid"
)

// NullMessageStore discards everything. It makes "no durable persistence"
// a first-class, explicit configuration for a channel rather than an
// implicit nil-pointer failure mode.
type NullMessageStore struct{}

func (NullMessageStore) Save(ctx context.Context, msg *PersistedMessage) error { return nil }
func (NullMessageStore) UpdateStatus(ctx context.Context, id uuid.UUID, status message.Status, errMsg string, duration time.Duration) error {
	return nil
}
func (NullMessageStore) IncrementRetry(ctx context.Context, id uuid.UUID) error { return nil }
func (NullMessageStore) Get(ctx context.Context, id uuid.UUID) (*PersistedMessage, error) {
	return nil, ErrNotFound
}
func (NullMessageStore) ListByChannel(ctx context.Context, channelID uuid.UUID, limit int) ([]PersistedMessage, error) {
	return nil, nil
}
func (NullMessageStore) ListErrored(ctx context.Context) ([]PersistedMessage, error) {
	return nil, nil
}
func (NullMessageStore) GetPending(ctx context.Context) ([]PersistedMessage, error) {
	return nil, nil
}
func (NullMessageStore) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

// NullDedupStore never considers anything a duplicate. It makes
// "deduplication disabled" an explicit configuration choice.
type NullDedupStore struct{}

func (NullDedupStore) IsDuplicate(ctx context.Context, channelID uuid.UUID, content string) (bool, error) {
	return false, nil
}
func (NullDedupStore) MarkProcessed(ctx context.Context, channelID uuid.UUID, content string) error {
	return nil
}
func (NullDedupStore) CleanupExpired(ctx context.Context) (int64, error) { return 0, nil }
func (NullDedupStore) ClearChannel(ctx context.Context, channelID uuid.UUID) error {
	return nil
}
