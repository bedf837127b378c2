package pg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DedupStore is a Postgres-backed store.DedupStore, matching the
// processed_ids table's (channel_id, message_hash) uniqueness.
type DedupStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewDedupStore returns a DedupStore backed by pool. A zero ttl falls back
// to a 24 hour deduplication window.
func NewDedupStore(pool *pgxpool.Pool, ttl time.Duration) *DedupStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DedupStore{pool: pool, ttl: ttl}
}

func (s *DedupStore) q(ctx context.Context) queryExecer {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (s *DedupStore) IsDuplicate(ctx context.Context, channelID uuid.UUID, content string) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM processed_ids
			WHERE channel_id = $1 AND message_hash = $2 AND expires_at > now()
		)`, channelID, hashContent(content),
	).Scan(&exists)
	return exists, err
}

func (s *DedupStore) MarkProcessed(ctx context.Context, channelID uuid.UUID, content string) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO processed_ids (channel_id, message_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, message_hash) DO NOTHING`,
		channelID, hashContent(content), time.Now().Add(s.ttl),
	)
	return err
}

func (s *DedupStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM processed_ids WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *DedupStore) ClearChannel(ctx context.Context, channelID uuid.UUID) error {
	_, err := s.q(ctx).Exec(ctx, `DELETE FROM processed_ids WHERE channel_id = $1`, channelID)
	return err
}
