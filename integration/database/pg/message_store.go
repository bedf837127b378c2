package pg

import (
	"context"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageStore is a Postgres-backed store.MessageStore.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore returns a MessageStore backed by pool. The caller is
// responsible for applying migrations before first use.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// queryExecer is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// method run inside a caller-supplied transaction via pg.TxFromContext.
type queryExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *MessageStore) q(ctx context.Context) queryExecer {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *MessageStore) Save(ctx context.Context, msg *store.PersistedMessage) error {
	now := time.Now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now

	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO messages (id, channel_id, content, origin, status, error_message, retry_count, duration_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			origin = EXCLUDED.origin,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			retry_count = EXCLUDED.retry_count,
			duration_ms = EXCLUDED.duration_ms,
			updated_at = EXCLUDED.updated_at`,
		msg.ID, msg.ChannelID, msg.Content, msg.Origin, string(msg.Status), msg.Error,
		msg.RetryCount, msg.Duration.Milliseconds(), msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

func (s *MessageStore) UpdateStatus(ctx context.Context, id uuid.UUID, status message.Status, errMsg string, duration time.Duration) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE messages SET
			status = $2,
			error_message = $3,
			duration_ms = CASE WHEN $4::bigint > 0 THEN $4 ELSE duration_ms END,
			updated_at = now()
		WHERE id = $1`,
		id, string(status), errMsg, duration.Milliseconds(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MessageStore) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE messages SET retry_count = retry_count + 1, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MessageStore) Get(ctx context.Context, id uuid.UUID) (*store.PersistedMessage, error) {
	row := s.q(ctx).QueryRow(ctx, `
		SELECT id, channel_id, content, origin, status, error_message, retry_count, duration_ms, created_at, updated_at
		FROM messages WHERE id = $1`, id)
	return scanMessage(row)
}

func (s *MessageStore) ListByChannel(ctx context.Context, channelID uuid.UUID, limit int) ([]store.PersistedMessage, error) {
	query := `
		SELECT id, channel_id, content, origin, status, error_message, retry_count, duration_ms, created_at, updated_at
		FROM messages WHERE channel_id = $1 ORDER BY created_at DESC`
	args := []any{channelID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.queryMessages(ctx, query, args...)
}

func (s *MessageStore) ListErrored(ctx context.Context) ([]store.PersistedMessage, error) {
	return s.queryMessages(ctx, `
		SELECT id, channel_id, content, origin, status, error_message, retry_count, duration_ms, created_at, updated_at
		FROM messages WHERE status = $1 ORDER BY created_at DESC`, string(message.StatusError))
}

func (s *MessageStore) GetPending(ctx context.Context) ([]store.PersistedMessage, error) {
	return s.queryMessages(ctx, `
		SELECT id, channel_id, content, origin, status, error_message, retry_count, duration_ms, created_at, updated_at
		FROM messages WHERE status IN ($1, $2) ORDER BY created_at DESC`,
		string(message.StatusPending), string(message.StatusProcessing))
}

func (s *MessageStore) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	tag, err := s.q(ctx).Exec(ctx, `
		DELETE FROM messages WHERE created_at < now() - make_interval(days => $1)`,
		olderThanDays,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *MessageStore) queryMessages(ctx context.Context, query string, args ...any) ([]store.PersistedMessage, error) {
	rows, err := s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.PersistedMessage
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row pgx.Row) (*store.PersistedMessage, error) {
	m, err := scanMessageRow(row)
	if IsNotFoundError(err) {
		return nil, store.ErrNotFound
	}
	return m, err
}

func scanMessageRow(row rowScanner) (*store.PersistedMessage, error) {
	var m store.PersistedMessage
	var status string
	var durationMs int64
	if err := row.Scan(&m.ID, &m.ChannelID, &m.Content, &m.Origin, &status, &m.Error, &m.RetryCount, &durationMs, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = message.Status(status)
	m.Duration = time.Duration(durationMs) * time.Millisecond
	return &m, nil
}
