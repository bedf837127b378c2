// Package store defines the persistence-facing shapes and interfaces a
// channel runtime depends on: durable message status, deduplication, a
// bounded recent-log ring, and the channel definitions themselves.
// Concrete backends (in-memory, Postgres) live here and in
// integration/database/pg.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("store: not found")

// PersistedMessage is the durable record of a Message's lifecycle.
type PersistedMessage struct {
	ID         uuid.UUID
	ChannelID  uuid.UUID
	Content    string
	Origin     string
	Status     message.Status
	RetryCount int
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MessageStore durably records every message a channel processes and its
// terminal (or in-flight) status.
type MessageStore interface {
	Save(ctx context.Context, msg *PersistedMessage) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status message.Status, errMsg string, duration time.Duration) error
	IncrementRetry(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*PersistedMessage, error)
	ListByChannel(ctx context.Context, channelID uuid.UUID, limit int) ([]PersistedMessage, error)
	ListErrored(ctx context.Context) ([]PersistedMessage, error)

	// GetPending returns every message still in PENDING or PROCESSING
	// status, newest first. Called once at boot by
	// ChannelManager.RecoverPendingMessages to re-inject messages that
	// were in flight when the process last stopped.
	GetPending(ctx context.Context) ([]PersistedMessage, error)

	// Prune deletes persisted messages older than olderThanDays and
	// returns how many rows were removed.
	Prune(ctx context.Context, olderThanDays int) (int64, error)
}

// DedupStore answers "have we seen this content on this channel recently"
// using a TTL-bounded content hash, matching the original implementation's
// SQLite-backed `processed_ids` table.
type DedupStore interface {
	IsDuplicate(ctx context.Context, channelID uuid.UUID, content string) (bool, error)
	MarkProcessed(ctx context.Context, channelID uuid.UUID, content string) error
	CleanupExpired(ctx context.Context) (int64, error)
	ClearChannel(ctx context.Context, channelID uuid.UUID) error
}

// ChannelStore persists channel definitions across restarts.
type ChannelStore interface {
	Save(ctx context.Context, ch *message.Channel) error
	Get(ctx context.Context, id uuid.UUID) (*message.Channel, error)
	List(ctx context.Context) ([]message.Channel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LogEntry is one line appended to a channel's recent-activity ring.
type LogEntry struct {
	Timestamp time.Time
	ChannelID uuid.UUID
	Level     string
	Message   string
}

// LogBuffer is a bounded log ring shared by every component of a channel
// for operator-facing activity feeds. Recent returns the newest n entries,
// oldest first.
type LogBuffer interface {
	Push(entry LogEntry)
	Recent(n int) []LogEntry
}
