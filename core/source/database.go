package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
	"github.com/google/uuid"
)

// Database polls a SQL query on an interval and submits each result row,
// JSON-encoded, as a message. Grounded on the reference DatabasePoller;
// column decoding is scoped to string/int64/float64/bool, the same subset
// the reference implementation's dynamic-to-JSON mapping attempts before
// falling back to a string representation.
type Database struct {
	DSN          string
	Query        string
	IntervalMs   int64
	ChannelID    uuid.UUID
	MessageStore store.MessageStore
}

func NewDatabase(dsn, query string, intervalMs int64, channelID uuid.UUID) *Database {
	if intervalMs <= 0 {
		intervalMs = 5000
	}
	return &Database{DSN: dsn, Query: query, IntervalMs: intervalMs, ChannelID: channelID}
}

func (d *Database) Run(ctx context.Context, sink Sink) error {
	db, err := sql.Open("pgx", d.DSN)
	if err != nil {
		return fmt.Errorf("connect to database poller source: %w", err)
	}
	defer db.Close()

	ticker := time.NewTicker(time.Duration(d.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.poll(ctx, db, sink)
		}
	}
}

func (d *Database) poll(ctx context.Context, db *sql.DB, sink Sink) {
	rows, err := db.QueryContext(ctx, d.Query)
	if err != nil {
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return
	}

	for rows.Next() {
		values := make([]any, len(cols))
		scanArgs := make([]any, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			continue
		}

		rowMap := make(map[string]any, len(cols))
		for i, col := range cols {
			rowMap[col] = normalizeColumnValue(values[i])
		}

		payload, err := json.Marshal(rowMap)
		if err != nil {
			continue
		}

		msg := message.New(d.ChannelID, string(payload), "Database Poller")
		if err := persistIngest(ctx, d.MessageStore, msg); err != nil {
			continue
		}

		reply := sink.Submit(ctx, msg)
		_, _ = reply.Wait(ctx)
	}
}

func normalizeColumnValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
