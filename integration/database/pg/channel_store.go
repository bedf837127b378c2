package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChannelStore is a Postgres-backed store.ChannelStore. Channel.Source,
// Processors, Destinations, ErrorDestination and Metadata are serialized
// into a single JSONB config column; FrontendSchema is stored verbatim in
// its own column since the core never interprets it.
type ChannelStore struct {
	pool *pgxpool.Pool
}

func NewChannelStore(pool *pgxpool.Pool) *ChannelStore {
	return &ChannelStore{pool: pool}
}

func (s *ChannelStore) q(ctx context.Context) queryExecer {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// channelConfig is the JSON shape stored in the channels.config column. It
// carries every field of message.Channel except ID, Name and
// FrontendSchema, which have their own columns.
type channelConfig struct {
	Enabled          bool                         `json:"enabled"`
	Source           message.SourceConfig         `json:"source"`
	Processors       []message.ProcessorConfig    `json:"processors"`
	Destinations     []message.DestinationConfig  `json:"destinations"`
	ErrorDestination *message.DestinationConfig   `json:"error_destination,omitempty"`
	MaxRetries       int                          `json:"max_retries"`
	Metadata         map[string]string            `json:"metadata,omitempty"`
}

func (s *ChannelStore) Save(ctx context.Context, ch *message.Channel) error {
	cfg := channelConfig{
		Enabled:          ch.Enabled,
		Source:           ch.Source,
		Processors:       ch.Processors,
		Destinations:     ch.Destinations,
		ErrorDestination: ch.ErrorDestination,
		MaxRetries:       ch.MaxRetries,
		Metadata:         ch.Metadata,
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal channel config: %w", err)
	}

	var frontendSchema []byte
	if len(ch.FrontendSchema) > 0 {
		frontendSchema = ch.FrontendSchema
	}

	_, err = s.q(ctx).Exec(ctx, `
		INSERT INTO channels (id, name, config, frontend_schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			config = EXCLUDED.config,
			frontend_schema = EXCLUDED.frontend_schema,
			updated_at = now()`,
		ch.ID, ch.Name, configJSON, frontendSchema,
	)
	return err
}

func (s *ChannelStore) Get(ctx context.Context, id uuid.UUID) (*message.Channel, error) {
	row := s.q(ctx).QueryRow(ctx, `
		SELECT id, name, config, frontend_schema FROM channels WHERE id = $1`, id)
	ch, err := scanChannel(row)
	if IsNotFoundError(err) {
		return nil, store.ErrNotFound
	}
	return ch, err
}

func (s *ChannelStore) List(ctx context.Context) ([]message.Channel, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT id, name, config, frontend_schema FROM channels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []message.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ch)
	}
	return out, rows.Err()
}

func (s *ChannelStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q(ctx).Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

func scanChannel(row rowScanner) (*message.Channel, error) {
	var ch message.Channel
	var configJSON []byte
	var frontendSchema []byte
	if err := row.Scan(&ch.ID, &ch.Name, &configJSON, &frontendSchema); err != nil {
		return nil, err
	}

	var cfg channelConfig
	if err := json.Unmarshal(configJSON, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal channel config: %w", err)
	}
	ch.Enabled = cfg.Enabled
	ch.Source = cfg.Source
	ch.Processors = cfg.Processors
	ch.Destinations = cfg.Destinations
	ch.ErrorDestination = cfg.ErrorDestination
	ch.MaxRetries = cfg.MaxRetries
	ch.Metadata = cfg.Metadata
	if len(frontendSchema) > 0 {
		ch.FrontendSchema = frontendSchema
	}
	return &ch, nil
}
