package destination

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/conduithq/conduit/core/message"
)

// Database writes message content to a SQL table, either via a
// channel-supplied custom query or a naive auto-generated INSERT.
// Matches the reference DatabaseWriter: a fresh connection per send (no
// pool reuse across destinations), and auto-generation only supports
// INSERT mode -- anything else must supply a custom query, the same MVP
// limitation the reference implementation documents.
type Database struct {
	dsn   string
	table string
	mode  string
	query string
}

func NewDatabase(cfg message.DestinationConfig) (*Database, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("database destination %q requires a connection URL", cfg.ID)
	}
	return &Database{
		dsn:   cfg.DBURL,
		table: cfg.Table,
		mode:  cfg.Mode,
		query: cfg.DBQuery,
	}, nil
}

func (d *Database) Send(ctx context.Context, msg *message.Message) error {
	query, args, err := d.buildQuery(msg)
	if err != nil {
		return err
	}

	// conduit ships a pgx-backed driver for Postgres (integration/database/pg);
	// the database destination targets whatever driver that registers itself
	// under, matching the reference writer's single sqlx::AnyPool approach.
	db, err := sql.Open("pgx", d.dsn)
	if err != nil {
		return fmt.Errorf("open database connection: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("execute database write: %w", err)
	}
	return nil
}

func (d *Database) buildQuery(msg *message.Message) (string, []any, error) {
	if d.query != "" {
		return d.query, []any{msg.Content, origin(msg)}, nil
	}

	if d.table != "" && strings.EqualFold(d.mode, "INSERT") {
		query := fmt.Sprintf(
			"INSERT INTO %s (content, origin, created_at) VALUES ($1, $2, NOW())",
			d.table,
		)
		return query, []any{msg.Content, origin(msg)}, nil
	}

	return "", nil, fmt.Errorf("auto-generation for mode %q is not supported; use a custom query", d.mode)
}

func origin(msg *message.Message) string {
	if msg.Origin == "" {
		return "unknown"
	}
	return msg.Origin
}
