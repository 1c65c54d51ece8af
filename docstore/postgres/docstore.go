package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/w-h-a/rag/docstore"
	"github.com/w-h-a/rag/util/pgdriver"
)

type postgresDocStore struct {
	options docstore.Options
	conn    *sql.DB
}

func (d *postgresDocStore) Record(ctx context.Context, entry docstore.Entry) error {
	if entry.IngestedAt.IsZero() {
		entry.IngestedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO documents (id, source, path, ingested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET source = EXCLUDED.source,
			path = EXCLUDED.path
	`

	if _, err := d.conn.ExecContext(ctx, query, entry.Id, entry.Source, entry.Path, entry.IngestedAt); err != nil {
		return fmt.Errorf("record document %s: %w", entry.Id, err)
	}

	return nil
}

func (d *postgresDocStore) List(ctx context.Context, limit int) ([]docstore.Entry, error) {
	if limit < 1 {
		return []docstore.Entry{}, nil
	}

	query := `
		SELECT id, source, path, ingested_at
		FROM documents
		ORDER BY ingested_at DESC, id
		LIMIT $1
	`

	rows, err := d.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []docstore.Entry{}

	for rows.Next() {
		var e docstore.Entry
		if err := rows.Scan(&e.Id, &e.Source, &e.Path, &e.IngestedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (d *postgresDocStore) Close() error {
	return d.conn.Close()
}

func NewDocStore(opts ...docstore.Option) docstore.DocStore {
	options := docstore.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing location for postgres docstore")
	}

	conn, err := pgdriver.Open(options.Context, options.Location)
	if err != nil {
		detail := "failed to connect with postgres docstore"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	if _, err := conn.ExecContext(options.Context, docstore.Schema); err != nil {
		conn.Close()
		detail := "failed to create documents table"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	return &postgresDocStore{
		options: options,
		conn:    conn,
	}
}
