package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/w-h-a/rag/storer"
	"github.com/w-h-a/rag/util/pgdriver"
)

// postgresStorer keeps one table per collection with a pgvector column and
// ranks by cosine distance (<=>).
type postgresStorer struct {
	options storer.Options
	table   string
	conn    *sql.DB
}

func (p *postgresStorer) EnsureCollection(ctx context.Context) error {
	if _, err := p.conn.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, p.table, p.options.Dimension)

	if _, err := p.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}

	return nil
}

func (p *postgresStorer) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	if err := storer.CheckDimension(vector, p.options.Dimension); err != nil {
		return err
	}

	payloadJSON, err := json.Marshal(storer.ClonePayload(payload))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			payload = EXCLUDED.payload
	`, p.table)

	if _, err := p.conn.ExecContext(
		ctx,
		query,
		id,
		pgvector.NewVector(vector),
		payloadJSON,
	); err != nil {
		return err
	}

	return nil
}

func (p *postgresStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return []storer.Record{}, nil
	}

	if err := storer.CheckDimension(vector, p.options.Dimension); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			payload,
			1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, p.table)

	rows, err := p.conn.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []storer.Record{}

	for rows.Next() {
		var rec storer.Record
		var payloadBytes []byte
		var score float64

		if err := rows.Scan(&rec.Id, &payloadBytes, &score); err != nil {
			return nil, err
		}

		rec.Score = float32(score)

		if err := json.Unmarshal(payloadBytes, &rec.Payload); err != nil {
			rec.Payload = map[string]string{}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (p *postgresStorer) Close() error {
	return p.conn.Close()
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.Dimension == 0 {
		panic("missing location, collection, or vector size for postgres storer")
	}

	conn, err := pgdriver.Open(options.Context, options.Location)
	if err != nil {
		detail := "failed to connect with postgres storer"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	return &postgresStorer{
		options: options,
		table:   pq.QuoteIdentifier(options.Collection),
		conn:    conn,
	}
}
