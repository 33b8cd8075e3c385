package store

import (
	"context"
	"encoding/json"
	"fmt"

	"canteen/internal/xpkg/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq        BIGSERIAL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	doc        JSONB NOT NULL,
	PRIMARY KEY (collection, id)
);`

// PostgresBackend stores every collection in a single jsonb table, preserving
// the same document contract as the file backend.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

func NewPostgresBackend(ctx context.Context, cfg *config.Postgres) (*PostgresBackend, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, recordsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) ReadAll(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT doc FROM records WHERE collection = $1 ORDER BY seq`, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(doc))
	}
	return docs, rows.Err()
}

func (p *PostgresBackend) WriteAll(ctx context.Context, c Collection, docs []json.RawMessage) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE collection = $1`, string(c)); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, doc := range docs {
		id, err := docID(doc)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO records (collection, id, doc) VALUES ($1, $2, $3)`,
			string(c), id, []byte(doc))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *PostgresBackend) Append(ctx context.Context, c Collection, id string, doc json.RawMessage) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO records (collection, id, doc) VALUES ($1, $2, $3)`,
		string(c), id, []byte(doc))
	return err
}

func (p *PostgresBackend) UpdateByID(ctx context.Context, c Collection, id string, doc json.RawMessage) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE records SET doc = $3 WHERE collection = $1 AND id = $2`,
		string(c), id, []byte(doc))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresBackend) DeleteByID(ctx context.Context, c Collection, id string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`, string(c), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresBackend) Close(context.Context) error {
	p.pool.Close()
	return nil
}
