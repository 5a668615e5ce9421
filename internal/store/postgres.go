package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// snapshotKey is the single-row key: one interviewer session per database.
const snapshotKey = "default"

// PostgresStore persists the snapshot as a jsonb row in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database, verifies the connection, and
// ensures the snapshot table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS interview_snapshots (
			key TEXT PRIMARY KEY,
			content JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Load implements Store.
func (p *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	var content []byte
	err := p.pool.QueryRow(ctx,
		`SELECT content FROM interview_snapshots WHERE key = $1`, snapshotKey,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save implements Store.
func (p *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	content, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO interview_snapshots (key, content)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET content = $2, updated_at = NOW()`,
		snapshotKey, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
