package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/latticehsm/hsm"
)

// Postgres is a Saver/Loader backed by a PostgreSQL table, using pgx's
// native connection pool rather than database/sql. Current state and
// history live in separate columns for the same reason as SQLite: the
// two halves of the Saver/Loader contract are independent writes, not a
// single atomic upsert.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the snapshot table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS hsm_snapshots (
		key TEXT PRIMARY KEY,
		current TEXT,
		history JSONB
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// SaveCurrentState upserts key's current state, leaving its history
// column untouched if the row already exists.
func (p *Postgres) SaveCurrentState(ctx context.Context, key string, current string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO hsm_snapshots (key, current) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET current = excluded.current`,
		key, current)
	if err != nil {
		return fmt.Errorf("save current state %q: %w", key, err)
	}
	return nil
}

// SaveHistoryStates updates key's history column. Called only after
// SaveCurrentState has already created the row.
func (p *Postgres) SaveHistoryStates(ctx context.Context, key string, history []hsm.HistoryRecord) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("json marshal history: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`UPDATE hsm_snapshots SET history = $1 WHERE key = $2`, payload, key)
	if err != nil {
		return fmt.Errorf("save history states %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) LoadCurrentState(ctx context.Context, key string) (string, error) {
	var current sql.NullString
	err := p.pool.QueryRow(ctx,
		`SELECT current FROM hsm_snapshots WHERE key = $1`, key).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", hsm.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("load current state %q: %w", key, err)
	}
	return current.String, nil
}

func (p *Postgres) LoadHistoryStates(ctx context.Context, key string) ([]hsm.HistoryRecord, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT history FROM hsm_snapshots WHERE key = $1`, key).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, hsm.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load history states %q: %w", key, err)
	}
	if payload == nil {
		return nil, nil
	}
	var history []hsm.HistoryRecord
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, fmt.Errorf("json unmarshal history: %w", err)
	}
	return history, nil
}
