package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"

	"github.com/latticehsm/hsm"
)

// SQLite is a Saver/Loader backed by a local SQLite database, one row
// per key, via database/sql and the pure-cgo mattn/go-sqlite3 driver.
// Current state and history occupy separate columns so SaveCurrentState
// and SaveHistoryStates are genuinely independent writes, matching the
// ordered Saver contract: a row with a NULL history column is valid and
// reads back as no recorded history. Every history payload carries a
// blake2b-256 checksum so a corrupted row is detected on Load rather
// than silently deserialized.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database at path and
// ensures its schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3 %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS hsm_snapshots (
		key TEXT PRIMARY KEY,
		current TEXT,
		history BLOB,
		history_checksum BLOB
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveCurrentState upserts key's current state, leaving its history
// column untouched if the row already exists.
func (s *SQLite) SaveCurrentState(ctx context.Context, key string, current string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hsm_snapshots (key, current) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET current = excluded.current`,
		key, current)
	if err != nil {
		return fmt.Errorf("save current state %q: %w", key, err)
	}
	return nil
}

// SaveHistoryStates updates key's history column. Called only after
// SaveCurrentState has already created the row.
func (s *SQLite) SaveHistoryStates(ctx context.Context, key string, history []hsm.HistoryRecord) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("json marshal history: %w", err)
	}
	sum := blake2b.Sum256(payload)
	_, err = s.db.ExecContext(ctx,
		`UPDATE hsm_snapshots SET history = ?, history_checksum = ? WHERE key = ?`,
		payload, sum[:], key)
	if err != nil {
		return fmt.Errorf("save history states %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) LoadCurrentState(ctx context.Context, key string) (string, error) {
	var current sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT current FROM hsm_snapshots WHERE key = ?`, key).Scan(&current)
	if err == sql.ErrNoRows {
		return "", hsm.ErrSnapshotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load current state %q: %w", key, err)
	}
	return current.String, nil
}

func (s *SQLite) LoadHistoryStates(ctx context.Context, key string) ([]hsm.HistoryRecord, error) {
	var payload, checksum []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT history, history_checksum FROM hsm_snapshots WHERE key = ?`, key).
		Scan(&payload, &checksum)
	if err == sql.ErrNoRows {
		return nil, hsm.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load history states %q: %w", key, err)
	}
	if payload == nil {
		return nil, nil
	}
	sum := blake2b.Sum256(payload)
	if string(sum[:]) != string(checksum) {
		return nil, fmt.Errorf("history for %q failed checksum verification", key)
	}
	var history []hsm.HistoryRecord
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, fmt.Errorf("json unmarshal history: %w", err)
	}
	return history, nil
}
