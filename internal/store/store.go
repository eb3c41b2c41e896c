// Package store keeps the engine's durable local state: today that is a
// single key holding the persisted view filter. Backed by a local SQLite
// file so the selection survives restarts without needing any server.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"
)

const filterKey = "view_filter"

type StateStore struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*StateStore, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveFilter stores the selected agent identifiers; nil clears the key,
// which reads back as "no filter".
func (s *StateStore) SaveFilter(ctx context.Context, ids []string) error {
	if ids == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE k = ?`, filterKey)
		return err
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO state (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, filterKey, string(b))
	return err
}

// LoadFilter returns the stored selection. Absence and corruption both
// report ok=false with no error: a broken persisted filter must degrade to
// "no filter", never block startup.
func (s *StateStore) LoadFilter(ctx context.Context) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM state WHERE k = ?`, filterKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, nil
	}
	return ids, true, nil
}
