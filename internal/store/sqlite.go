package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"literature-lite/literature"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and creates) a sqlite database. ":memory:" works for
// tests.
func NewSQLite(dbPath string) (*SQLite, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, snap literature.Snapshot) error {
	raw, err := encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO games (id, code, status, seq, snapshot_json, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    code = excluded.code,
    status = excluded.status,
    seq = excluded.seq,
    snapshot_json = excluded.snapshot_json,
    updated_at_ms = excluded.updated_at_ms
WHERE excluded.seq >= games.seq`,
		snap.ID, snap.Code, snap.Status.String(), snap.Seq, string(raw),
		snap.CreatedAt.UnixMilli(), snap.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w", snap.ID, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, gameID string) (literature.Snapshot, error) {
	return s.queryOne(ctx, `SELECT snapshot_json FROM games WHERE id = ?`, gameID)
}

func (s *SQLite) LoadByCode(ctx context.Context, code string) (literature.Snapshot, error) {
	return s.queryOne(ctx, `SELECT snapshot_json FROM games WHERE code = ? ORDER BY updated_at_ms DESC LIMIT 1`, code)
}

func (s *SQLite) queryOne(ctx context.Context, query string, arg string) (literature.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return literature.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return literature.Snapshot{}, fmt.Errorf("sqlite load: %w", err)
	}
	return decode([]byte(raw))
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    status TEXT NOT NULL,
    seq INTEGER NOT NULL,
    snapshot_json TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_games_code ON games(code, updated_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
