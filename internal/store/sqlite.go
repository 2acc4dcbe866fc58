// Package store persists thumbnail strips and session preferences in
// SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema for the cliptrim session store.
const schema = `
CREATE TABLE IF NOT EXISTS thumb_strips (
    source_digest   BLOB NOT NULL,
    width_px        INTEGER NOT NULL,
    thumb_count     INTEGER NOT NULL,
    created_at      INTEGER NOT NULL,
    PRIMARY KEY (source_digest, width_px)
);

CREATE TABLE IF NOT EXISTS thumb_frames (
    source_digest   BLOB NOT NULL,
    width_px        INTEGER NOT NULL,
    ordinal         INTEGER NOT NULL,
    frame           BLOB NOT NULL,
    PRIMARY KEY (source_digest, width_px, ordinal)
);

CREATE TABLE IF NOT EXISTS session_prefs (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  INTEGER NOT NULL
);
`

// Preference keys.
const (
	PrefMuted      = "muted"
	PrefLastSource = "last_source"
)

// Store wraps the SQLite session database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PutStrip replaces the cached strip for (digest, width).
func (s *Store) PutStrip(digest []byte, widthPx int, frames [][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin strip write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM thumb_frames WHERE source_digest = ? AND width_px = ?`,
		digest, widthPx,
	); err != nil {
		return fmt.Errorf("clear stale frames: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO thumb_strips (source_digest, width_px, thumb_count, created_at)
		 VALUES (?, ?, ?, ?)`,
		digest, widthPx, len(frames), time.Now().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert strip: %w", err)
	}
	for i, frame := range frames {
		if _, err := tx.Exec(
			`INSERT INTO thumb_frames (source_digest, width_px, ordinal, frame)
			 VALUES (?, ?, ?, ?)`,
			digest, widthPx, i, frame,
		); err != nil {
			return fmt.Errorf("insert frame %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetStrip returns the cached frames for (digest, width) in order, or
// ok=false when absent.
func (s *Store) GetStrip(digest []byte, widthPx int) ([][]byte, bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT thumb_count FROM thumb_strips WHERE source_digest = ? AND width_px = ?`,
		digest, widthPx,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query strip: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT frame FROM thumb_frames WHERE source_digest = ? AND width_px = ? ORDER BY ordinal`,
		digest, widthPx,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	frames := make([][]byte, 0, count)
	for rows.Next() {
		var frame []byte
		if err := rows.Scan(&frame); err != nil {
			return nil, false, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate frames: %w", err)
	}
	if len(frames) != count {
		// Torn cache entry; treat as a miss.
		return nil, false, nil
	}
	return frames, true, nil
}

// SetPref stores a session preference.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO session_prefs (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}

// GetPref returns a session preference, or fallback when unset.
func (s *Store) GetPref(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("get pref %s: %w", key, err)
	}
	return value, nil
}
