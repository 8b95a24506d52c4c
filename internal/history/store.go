// Package history keeps a local record of finished download sessions in
// SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one finished session.
type Entry struct {
	ID         int64
	SessionID  string
	URL        string
	VideoID    string
	Title      string
	Mode       string
	State      string // terminal session state, "Completed" or "Error"
	OutputPath string
	Error      string
	Bytes      int64
	Attempts   int
	CreatedAt  time.Time
}

// Store persists entries in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			url TEXT NOT NULL,
			video_id TEXT NOT NULL,
			title TEXT,
			mode TEXT,
			state TEXT NOT NULL,
			output_path TEXT,
			error TEXT,
			bytes INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts e. A zero CreatedAt is replaced with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downloads (
			session_id, url, video_id, title, mode, state,
			output_path, error, bytes, attempts, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.URL, e.VideoID, e.Title, e.Mode, e.State,
		e.OutputPath, e.Error, e.Bytes, e.Attempts, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", e.SessionID, err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, url, video_id, title, mode, state,
			   output_path, error, bytes, attempts, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                                  Entry
			title, mode, outputPath, lastError sql.NullString
			created                            int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.URL, &e.VideoID, &title, &mode, &e.State,
			&outputPath, &lastError, &e.Bytes, &e.Attempts, &created); err != nil {
			return nil, err
		}
		e.Title = title.String
		e.Mode = mode.String
		e.OutputPath = outputPath.String
		e.Error = lastError.String
		e.CreatedAt = time.UnixMilli(created)
		out = append(out, e)
	}
	return out, rows.Err()
}
