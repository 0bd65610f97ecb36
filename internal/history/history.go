// Package history keeps a bounded log of completed transcriptions in a
// local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sjroesink/whisper/internal/provider"
)

// DefaultMaxEntries caps the number of retained transcriptions.
const DefaultMaxEntries = 500

// Entry is one finished transcription.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Provider  string    `json:"provider"`
	Language  string    `json:"language"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists entries, newest first, pruning past MaxEntries.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	s := &Store{db: db, maxEntries: DefaultMaxEntries}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS transcriptions (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    provider TEXT NOT NULL,
    language TEXT,
    duration_ms INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created ON transcriptions(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Add records a transcription result and prunes entries past the cap.
func (s *Store) Add(ctx context.Context, res *provider.Result) (*Entry, error) {
	e := &Entry{
		ID:        uuid.NewString(),
		Text:      res.Text,
		Provider:  string(res.Provider),
		Language:  res.Language,
		Duration:  res.Duration.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transcriptions(id, text, provider, language, duration_ms, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		e.ID, e.Text, e.Provider, e.Language, e.Duration, e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert transcription: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM transcriptions WHERE id IN (
		    SELECT id FROM transcriptions ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, s.maxEntries)
	if err != nil {
		return nil, fmt.Errorf("prune transcriptions: %w", err)
	}

	return e, tx.Commit()
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, provider, language, duration_ms, created_at
		 FROM transcriptions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Text, &e.Provider, &e.Language, &e.Duration, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transcriptions`)
	return err
}
