// Package history provides a SQLite-backed transcript of coach exchanges.
// Each answered question is persisted as a question/answer pair keyed by
// user, surviving server restarts. The transcript is an audit trail, not an
// input to the pipeline.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Exchange is a single answered question.
type Exchange struct {
	// UserID identifies whose question this was.
	UserID string
	// Question is the user's question text.
	Question string
	// Answer is the coach's message.
	Answer string
	// Intent is the classified intent the answer was produced under.
	Intent string
	// CreatedAt is when the exchange was persisted.
	CreatedAt time.Time
}

// Store persists and retrieves coach exchanges. Implementations must be
// safe for concurrent use.
type Store interface {
	// Append persists a single exchange.
	Append(ctx context.Context, ex Exchange) error
	// Recent returns the most recent n exchanges for the user, newest first.
	Recent(ctx context.Context, userID string, n int) ([]Exchange, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the transcript database.
// It resolves to ~/.coach/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("history: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".coach")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("history: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS exchanges (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    TEXT    NOT NULL,
    question   TEXT    NOT NULL,
    answer     TEXT    NOT NULL,
    intent     TEXT    NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_exchanges_user_created
    ON exchanges (user_id, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Append persists a single exchange.
func (s *SQLiteStore) Append(ctx context.Context, ex Exchange) error {
	const q = `INSERT INTO exchanges (user_id, question, answer, intent, created_at) VALUES (?, ?, ?, ?, ?)`
	ts := ex.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, ex.UserID, ex.Question, ex.Answer, ex.Intent, ts.Unix()); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n exchanges for the user, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, userID string, n int) ([]Exchange, error) {
	const q = `
SELECT user_id, question, answer, intent, created_at
FROM   exchanges
WHERE  user_id = ?
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, userID, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var ex Exchange
		var ts int64
		if err := rows.Scan(&ex.UserID, &ex.Question, &ex.Answer, &ex.Intent, &ts); err != nil {
			return nil, fmt.Errorf("history: recent scan: %w", err)
		}
		ex.CreatedAt = time.Unix(ts, 0)
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}
	return out, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history: close: %w", err)
	}
	return nil
}
