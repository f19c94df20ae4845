// Package store is the append-only message log backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/petasbytes/advisor-relay/memory"
)

const defaultDirPerms = 0o755

// ErrNotInitialized is returned when the messages table could not be created.
var ErrNotInitialized = errors.New("message store not initialized")

// Record is one persisted message. Records are never updated or deleted.
type Record struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	Role      memory.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Result reports the outcome of an Append.
type Result struct {
	ID  int64
	Err error
}

// OK reports whether the record was written.
func (r Result) OK() bool { return r.Err == nil }

// Store is the SQLite message log.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
	now    func() time.Time
}

// Open prepares a handle for the database at path. It touches neither the
// filesystem nor the schema; Initialize does both.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Store{
		db:     db,
		path:   path,
		logger: logger.WithPrefix("store"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Initialize creates the messages table if it does not exist. It is safe
// to call more than once.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), defaultDirPerms); err != nil {
		return fmt.Errorf("%w: create storage directory: %w", ErrNotInitialized, err)
	}
	stmts := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			session_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrNotInitialized, err)
		}
	}
	return nil
}

// Append inserts one record with a store-assigned timestamp. Failures are
// logged and returned in the Result; they are never fatal to the caller.
func (s *Store) Append(ctx context.Context, sessionID string, role memory.Role, content string) Result {
	if !role.Valid() {
		err := fmt.Errorf("append message: unknown role %q", role)
		s.logger.Error("failed to save message", "role", role, "err", err)
		return Result{Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (role, content, timestamp, session_id) VALUES (?, ?, ?, ?)`,
		string(role), content, s.now(), sessionID,
	)
	if err != nil {
		err = fmt.Errorf("insert message: %w", err)
		s.logger.Error("failed to save message", "role", role, "err", err)
		return Result{Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		err = fmt.Errorf("get last insert ID: %w", err)
		s.logger.Error("failed to save message", "role", role, "err", err)
		return Result{Err: err}
	}
	return Result{ID: id}
}

// ListAll returns every record, most recent first.
func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	return s.list(ctx, 0)
}

// ListRecent returns at most limit records, most recent first. A limit of
// zero or less returns everything.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return s.list(ctx, limit)
}

func (s *Store) list(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, session_id, role, content, timestamp
	          FROM messages ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r    Record
			role string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &role, &r.Content, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		r.Role = memory.Role(role)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
