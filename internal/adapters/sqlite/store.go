// Package sqlite persists walk sessions in a single local SQLite database
// file. It suits long-lived installs where a directory of JSON files would
// sprawl but a Redis server is overkill.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/walker"
)

const schema = `
CREATE TABLE IF NOT EXISTS walks (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store implements ports.StateStore on a SQLite database file. Walks are
// stored as JSON rows keyed by session ID.
type Store struct {
	db *sql.DB
}

var _ ports.StateStore = (*Store)(nil)

// Open opens (creating if necessary) the database at path and prepares the
// schema. If path is empty it defaults to ".convo/sessions.db".
func Open(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join(".convo", "sessions.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps readers unblocked while a walk is being saved; the pragmas
	// ride the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the session row.
func (s *Store) Save(ctx context.Context, sessionID string, state *walker.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO walks (id, state, updated_at)
		VALUES (?, ?, ?)
	`, sessionID, string(data), state.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save session %q: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the state for a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*walker.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM walks WHERE id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	var state walker.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the session row. It returns ports.ErrSessionNotFound if no
// row exists.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM walks WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session %q: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %q: %w", sessionID, err)
	}
	if n == 0 {
		return ports.ErrSessionNotFound
	}
	return nil
}

// List returns session IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM walks ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
