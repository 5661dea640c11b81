// Package file provides filesystem-backed adapters: a session store that
// keeps one JSON file per walk, and a tree source that reads (and watches) a
// dialogue file.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/walker"
)

// Store implements ports.StateStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string

	sealer *sealer
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".convo/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".convo", "sessions")
	}
	return &Store{BasePath: basePath}
}

// NewEncrypted creates a Store that seals every session file with
// AES-256-GCM before it touches disk. Session IDs and file names stay in the
// clear; the walk state inside does not.
func NewEncrypted(basePath string, keys Keys) (*Store, error) {
	sealer, err := newSealer(keys)
	if err != nil {
		return nil, err
	}
	s := New(basePath)
	s.sealer = sealer
	return s, nil
}

// Save persists the session state to a JSON file atomically. It writes to a
// temporary file first, fsyncs it, and then renames into place, so a crash
// mid-save never leaves a truncated session behind.
func (s *Store) Save(ctx context.Context, sessionID string, state *walker.State) error {
	if err := checkID(sessionID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	destPath := s.path(sessionID)

	data, err := s.encode(state)
	if err != nil {
		return err
	}

	// The temp file lives in the same directory so the rename stays on one
	// filesystem, which is what makes it atomic.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Rename of an open file fails on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename replaces the destination on POSIX but fails on Windows when
	// it exists, so clear it first. The delete+rename window is acceptable
	// against the alternative of partially written sessions.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing session file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves the session state from a JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*walker.State, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return s.decode(data)
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}

	err := os.Remove(s.path(sessionID))
	if os.IsNotExist(err) {
		return ports.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	return sessions, nil
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.BasePath, sessionID+".json")
}

// checkID rejects IDs that would escape the session directory.
func checkID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return fmt.Errorf("sessionID %q contains path separators", sessionID)
	}
	return nil
}
