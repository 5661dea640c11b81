// Package memory provides in-memory implementations of the convo ports,
// used as test doubles and as defaults when no persistence is configured.
package memory

import (
	"context"
	"sync"

	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/walker"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*walker.State
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*walker.State),
	}
}

// Save persists the state in memory. The state is cloned so later caller
// mutations do not leak into the store, mirroring what serialization does
// for the durable backends.
func (s *Store) Save(ctx context.Context, sessionID string, state *walker.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = state.Clone()
	return nil
}

// Load retrieves a clone of the stored state.
func (s *Store) Load(ctx context.Context, sessionID string) (*walker.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[sessionID]; !ok {
		return ports.ErrSessionNotFound
	}
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
