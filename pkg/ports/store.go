package ports

import (
	"context"
	"errors"

	"github.com/simbleau/convo/pkg/walker"
)

// ErrSessionNotFound is returned by StateStore.Load and Delete when no state
// exists for the given session.
var ErrSessionNotFound = errors.New("session not found")

// StateStore defines the interface for persisting walk state. This enables
// durable conversations: stop mid-walk, resume later, possibly elsewhere.
type StateStore interface {
	// Save persists the state for a given session ID, overwriting any
	// previous state.
	Save(ctx context.Context, sessionID string, state *walker.State) error

	// Load retrieves the state for a given session ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*walker.State, error)

	// Delete removes the state for a given session ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions, in no particular order.
	List(ctx context.Context) ([]string, error)
}
