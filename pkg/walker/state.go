package walker

import (
	"slices"
	"time"
)

// State is the serializable snapshot of a walk in progress. The session
// layer persists one State per conversation so a walk can be paused and
// resumed later, possibly on another process.
type State struct {
	// SessionID identifies the walk across saves.
	SessionID string `json:"session_id"`

	// Current is the identifier of the node the walk is on.
	Current string `json:"current"`

	// History lists every node visited, in order, including Current.
	// Resets append like any other arrival; the trail is never truncated.
	History []string `json:"history"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a fresh snapshot positioned at the given node.
func NewState(sessionID, current string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Current:   current,
		History:   []string{current},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Advance records arrival at the given node.
func (s *State) Advance(id string) {
	s.Current = id
	s.History = append(s.History, id)
	s.UpdatedAt = time.Now().UTC()
}

// Visited reports whether the walk has ever been at the given node.
func (s *State) Visited(id string) bool {
	return slices.Contains(s.History, id)
}

// Clone returns a deep copy, so stores can hand out snapshots that callers
// may mutate freely.
func (s *State) Clone() *State {
	out := *s
	out.History = slices.Clone(s.History)
	return &out
}
