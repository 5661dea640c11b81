package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simbleau/convo/internal/logging"
	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager coordinates persistent walks over a state store, ensuring safe
// concurrent operations. Per-session locks are reference counted so the
// lock map does not grow with session churn.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.Locker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the distributed lock's self-expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after
// unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the session's local lock and, when a
// distributed locker is configured, its distributed lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Start begins a fresh walk at the tree's root and persists it. An empty
// sessionID gets a generated UUID. Starting an ID that already exists
// overwrites the old walk; use LoadOrStart to resume instead.
func (m *Manager) Start(ctx context.Context, t *tree.Tree, sessionID string) (*walker.State, error) {
	w, err := walker.FromRoot(t)
	if err != nil {
		return nil, fmt.Errorf("start walk: %w", err)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state := walker.NewState(sessionID, w.Current())
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
	if err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}

	m.logger.Debug("session started", "session_id", sessionID, "node", state.Current)
	return state, nil
}

// LoadOrStart resumes the session when it exists, otherwise starts a fresh
// walk under the given ID. The second return reports whether an existing
// walk was resumed.
func (m *Manager) LoadOrStart(ctx context.Context, t *tree.Tree, sessionID string) (*walker.State, bool, error) {
	if sessionID == "" {
		state, err := m.Start(ctx, t, "")
		return state, false, err
	}

	var (
		state   *walker.State
		resumed bool
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err == nil {
			resumed = true
			return nil
		}
		if !errors.Is(err, ports.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		w, err := walker.FromRoot(t)
		if err != nil {
			return fmt.Errorf("start walk: %w", err)
		}
		state = walker.NewState(sessionID, w.Current())

		// Persist immediately to reserve the ID.
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return state, resumed, nil
}

// Resume rebuilds a walker positioned where the stored walk left off.
// Returns ports.ErrSessionNotFound (wrapped) for unknown sessions and a
// *tree.NodeNotFoundError when the tree no longer has the stored node.
func (m *Manager) Resume(ctx context.Context, t *tree.Tree, sessionID string) (*walker.Walker, *walker.State, error) {
	state, err := m.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	w, err := walker.New(t, state.Current)
	if err != nil {
		return nil, nil, fmt.Errorf("resume session %q: %w", sessionID, err)
	}
	return w, state, nil
}

// Advance performs one persistent step: load the walk, follow the named
// link, save. The whole step runs under the session lock, and a failed
// advance leaves the stored state untouched.
func (m *Manager) Advance(ctx context.Context, t *tree.Tree, sessionID, link string) (*walker.State, error) {
	var state *walker.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		w, err := walker.New(t, state.Current)
		if err != nil {
			return fmt.Errorf("resume session %q: %w", sessionID, err)
		}
		if _, err := w.Advance(link); err != nil {
			return err
		}

		state.Advance(w.Current())
		return m.store.Save(ctx, sessionID, state)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("session advanced", "session_id", sessionID, "link", link, "node", state.Current)
	return state, nil
}

// Reset moves the walk to the given node, or to the tree's root when nodeID
// is empty, and persists the result. The arrival is appended to the history
// like any other step.
func (m *Manager) Reset(ctx context.Context, t *tree.Tree, sessionID, nodeID string) (*walker.State, error) {
	var state *walker.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		w, err := walker.New(t, state.Current)
		if err != nil {
			return fmt.Errorf("resume session %q: %w", sessionID, err)
		}
		if nodeID == "" {
			err = w.Rewind()
		} else {
			err = w.Reset(nodeID)
		}
		if err != nil {
			return err
		}

		state.Advance(w.Current())
		return m.store.Save(ctx, sessionID, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*walker.State, error) {
	var state *walker.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *walker.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}
