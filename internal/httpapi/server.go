// Package httpapi exposes dialogue trees and walk sessions over HTTP.
//
// The server owns a read-mostly tree that can be hot-swapped while walks are
// in flight, and delegates all session state to a session.Manager so that the
// HTTP surface stays stateless across replicas.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/simbleau/convo/internal/logging"
	"github.com/simbleau/convo/internal/presentation/graph"
	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/runner"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// Server serves a dialogue tree and its walk sessions over HTTP.
type Server struct {
	manager *session.Manager
	metrics *Metrics
	logger  *slog.Logger

	mu   sync.RWMutex
	tree *tree.Tree
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server over the given tree and session manager.
func NewServer(t *tree.Tree, manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		metrics: NewMetrics(),
		logger:  logging.NewNop(),
		tree:    t,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/tree/graph", s.handleGraph)

		r.Post("/walks", s.handleStartWalk)
		r.Get("/walks", s.handleListWalks)
		r.Route("/walks/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWalk)
			r.Post("/choose", s.handleChoose)
			r.Post("/rewind", s.handleRewind)
			r.Delete("/", s.handleDeleteWalk)
		})
	})

	return r
}

// Tree returns the currently served tree.
func (s *Server) Tree() *tree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// SetTree swaps the served tree. In-flight requests keep the tree they
// already picked up; the next request sees the new one. Existing sessions
// whose current node the new tree no longer has surface NodeNotFoundError
// on their next advance.
func (s *Server) SetTree(t *tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = t
}

// WatchSource reloads the tree whenever src signals a change. It blocks
// until ctx is done or the source stops watching, so callers typically run
// it in a goroutine. Sources that are not Watchable are served as-is.
func (s *Server) WatchSource(ctx context.Context, src ports.TreeSource) error {
	watchable, ok := src.(ports.Watchable)
	if !ok {
		return nil
	}
	events, err := watchable.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch source: %w", err)
	}
	for range events {
		t, err := src.Load(ctx)
		if err != nil {
			// Keep serving the last good tree rather than dropping requests
			// on a half-written file.
			s.logger.Warn("tree reload failed", "error", err)
			continue
		}
		s.SetTree(t)
		s.logger.Info("tree reloaded", "nodes", t.Len())
	}
	return ctx.Err()
}

// -- Wire types --

type walkResponse struct {
	SessionID string       `json:"session_id"`
	NodeID    string       `json:"node_id"`
	Dialogue  string       `json:"dialogue"`
	Choices   []choiceView `json:"choices"`
	Terminal  bool         `json:"terminal"`
	History   []string     `json:"history"`
}

type choiceView struct {
	Name     string `json:"name"`
	Dialogue string `json:"dialogue,omitempty"`
}

type treeView struct {
	Root  string     `json:"root"`
	Nodes []nodeView `json:"nodes"`
}

type nodeView struct {
	ID       string     `json:"id"`
	Dialogue string     `json:"dialogue"`
	Links    []linkView `json:"links,omitempty"`
	Terminal bool       `json:"terminal"`
}

type linkView struct {
	Name     string `json:"name"`
	Dialogue string `json:"dialogue,omitempty"`
	Target   string `json:"target"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// -- Handlers --

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	t := s.Tree()
	view := treeView{Root: t.Root(), Nodes: make([]nodeView, 0, t.Len())}
	for id, n := range t.Nodes() {
		nv := nodeView{ID: id, Dialogue: n.Dialogue(), Terminal: n.IsTerminal()}
		for _, l := range n.Links() {
			nv.Links = append(nv.Links, linkView{Name: l.Name, Dialogue: l.Dialogue, Target: l.Target})
		}
		view.Nodes = append(view.Nodes, nv)
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.Overlay
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		state, err := s.manager.Load(r.Context(), sessionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		overlay = graph.OverlayFromState(state)
	}
	w.Header().Set("Content-Type", "text/vnd.mermaid")
	io.WriteString(w, graph.Mermaid(s.Tree(), overlay))
}

func (s *Server) handleStartWalk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	state, resumed, err := s.manager.LoadOrStart(r.Context(), s.Tree(), body.SessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !resumed {
		s.metrics.walksStarted.Inc()
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	s.logger.Info("walk started", "session", state.SessionID, "resumed", resumed)
	s.respondState(w, status, state)
}

func (s *Server) handleListWalks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGetWalk(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondState(w, http.StatusOK, state)
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Link string `json:"link"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	link, err := runner.SanitizeInput(body.Link)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sessionID := chi.URLParam(r, "id")
	state, err := s.manager.Advance(r.Context(), s.Tree(), sessionID, link)
	if err != nil {
		s.metrics.walkAdvances.WithLabelValues("error").Inc()
		s.writeError(w, err)
		return
	}
	s.metrics.walkAdvances.WithLabelValues("ok").Inc()
	s.logger.Info("walk advanced", "session", sessionID, "link", link, "node", state.Current)
	s.respondState(w, http.StatusOK, state)
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NodeID string `json:"node_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	state, err := s.manager.Reset(r.Context(), s.Tree(), chi.URLParam(r, "id"), body.NodeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondState(w, http.StatusOK, state)
}

func (s *Server) handleDeleteWalk(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

// respondState renders a walk state against the current tree.
func (s *Server) respondState(w http.ResponseWriter, status int, state *walker.State) {
	resp := walkResponse{
		SessionID: state.SessionID,
		NodeID:    state.Current,
		Choices:   []choiceView{},
		History:   state.History,
	}
	if n, ok := s.Tree().Node(state.Current); ok {
		resp.Dialogue = n.Dialogue()
		resp.Terminal = n.IsTerminal()
		for _, l := range n.Links() {
			resp.Choices = append(resp.Choices, choiceView{Name: l.Name, Dialogue: l.Dialogue})
		}
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes: unknown walks and
// nodes are 404, a choice the node does not offer is 422, and a link whose
// target is missing from the tree is 409.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		nodeErr   *tree.NodeNotFoundError
		linkErr   *walker.LinkNotFoundError
		targetErr *walker.TargetNotFoundError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.As(err, &nodeErr):
		status = http.StatusNotFound
	case errors.As(err, &linkErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &targetErr):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeBody decodes a JSON request body into v. An empty body is fine;
// every body field on this API is optional or validated by the handler.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("invalid request body: %w", err)
}
