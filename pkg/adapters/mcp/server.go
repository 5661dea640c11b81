// Package mcp exposes a dialogue tree and its walk sessions as an MCP
// server, so agents can hold conversations over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/simbleau/convo"
	"github.com/simbleau/convo/internal/presentation/graph"
	"github.com/simbleau/convo/pkg/codec"
	"github.com/simbleau/convo/pkg/runner"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// Choice is one selectable link on the current node.
type Choice struct {
	Name     string `json:"name" jsonschema_description:"Link name to pass to the choose tool"`
	Dialogue string `json:"dialogue,omitempty" jsonschema_description:"Line spoken when taking this link"`
}

// WalkResponse is the unified result of every walk tool.
type WalkResponse struct {
	SessionID string   `json:"session_id" jsonschema_description:"Session this walk belongs to"`
	NodeID    string   `json:"node_id" jsonschema_description:"Identifier of the current node"`
	Dialogue  string   `json:"dialogue" jsonschema_description:"Dialogue of the current node"`
	Choices   []Choice `json:"choices" jsonschema_description:"Available links, in authored order"`
	Terminal  bool     `json:"terminal" jsonschema_description:"True when the conversation ends here"`
	Resumed   bool     `json:"resumed,omitempty" jsonschema_description:"True when start_walk picked up an existing session"`
}

// ValidateResponse reports the outcome of the validate_tree tool.
type ValidateResponse struct {
	Valid    bool     `json:"valid" jsonschema_description:"True when no problems were found"`
	Problems []string `json:"problems,omitempty" jsonschema_description:"One entry per validation problem"`
}

// Server exposes walks over the tree as an MCP server.
type Server struct {
	tree      *tree.Tree
	manager   *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server for the given tree. Sessions are managed
// through manager, which decides where walks persist.
func NewServer(t *tree.Tree, manager *session.Manager) *Server {
	s := &Server{
		tree:      t,
		manager:   manager,
		mcpServer: server.NewMCPServer("convo-mcp", strings.TrimSpace(convo.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until
// ctx is done or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_walk",
		mcp.WithDescription("Start a walk at the dialogue root, or resume the session if it already exists."),
		mcp.WithString("session_id", mcp.Description("Session to start or resume (optional; generated when omitted)")),
		mcp.WithOutputSchema[WalkResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartWalk))

	chooseTool := mcp.NewTool("choose",
		mcp.WithDescription("Follow a link from the session's current node."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to advance")),
		mcp.WithString("link", mcp.Required(), mcp.Description("Name of the link to follow")),
		mcp.WithOutputSchema[WalkResponse](),
	)
	s.mcpServer.AddTool(chooseTool, mcp.NewStructuredToolHandler(s.handleChoose))

	peekTool := mcp.NewTool("peek",
		mcp.WithDescription("Render the session's current node without advancing."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to inspect")),
		mcp.WithOutputSchema[WalkResponse](),
	)
	s.mcpServer.AddTool(peekTool, mcp.NewStructuredToolHandler(s.handlePeek))

	resetTool := mcp.NewTool("reset_walk",
		mcp.WithDescription("Move the session back to the dialogue root, or to a specific node."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to reset")),
		mcp.WithString("node_id", mcp.Description("Node to reset to (optional; defaults to the root)")),
		mcp.WithOutputSchema[WalkResponse](),
	)
	s.mcpServer.AddTool(resetTool, mcp.NewStructuredToolHandler(s.handleResetWalk))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of stored walk sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list sessions: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	validateTool := mcp.NewTool("validate_tree",
		mcp.WithDescription("Validate the dialogue tree, including link targets and reachability."),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidateTree))
}

// Handler methods for structured tools

func (s *Server) handleStartWalk(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WalkResponse, error) {
	sessionID, _ := args["session_id"].(string)

	state, resumed, err := s.manager.LoadOrStart(ctx, s.tree, sessionID)
	if err != nil {
		return WalkResponse{}, fmt.Errorf("start walk: %w", err)
	}

	resp, err := s.respond(state)
	if err != nil {
		return WalkResponse{}, err
	}
	resp.Resumed = resumed
	return resp, nil
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WalkResponse, error) {
	sessionID, _ := args["session_id"].(string)
	link, _ := args["link"].(string)

	clean, err := runner.SanitizeInput(link)
	if err != nil {
		slog.Warn("choose: input rejected", "err", err, "size", len(link))
		return WalkResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	state, err := s.manager.Advance(ctx, s.tree, sessionID, clean)
	if err != nil {
		return WalkResponse{}, fmt.Errorf("choose: %w", err)
	}
	return s.respond(state)
}

func (s *Server) handlePeek(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WalkResponse, error) {
	sessionID, _ := args["session_id"].(string)

	state, err := s.manager.Load(ctx, sessionID)
	if err != nil {
		return WalkResponse{}, fmt.Errorf("peek: %w", err)
	}
	return s.respond(state)
}

func (s *Server) handleResetWalk(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WalkResponse, error) {
	sessionID, _ := args["session_id"].(string)
	nodeID, _ := args["node_id"].(string)

	state, err := s.manager.Reset(ctx, s.tree, sessionID, nodeID)
	if err != nil {
		return WalkResponse{}, fmt.Errorf("reset walk: %w", err)
	}
	return s.respond(state)
}

func (s *Server) handleValidateTree(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ValidateResponse, error) {
	err := s.tree.Validate(tree.WithLinkCheck(), tree.WithReachabilityCheck())
	if err == nil {
		return ValidateResponse{Valid: true}, nil
	}

	var problems []string
	for _, e := range tree.ValidationErrors(err) {
		problems = append(problems, e.Error())
	}
	return ValidateResponse{Valid: false, Problems: problems}, nil
}

// respond renders the node the state points at.
func (s *Server) respond(state *walker.State) (WalkResponse, error) {
	n, ok := s.tree.Node(state.Current)
	if !ok {
		return WalkResponse{}, &tree.NodeNotFoundError{ID: state.Current}
	}

	resp := WalkResponse{
		SessionID: state.SessionID,
		NodeID:    state.Current,
		Dialogue:  n.Dialogue(),
		Terminal:  n.IsTerminal(),
		Choices:   []Choice{},
	}
	for name, l := range n.Links() {
		resp.Choices = append(resp.Choices, Choice{Name: name, Dialogue: l.Dialogue})
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: convo://tree
	s.mcpServer.AddResource(mcp.NewResource("convo://tree", "Dialogue Tree",
		mcp.WithMIMEType("application/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := codec.Encode(s.tree)
		if err != nil {
			return nil, fmt.Errorf("encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "convo://tree",
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		}, nil
	})

	// EXPOSE: convo://tree/graph
	s.mcpServer.AddResource(mcp.NewResource("convo://tree/graph", "Dialogue Tree Graph",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "convo://tree/graph",
				MIMEType: "text/vnd.mermaid",
				Text:     graph.Mermaid(s.tree, nil),
			},
		}, nil
	})
}
