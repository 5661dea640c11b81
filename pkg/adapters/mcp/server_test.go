package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbleau/convo/pkg/adapters/memory"
	"github.com/simbleau/convo/pkg/dsl"
	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/walker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tr := dsl.Build("gate").
		Node("gate").Say("A guard blocks the way.").
		Choice("bribe", "Here, take this coin.", "inside").
		Choice("fight", "Draw your sword!", "dead").Done().
		Node("inside").Say("You slip through the gate.").Done().
		Node("dead").Say("The guard was faster.").Done().
		MustTree()
	return NewServer(tr, session.NewManager(memory.NewStore()))
}

func TestHandleStartWalk(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleStartWalk(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "gate", resp.NodeID)
	assert.Equal(t, "A guard blocks the way.", resp.Dialogue)
	assert.False(t, resp.Terminal)
	assert.False(t, resp.Resumed)
	require.Len(t, resp.Choices, 2)
	assert.Equal(t, Choice{Name: "bribe", Dialogue: "Here, take this coin."}, resp.Choices[0])
}

func TestHandleStartWalk_ResumesExistingSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)
	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero", "link": "bribe"})
	require.NoError(t, err)

	resp, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)

	assert.True(t, resp.Resumed)
	assert.Equal(t, "inside", resp.NodeID)
	assert.True(t, resp.Terminal)
	assert.Empty(t, resp.Choices)
}

func TestHandleChoose_UnknownLink(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)

	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero", "link": "teleport"})
	var linkErr *walker.LinkNotFoundError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, "teleport", linkErr.Name)
}

func TestHandleChoose_RejectsOversizedInput(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)

	huge := strings.Repeat("x", 5000)
	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero", "link": huge})
	assert.Error(t, err)
}

func TestHandlePeek_DoesNotAdvance(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)

	for range 3 {
		resp, err := s.handlePeek(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
		require.NoError(t, err)
		assert.Equal(t, "gate", resp.NodeID)
	}
}

func TestHandlePeek_UnknownSession(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handlePeek(context.Background(), mcp.CallToolRequest{}, map[string]any{"session_id": "ghost"})
	assert.True(t, errors.Is(err, ports.ErrSessionNotFound))
}

func TestHandleResetWalk(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)
	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero", "link": "fight"})
	require.NoError(t, err)

	resp, err := s.handleResetWalk(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "hero"})
	require.NoError(t, err)
	assert.Equal(t, "gate", resp.NodeID)

	state, err := s.manager.Load(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, []string{"gate", "dead", "gate"}, state.History)
}

func TestHandleValidateTree(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleValidateTree(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Problems)
}

func TestHandleValidateTree_ReportsProblems(t *testing.T) {
	tr := dsl.Build("edge").
		Node("edge").Say("The map is torn here.").Choice("onward", "", "lost_city").Done().
		Node("island").Say("No way here leads anywhere.").Done().
		MustTree()
	s := NewServer(tr, session.NewManager(memory.NewStore()))

	resp, err := s.handleValidateTree(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)

	assert.False(t, resp.Valid)
	require.Len(t, resp.Problems, 2)
	assert.Contains(t, resp.Problems[0], "lost_city")
	assert.Contains(t, resp.Problems[1], "island")
}
