package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/session"
)

// Method expressions keep the play-through test close to the tool wiring in
// registerTools.
var (
	sessionAdvance  = (*session.Session).Advance
	sessionComplete = (*session.Session).CompleteLine
	sessionConfirm  = (*session.Session).Confirm
)

const branchScript = `[
  {"title": "Start", "body": "Hello.\n[[Go|End]]\n[[Stay|Start]]"},
  {"title": "End", "body": "Bye."}
]`

func newTestServer(t *testing.T, script string) *Server {
	t.Helper()
	eng, err := tendril.NewFromBytes([]byte(script))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(eng, WithLogger(logger))
}

func startSession(t *testing.T, s *Server, args map[string]interface{}) StateResponse {
	t.Helper()
	state, err := s.handleStartSession(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	require.NotEmpty(t, state.SessionID)
	return state
}

func sessionArgs(id string, extra map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{"session_id": id}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestStartSession_DefaultsToEntry(t *testing.T) {
	s := newTestServer(t, branchScript)

	state := startSession(t, s, map[string]interface{}{})
	assert.True(t, state.Running)
	assert.Equal(t, "Start", state.NodeTitle)
	assert.Equal(t, "", state.ClippedText)
}

func TestStartSession_UnknownStart(t *testing.T) {
	s := newTestServer(t, branchScript)

	_, err := s.handleStartSession(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"start": "Nowhere",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestPlayThrough(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, branchScript)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	state, err := s.handleTick(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.Equal(t, "H", state.ClippedText)

	state, err = s.stateTool(sessionComplete)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Equal(t, "Hello.", state.LineText)

	state, err = s.stateTool(sessionAdvance)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Stay"}, state.Options)
	assert.Equal(t, 0, state.Selected)

	state, err = s.handleSelect(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"move": "next"}))
	require.NoError(t, err)
	assert.Equal(t, 1, state.Selected)

	state, err = s.handleSelect(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"index": float64(0)}))
	require.NoError(t, err)
	assert.Equal(t, 0, state.Selected)

	state, err = s.stateTool(sessionConfirm)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.Equal(t, "End", state.NodeTitle)

	state, err = s.stateTool(sessionComplete)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.Equal(t, "Bye.", state.LineText)
	assert.False(t, state.Running)
}

func TestSelect_RequiresIndexOrMove(t *testing.T) {
	s := newTestServer(t, branchScript)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	_, err := s.handleSelect(context.Background(), mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index or move")
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t, branchScript)

	_, err := s.handleTick(context.Background(), mcp.CallToolRequest{}, sessionArgs("nope", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session")
}

func TestCommandCalled(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, `[{"title": "Start", "body": "<<beep 2 loud>>Hi."}]`)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	resp, err := s.handleCommandCalled(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"name": "beep"}))
	require.NoError(t, err)
	assert.True(t, resp.Called)
	assert.Equal(t, []string{"2", "loud"}, resp.Params)

	resp, err = s.handleCommandCalled(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"name": "beep"}))
	require.NoError(t, err)
	assert.False(t, resp.Called)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, branchScript)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	_, err := s.stateTool(sessionComplete)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)

	slot, err := s.handleSave(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"slot": "a"}))
	require.NoError(t, err)
	assert.Equal(t, "a", slot.Slot)

	_, err = s.handleLoad(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"slot": "missing"}))
	require.Error(t, err)

	state, err := s.handleLoad(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"slot": "a"}))
	require.NoError(t, err)
	assert.Equal(t, id, state.SessionID)

	restored := startSession(t, s, map[string]interface{}{"slot": "a"})
	assert.Contains(t, restored.Visited, "Start")
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, branchScript)
	startSession(t, s, map[string]interface{}{})
	startSession(t, s, map[string]interface{}{})

	resp, err := s.handleList(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, "Start", resp.Sessions[0].NodeTitle)
	assert.True(t, resp.Sessions[0].Running)
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, branchScript)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	state, err := s.handleEnd(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.False(t, state.Running)

	_, err = s.handleTick(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session")
}

func TestWaitPausesAndResumes(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, `[{"title": "Start", "body": "Hey<<wait 30>>now."}]`)
	id := startSession(t, s, map[string]interface{}{}).SessionID

	_, err := s.handleTick(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"count": float64(3)}))
	require.NoError(t, err)

	state, err := s.stateTool(sessionAdvance)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	require.False(t, state.Paused)

	// Scanning for any command mid-line trips the queued wait.
	_, err = s.handleCommandCalled(ctx, mcp.CallToolRequest{}, sessionArgs(id, map[string]interface{}{"name": "noop"}))
	require.NoError(t, err)

	state, err = s.stateTool(nil)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.True(t, state.Paused)

	readState := s.stateTool(nil)
	require.Eventually(t, func() bool {
		state, err := readState(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
		return err == nil && !state.Paused
	}, time.Second, 10*time.Millisecond)

	state, err = s.stateTool(sessionComplete)(ctx, mcp.CallToolRequest{}, sessionArgs(id, nil))
	require.NoError(t, err)
	assert.Equal(t, "Heynow.", state.LineText)
}

func TestScriptResource(t *testing.T) {
	s := newTestServer(t, branchScript)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "tendril://script"

	contents, err := s.handleScriptResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "tendril://script", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.Contains(t, text.Text, "Start")
}
