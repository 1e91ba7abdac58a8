// Package mcp exposes the dialogue runtime as a Model Context Protocol
// server, so agents can play sessions through tool calls. Sessions live in
// an in-memory registry keyed by session_id; every tool returns the full
// state frame so the caller never needs a follow-up read.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
)

// StateResponse is the structured result of every session-mutating tool.
type StateResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"Identifier to pass to follow-up tool calls"`
	session.Frame
}

// CommandResponse reports a one-shot command claim.
type CommandResponse struct {
	SessionID string   `json:"session_id"`
	Name      string   `json:"name"`
	Called    bool     `json:"called" jsonschema_description:"True when the command was pending; claiming it consumes it"`
	Params    []string `json:"params,omitempty"`
}

// SlotResponse acknowledges a save.
type SlotResponse struct {
	SessionID string `json:"session_id"`
	Slot      string `json:"slot"`
}

// SessionSummary is one row of list_sessions.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Running   bool   `json:"running"`
	NodeTitle string `json:"node_title,omitempty"`
}

// SessionListResponse is the structured result of list_sessions.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// Engine is the slice of the runtime the MCP surface needs. *tendril.Engine
// satisfies it.
type Engine interface {
	NewSession(opts ...session.Option) (*session.Session, error)
	Entry() string
	ScriptID() string
	Script() []byte
	Manager() *session.Manager
}

// Server hosts sessions over the engine and exposes them as MCP tools.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu       sync.RWMutex
	sessions map[string]*hosted
}

// Option configures the Server.
type Option func(*Server)

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer builds an MCP server around the engine and registers the
// session tools and the script resource.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		logger:   slog.Default(),
		sessions: make(map[string]*hosted),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("tendril", strings.TrimSpace(tendril.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting mcp server on stdio", "script", s.engine.ScriptID())
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE runs the server over HTTP+SSE on the given port until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context, port string) error {
	baseURL := fmt.Sprintf("http://localhost:%s", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           corsMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting mcp server on sse", "url", baseURL+"/sse", "script", s.engine.ScriptID())
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("mcp sse server: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down mcp server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new dialogue session and return its first state"),
		mcp.WithString("start", mcp.Description("Node title to start from; defaults to the script entry node")),
		mcp.WithString("slot", mcp.Description("Saved slot to restore (visited history) before starting")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Advance the session to its next line, options, or command"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to advance")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.stateTool((*session.Session).Advance)))

	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Reveal the next rune(s) of the current line"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to tick")),
		mcp.WithNumber("count", mcp.Description("Number of runes to reveal, default 1")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleTick))

	s.mcpServer.AddTool(mcp.NewTool("complete_line",
		mcp.WithDescription("Reveal the rest of the current line at once"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to complete")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.stateTool((*session.Session).CompleteLine)))

	s.mcpServer.AddTool(mcp.NewTool("select_option",
		mcp.WithDescription("Move the option highlight, by absolute index or one step"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to select in")),
		mcp.WithNumber("index", mcp.Description("Absolute option index; wins over move when both are given")),
		mcp.WithString("move", mcp.Description("Relative step: next or previous"), mcp.Enum("next", "previous")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("confirm",
		mcp.WithDescription("Confirm the highlighted option and jump to its target node"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to confirm in")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.stateTool((*session.Session).Confirm)))

	s.mcpServer.AddTool(mcp.NewTool("command_called",
		mcp.WithDescription("Claim a pending command call by name; claiming consumes it"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to inspect")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Command name to claim")),
		mcp.WithOutputSchema[CommandResponse](),
	), mcp.NewStructuredToolHandler(s.handleCommandCalled))

	s.mcpServer.AddTool(mcp.NewTool("session_state",
		mcp.WithDescription("Read the current state of a session without mutating it"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to read")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.stateTool(nil)))

	s.mcpServer.AddTool(mcp.NewTool("save_state",
		mcp.WithDescription("Persist the session's traversal state into a named slot"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to save")),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name to save into")),
		mcp.WithOutputSchema[SlotResponse](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("load_state",
		mcp.WithDescription("Restore a saved slot into the session"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to restore into")),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name to restore")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleLoad))

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Stop a session and drop it from the registry"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to end")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleEnd))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the hosted sessions"),
		mcp.WithOutputSchema[SessionListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))
}

func (s *Server) registerResources() {
	resource := mcp.NewResource(
		"tendril://script",
		"Compiled Script",
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(resource, s.handleScriptResource)
}

func (s *Server) handleScriptResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data := s.engine.Script()
	if len(data) == 0 {
		return nil, fmt.Errorf("no script loaded")
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	start, _ := args["start"].(string)
	if start == "" {
		start = s.engine.Entry()
	}

	h := &hosted{id: newSessionID()}
	sess, err := s.engine.NewSession(session.WithScheduler(&lockedScheduler{
		host: h,
		base: ports.TimerScheduler{},
	}))
	if err != nil {
		return StateResponse{}, fmt.Errorf("new session: %w", err)
	}
	h.sess = sess

	if !sess.HasNode(start) {
		return StateResponse{}, fmt.Errorf("unknown node %q", start)
	}
	if slot, _ := args["slot"].(string); slot != "" {
		if err := s.engine.Manager().RestoreSession(ctx, slot, sess); err != nil {
			return StateResponse{}, fmt.Errorf("restore slot %q: %w", slot, err)
		}
	}

	frame := h.do(func(sess *session.Session) { sess.StartFrom(start) })

	s.mu.Lock()
	s.sessions[h.id] = h
	s.mu.Unlock()

	s.logger.Info("mcp session started", "session_id", h.id, "node", start)
	return StateResponse{SessionID: h.id, Frame: frame}, nil
}

// stateTool wraps a session mutation into a structured tool handler. A nil
// fn reads state without mutating.
func (s *Server) stateTool(fn func(*session.Session)) func(context.Context, mcp.CallToolRequest, map[string]interface{}) (StateResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
		h, err := s.session(args)
		if err != nil {
			return StateResponse{}, err
		}
		return StateResponse{SessionID: h.id, Frame: h.do(fn)}, nil
	}
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	count := 1
	if n, ok := args["count"].(float64); ok && n > 0 {
		count = int(n)
	}
	frame := h.do(func(sess *session.Session) {
		for i := 0; i < count; i++ {
			sess.Tick()
		}
	})
	return StateResponse{SessionID: h.id, Frame: frame}, nil
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	index, hasIndex := args["index"].(float64)
	move, _ := args["move"].(string)
	if !hasIndex && move == "" {
		return StateResponse{}, fmt.Errorf("select_option needs index or move")
	}
	frame := h.do(func(sess *session.Session) {
		switch {
		case hasIndex:
			sess.Select(int(index))
		case move == "next":
			sess.SelectNext()
		case move == "previous":
			sess.SelectPrevious()
		}
	})
	return StateResponse{SessionID: h.id, Frame: frame}, nil
}

func (s *Server) handleCommandCalled(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CommandResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return CommandResponse{}, err
	}
	name, _ := args["name"].(string)
	if name == "" {
		return CommandResponse{}, fmt.Errorf("name is required")
	}
	resp := CommandResponse{SessionID: h.id, Name: name}
	h.do(func(sess *session.Session) {
		if !sess.IsCommandCalled(name) {
			return
		}
		resp.Called = true
		for i := 0; i < sess.CommandParameterCount(); i++ {
			resp.Params = append(resp.Params, sess.CommandParameter(i))
		}
	})
	return resp, nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SlotResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return SlotResponse{}, err
	}
	slot, _ := args["slot"].(string)
	if slot == "" {
		return SlotResponse{}, fmt.Errorf("slot is required")
	}
	_, err = h.doErr(func(sess *session.Session) error {
		return s.engine.Manager().SaveSession(ctx, slot, sess)
	})
	if err != nil {
		return SlotResponse{}, fmt.Errorf("save slot %q: %w", slot, err)
	}
	return SlotResponse{SessionID: h.id, Slot: slot}, nil
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	slot, _ := args["slot"].(string)
	if slot == "" {
		return StateResponse{}, fmt.Errorf("slot is required")
	}
	frame, err := h.doErr(func(sess *session.Session) error {
		return s.engine.Manager().RestoreSession(ctx, slot, sess)
	})
	if err != nil {
		return StateResponse{}, fmt.Errorf("restore slot %q: %w", slot, err)
	}
	return StateResponse{SessionID: h.id, Frame: frame}, nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	h, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	frame := h.do(func(sess *session.Session) { sess.Stop() })

	s.mu.Lock()
	delete(s.sessions, h.id)
	s.mu.Unlock()

	s.logger.Info("mcp session ended", "session_id", h.id)
	return StateResponse{SessionID: h.id, Frame: frame}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionListResponse, error) {
	s.mu.RLock()
	hosts := make([]*hosted, 0, len(s.sessions))
	for _, h := range s.sessions {
		hosts = append(hosts, h)
	}
	s.mu.RUnlock()

	resp := SessionListResponse{Sessions: make([]SessionSummary, 0, len(hosts))}
	for _, h := range hosts {
		frame := h.do(nil)
		resp.Sessions = append(resp.Sessions, SessionSummary{
			SessionID: h.id,
			Running:   frame.Running,
			NodeTitle: frame.NodeTitle,
		})
	}
	sort.Slice(resp.Sessions, func(i, j int) bool {
		return resp.Sessions[i].SessionID < resp.Sessions[j].SessionID
	})
	return resp, nil
}

func (s *Server) session(args map[string]interface{}) (*hosted, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return h, nil
}

// hosted confines one session behind a mutex so wait-timer resumes cannot
// race tool calls.
type hosted struct {
	id   string
	mu   sync.Mutex
	sess *session.Session
}

func (h *hosted) do(fn func(*session.Session)) session.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn != nil {
		fn(h.sess)
	}
	return h.sess.Frame()
}

func (h *hosted) doErr(fn func(*session.Session) error) (session.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := fn(h.sess)
	return h.sess.Frame(), err
}

// lockedScheduler delivers wait resumes under the session lock. Timer
// callbacks never fire synchronously inside After, so taking the lock in
// the callback cannot deadlock with the tool call that armed it.
type lockedScheduler struct {
	host *hosted
	base ports.Scheduler
}

func (l *lockedScheduler) After(d time.Duration, fn func()) ports.CancelFunc {
	return l.base.After(d, func() {
		l.host.mu.Lock()
		defer l.host.mu.Unlock()
		fn()
	})
}

func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("s-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
