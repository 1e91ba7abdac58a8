// Package http exposes the dialogue runtime as a REST surface with SSE
// state streaming. Every hosted session is confined behind its own mutex,
// so concurrent requests and wait-timer resumes serialize cleanly.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
)

// Engine is the slice of the runtime the HTTP surface needs. *tendril.Engine
// satisfies it.
type Engine interface {
	NewSession(opts ...session.Option) (*session.Session, error)
	Entry() string
	ScriptID() string
	Manager() *session.Manager
	Watch(ctx context.Context) (<-chan string, error)
}

// Server hosts sessions over the engine and implements the handlers bound
// in NewHandler.
type Server struct {
	engine  Engine
	streams *StreamManager
	logger  *slog.Logger
	router  routers.Router

	mu       sync.RWMutex
	sessions map[string]*hostedSession
}

// HandlerOption configures NewHandler.
type HandlerOption func(*Server)

// WithLogger sets the structured logger for request handling.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the engine. Requests to documented
// routes are validated against the embedded OpenAPI document before they
// reach a handler.
func NewHandler(engine Engine, opts ...HandlerOption) (http.Handler, error) {
	server := &Server{
		engine:   engine,
		streams:  NewStreamManager(),
		sessions: make(map[string]*hostedSession),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}

	doc, router, err := loadSpec()
	if err != nil {
		return nil, err
	}
	server.router = router
	apiVersion := "unknown"
	if doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", serveSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/healthz", server.getHealth)
	r.Get("/info", server.getInfo(apiVersion))
	r.Get("/events", server.subscribeReloads)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.listSessions)
		r.Post("/", server.createSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", server.getSession)
			r.Delete("/", server.deleteSession)
			r.Get("/events", server.subscribeEvents)
			r.Post("/advance", server.action((*session.Session).Advance))
			r.Post("/tick", server.tick)
			r.Post("/complete", server.action((*session.Session).CompleteLine))
			r.Post("/confirm", server.action((*session.Session).Confirm))
			r.Post("/select", server.selectOption)
			r.Post("/command", server.takeCommand)
			r.Post("/save", server.saveSession)
			r.Post("/restore", server.restoreSession)
		})
	})

	return enableCORS(server.validateRequests(r)), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Tendril API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type createSessionRequest struct {
	Start string `json:"start"`
	Slot  string `json:"slot"`
}

type tickRequest struct {
	Count int `json:"count"`
}

type selectRequest struct {
	Index *int   `json:"index"`
	Move  string `json:"move"`
}

type commandRequest struct {
	Name string `json:"name"`
}

type commandResult struct {
	Called bool     `json:"called"`
	Params []string `json:"params,omitempty"`
}

type slotRequest struct {
	Slot string `json:"slot"`
}

// createSession handles POST /sessions: mint a session, optionally restore a
// save slot into it, and start traversal.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("create session: invalid request body", "error", err)
		return
	}

	hs := &hostedSession{id: newSessionID()}
	sess, err := s.engine.NewSession(session.WithScheduler(&sessionScheduler{
		host:    hs,
		base:    ports.TimerScheduler{},
		publish: s.publish,
	}))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("cannot create session: %v", err))
		s.logger.Error("create session failed", "error", err)
		return
	}
	hs.sess = sess

	start := body.Start
	if start == "" {
		start = s.engine.Entry()
	}
	if !sess.HasNode(start) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown node %q", start))
		return
	}

	if body.Slot != "" {
		if err := s.engine.Manager().RestoreSession(r.Context(), body.Slot, sess); err != nil {
			s.writeError(w, slotStatus(err), fmt.Sprintf("restore slot %q: %v", body.Slot, err))
			return
		}
	}

	view := hs.do(func(sess *session.Session) {
		sess.StartFrom(start)
	})

	s.mu.Lock()
	s.sessions[hs.id] = hs
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", hs.id, "start", start, "script", s.engine.ScriptID())
	s.writeJSON(w, http.StatusCreated, view)
}

// listSessions handles GET /sessions.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hosted := make([]*hostedSession, 0, len(s.sessions))
	for _, hs := range s.sessions {
		hosted = append(hosted, hs)
	}
	s.mu.RUnlock()

	summaries := make([]sessionSummary, 0, len(hosted))
	for _, hs := range hosted {
		summaries = append(summaries, hs.summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	s.writeJSON(w, http.StatusOK, summaries)
}

// getSession handles GET /sessions/{sessionId}.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	view := hs.do(func(*session.Session) {})
	s.writeJSON(w, http.StatusOK, view)
}

// deleteSession handles DELETE /sessions/{sessionId}: stop traversal and
// forget the session. Subscribers see one last stopped state.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	s.mu.Lock()
	hs, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	view := hs.do(func(sess *session.Session) {
		sess.Stop()
	})
	s.publish(view)
	s.logger.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// action adapts a no-argument session mutation into a handler that runs it
// under the session lock, broadcasts the new state, and returns it.
func (s *Server) action(fn func(*session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs, ok := s.lookup(r)
		if !ok {
			s.writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		view := hs.do(fn)
		s.publish(view)
		s.writeJSON(w, http.StatusOK, view)
	}
}

// tick handles POST /sessions/{sessionId}/tick.
func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	body := tickRequest{Count: 1}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Count < 1 {
		body.Count = 1
	}

	view := hs.do(func(sess *session.Session) {
		for i := 0; i < body.Count; i++ {
			sess.Tick()
		}
	})
	s.publish(view)
	s.writeJSON(w, http.StatusOK, view)
}

// selectOption handles POST /sessions/{sessionId}/select. An explicit index
// wins over a relative move.
func (s *Server) selectOption(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body selectRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var apply func(*session.Session)
	switch {
	case body.Index != nil:
		i := *body.Index
		apply = func(sess *session.Session) { sess.Select(i) }
	case body.Move == "next":
		apply = (*session.Session).SelectNext
	case body.Move == "previous":
		apply = (*session.Session).SelectPrevious
	default:
		s.writeError(w, http.StatusBadRequest, "select requires an index or a move of next/previous")
		return
	}

	view := hs.do(apply)
	s.publish(view)
	s.writeJSON(w, http.StatusOK, view)
}

// takeCommand handles POST /sessions/{sessionId}/command: consume a queued
// script command, reporting its parameters when it had fired.
func (s *Server) takeCommand(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body commandRequest
	if err := decodeBody(r, &body); err != nil || body.Name == "" {
		s.writeError(w, http.StatusBadRequest, "command requires a name")
		return
	}

	var result commandResult
	hs.do(func(sess *session.Session) {
		if !sess.IsCommandCalled(body.Name) {
			return
		}
		result.Called = true
		result.Params = make([]string, sess.CommandParameterCount())
		for i := range result.Params {
			result.Params[i] = sess.CommandParameter(i)
		}
	})
	s.writeJSON(w, http.StatusOK, result)
}

// saveSession handles POST /sessions/{sessionId}/save.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body slotRequest
	if err := decodeBody(r, &body); err != nil || body.Slot == "" {
		s.writeError(w, http.StatusBadRequest, "save requires a slot")
		return
	}

	_, err := hs.doErr(func(sess *session.Session) error {
		return s.engine.Manager().SaveSession(r.Context(), body.Slot, sess)
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("save slot %q: %v", body.Slot, err))
		s.logger.Error("save failed", "session_id", hs.id, "slot", body.Slot, "error", err)
		return
	}
	s.logger.Info("session saved", "session_id", hs.id, "slot", body.Slot)
	s.writeJSON(w, http.StatusOK, body)
}

// restoreSession handles POST /sessions/{sessionId}/restore: replace script
// variables and visit counts from a slot. Presentation state is untouched;
// callers usually advance or restart afterwards.
func (s *Server) restoreSession(w http.ResponseWriter, r *http.Request) {
	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body slotRequest
	if err := decodeBody(r, &body); err != nil || body.Slot == "" {
		s.writeError(w, http.StatusBadRequest, "restore requires a slot")
		return
	}

	view, err := hs.doErr(func(sess *session.Session) error {
		return s.engine.Manager().RestoreSession(r.Context(), body.Slot, sess)
	})
	if err != nil {
		s.writeError(w, slotStatus(err), fmt.Sprintf("restore slot %q: %v", body.Slot, err))
		return
	}
	s.publish(view)
	s.writeJSON(w, http.StatusOK, view)
}

// getHealth handles GET /healthz.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getInfo handles GET /info.
func (s *Server) getInfo(apiVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"app":         "tendril-http",
			"version":     strings.TrimSpace(tendril.Version),
			"api_version": apiVersion,
			"script":      s.engine.ScriptID(),
		})
	}
}

// subscribeEvents handles GET /sessions/{sessionId}/events: an SSE stream of
// session state, sent whenever the session changes (including wait resumes).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	hs, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(hs.id)
	defer cancel()

	s.logger.Info("sse subscribed", "session_id", hs.id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	// Current state first, so subscribers need no separate GET.
	view := hs.do(func(*session.Session) {})
	if data, err := json.Marshal(view); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "session_id", hs.id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// subscribeReloads handles GET /events: an SSE stream of script reload
// notifications from the engine's source, for hot-reload aware clients.
func (s *Server) subscribeReloads(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := s.engine.Watch(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("watch error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// lookup resolves the {sessionId} path parameter to a hosted session.
func (s *Server) lookup(r *http.Request) (*hostedSession, bool) {
	id := chi.URLParam(r, "sessionId")
	s.mu.RLock()
	hs, ok := s.sessions[id]
	s.mu.RUnlock()
	return hs, ok
}

// publish pushes a state view to the session's SSE subscribers.
func (s *Server) publish(view sessionState) {
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("cannot encode session state", "session_id", view.ID, "error", err)
		return
	}
	s.streams.Broadcast(view.ID, string(data))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody parses an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func slotStatus(err error) int {
	if errors.Is(err, dialogue.ErrSlotNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, dialogue.ErrStateDecode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
