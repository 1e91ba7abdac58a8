// Package ws exposes the dialogue runtime over a WebSocket. Each connection
// hosts one session: inbound frames carry player intents, outbound frames
// carry presentation state, so a game client can drive dialogue without
// polling.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
)

// Engine is the slice of the runtime the WebSocket surface needs.
// *tendril.Engine satisfies it.
type Engine interface {
	NewSession(opts ...session.Option) (*session.Session, error)
	Entry() string
	ScriptID() string
	Manager() *session.Manager
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades requests into dialogue connections.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// Option configures the handler.
type Option func(*Handler)

// WithLogger sets the structured logger for connection handling.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler builds a WebSocket handler over the engine.
func NewHandler(engine Engine, opts ...Option) *Handler {
	h := &Handler{engine: engine}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// inboundMessage is the envelope clients send.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// outboundMessage is the envelope the server sends.
type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type startPayload struct {
	Start string `json:"start"`
	Slot  string `json:"slot"`
}

type tickPayload struct {
	Count int `json:"count"`
}

type selectPayload struct {
	Index *int   `json:"index"`
	Move  string `json:"move"`
}

type commandPayload struct {
	Name string `json:"name"`
}

type commandResult struct {
	Name   string   `json:"name"`
	Called bool     `json:"called"`
	Params []string `json:"params,omitempty"`
}

type slotPayload struct {
	Slot string `json:"slot"`
}

// ServeHTTP upgrades the request and serves the connection until the client
// goes away. The optional tick query parameter (milliseconds) makes the
// server scroll the line itself and push frames; without it the client
// drives every tick.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn:   conn,
		engine: h.engine,
		logger: h.logger,
	}

	sess, err := h.engine.NewSession(session.WithScheduler(&clientScheduler{
		client: c,
		base:   ports.TimerScheduler{},
	}))
	if err != nil {
		h.logger.Error("cannot create session", "error", err)
		c.send("error", map[string]string{"error": "cannot create session"})
		return
	}
	c.sess = sess

	c.send("hello", map[string]string{
		"script": h.engine.ScriptID(),
		"entry":  h.engine.Entry(),
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		c.readLoop()
	}()

	var tick <-chan time.Time
	if ms, err := strconv.Atoi(r.URL.Query().Get("tick")); err == nil && ms > 0 {
		ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.sess.Stop()
			c.mu.Unlock()
			return
		case <-tick:
			c.autoTick()
		}
	}
}

// client is one connection and the session confined to it. The session
// mutex serializes the reader, the auto-ticker and wait-timer resumes; the
// write mutex keeps concurrent senders off the wire.
type client struct {
	conn   *websocket.Conn
	engine Engine
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	sess      *session.Session
	lastFrame []byte
}

func (c *client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			c.logger.Warn("invalid websocket message", "error", err)
			c.send("error", map[string]string{"error": "invalid message"})
			continue
		}
		c.dispatch(inbound)
	}
}

func (c *client) dispatch(inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		var p startPayload
		if inbound.Payload != nil {
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				c.send("error", map[string]string{"error": "invalid start payload"})
				return
			}
		}
		c.start(p)

	case "advance":
		c.mutate((*session.Session).Advance)

	case "tick":
		p := tickPayload{Count: 1}
		if inbound.Payload != nil {
			if err := json.Unmarshal(inbound.Payload, &p); err != nil {
				c.send("error", map[string]string{"error": "invalid tick payload"})
				return
			}
		}
		if p.Count < 1 {
			p.Count = 1
		}
		c.mutate(func(sess *session.Session) {
			for i := 0; i < p.Count; i++ {
				sess.Tick()
			}
		})

	case "complete":
		c.mutate((*session.Session).CompleteLine)

	case "select":
		var p selectPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			c.send("error", map[string]string{"error": "invalid select payload"})
			return
		}
		switch {
		case p.Index != nil:
			c.mutate(func(sess *session.Session) { sess.Select(*p.Index) })
		case p.Move == "next":
			c.mutate((*session.Session).SelectNext)
		case p.Move == "previous":
			c.mutate((*session.Session).SelectPrevious)
		default:
			c.send("error", map[string]string{"error": "select requires an index or a move of next/previous"})
		}

	case "confirm":
		c.mutate((*session.Session).Confirm)

	case "command":
		var p commandPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.Name == "" {
			c.send("error", map[string]string{"error": "command requires a name"})
			return
		}
		result := commandResult{Name: p.Name}
		c.mu.Lock()
		if c.sess.IsCommandCalled(p.Name) {
			result.Called = true
			result.Params = make([]string, c.sess.CommandParameterCount())
			for i := range result.Params {
				result.Params[i] = c.sess.CommandParameter(i)
			}
		}
		c.mu.Unlock()
		c.send("command", result)

	case "save":
		var p slotPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.Slot == "" {
			c.send("error", map[string]string{"error": "save requires a slot"})
			return
		}
		c.mu.Lock()
		err := c.engine.Manager().SaveSession(context.Background(), p.Slot, c.sess)
		c.mu.Unlock()
		if err != nil {
			c.logger.Error("save failed", "slot", p.Slot, "error", err)
			c.send("error", map[string]string{"error": "save failed"})
			return
		}
		c.send("saved", p)

	case "restore":
		var p slotPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil || p.Slot == "" {
			c.send("error", map[string]string{"error": "restore requires a slot"})
			return
		}
		c.mu.Lock()
		err := c.engine.Manager().RestoreSession(context.Background(), p.Slot, c.sess)
		frame := c.sess.Frame()
		c.mu.Unlock()
		if err != nil {
			c.send("error", map[string]string{"error": "restore failed: " + err.Error()})
			return
		}
		c.pushFrame(frame)

	case "stop":
		c.mutate((*session.Session).Stop)

	default:
		c.logger.Warn("unknown websocket message type", "type", inbound.Type)
		c.send("error", map[string]string{"error": "unknown message type " + strconv.Quote(inbound.Type)})
	}
}

// start begins (or restarts) traversal, optionally seeding script state
// from a save slot first.
func (c *client) start(p startPayload) {
	start := p.Start
	if start == "" {
		start = c.engine.Entry()
	}

	c.mu.Lock()
	if !c.sess.HasNode(start) {
		c.mu.Unlock()
		c.send("error", map[string]string{"error": "unknown node " + strconv.Quote(start)})
		return
	}
	if p.Slot != "" {
		if err := c.engine.Manager().RestoreSession(context.Background(), p.Slot, c.sess); err != nil {
			c.mu.Unlock()
			c.send("error", map[string]string{"error": "restore failed: " + err.Error()})
			return
		}
	}
	c.sess.StartFrom(start)
	frame := c.sess.Frame()
	c.mu.Unlock()

	c.pushFrame(frame)
}

// mutate applies fn under the session lock and pushes the resulting frame.
func (c *client) mutate(fn func(*session.Session)) {
	c.mu.Lock()
	fn(c.sess)
	frame := c.sess.Frame()
	c.mu.Unlock()
	c.pushFrame(frame)
}

// autoTick advances the scroll on the server's clock. Frames are pushed
// only when they differ from the last one sent so idle lines stay quiet.
func (c *client) autoTick() {
	c.mu.Lock()
	c.sess.Tick()
	frame := c.sess.Frame()
	c.mu.Unlock()
	c.push(frame, true)
}

// pushFrame sends a state frame unconditionally and remembers it for
// auto-tick dedup.
func (c *client) pushFrame(frame session.Frame) {
	c.push(frame, false)
}

func (c *client) push(frame session.Frame, dedup bool) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("cannot encode frame", "error", err)
		return
	}
	c.mu.Lock()
	if dedup && string(data) == string(c.lastFrame) {
		c.mu.Unlock()
		return
	}
	c.lastFrame = data
	c.mu.Unlock()
	c.send("state", json.RawMessage(data))
}

func (c *client) send(msgType string, payload any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(outboundMessage{Type: msgType, Payload: payload}); err != nil {
		c.logger.Debug("websocket write failed", "type", msgType, "error", err)
	}
}

// clientScheduler delivers wait-timer resumes under the session lock and
// pushes the frame they produce.
type clientScheduler struct {
	client *client
	base   ports.Scheduler
}

func (cs *clientScheduler) After(d time.Duration, fn func()) ports.CancelFunc {
	return cs.base.After(d, func() {
		cs.client.mu.Lock()
		fn()
		frame := cs.client.sess.Frame()
		cs.client.mu.Unlock()
		cs.client.pushFrame(frame)
	})
}
