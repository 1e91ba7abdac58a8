package runner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/tendril/pkg/session"
)

// JSONHandler speaks newline-delimited JSON on both directions, for
// embedding the player in another process. Each outbound line is one
// message envelope; each inbound line is one intent.
//
// Outbound: {"type":"frame","frame":{...}} and {"type":"notice","message":"..."}.
// Inbound: {"action":"advance"} with optional "index" (select) and "slot"
// (save/load). A consecutive duplicate frame is not re-emitted, so a host
// reading the stream sees exactly the state changes.
type JSONHandler struct {
	reader  *bufio.Reader
	encoder *json.Encoder

	mu        sync.Mutex
	lastFrame session.Frame
	hasFrame  bool

	inputs    chan Input
	startOnce sync.Once
}

type jsonEnvelope struct {
	Type    string         `json:"type"`
	Frame   *session.Frame `json:"frame,omitempty"`
	Message string         `json:"message,omitempty"`
}

type jsonIntent struct {
	Action string `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Slot   string `json:"slot,omitempty"`
}

// NewJSONHandler creates a handler over the given streams; nil defaults to
// stdin/stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

// Inputs starts the read pump on first use and returns its channel.
func (h *JSONHandler) Inputs() <-chan Input {
	h.startOnce.Do(func() {
		h.inputs = make(chan Input)
		go h.pump()
	})
	return h.inputs
}

func (h *JSONHandler) pump() {
	for {
		line, err := h.reader.ReadString('\n')
		if line != "" || err == nil {
			if in, ok := parseIntent(line); ok {
				h.inputs <- in
			}
		}
		if err != nil {
			close(h.inputs)
			return
		}
	}
}

// parseIntent maps one inbound line onto an intent. Blank lines are
// ignored; undecodable lines surface as unknown intents so the loop can
// report them instead of silently dropping host bugs.
func parseIntent(line string) (Input, bool) {
	clean, err := SanitizeInput(line)
	if err != nil {
		return Input{Kind: KindUnknown, Raw: err.Error()}, true
	}
	raw := strings.TrimSpace(clean)
	if raw == "" {
		return Input{}, false
	}

	var intent jsonIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return Input{Kind: KindUnknown, Raw: raw}, true
	}

	switch intent.Action {
	case "advance", "":
		return Input{Kind: KindAdvance, Raw: raw}, true
	case "complete":
		return Input{Kind: KindComplete, Raw: raw}, true
	case "next":
		return Input{Kind: KindNext, Raw: raw}, true
	case "prev", "previous":
		return Input{Kind: KindPrev, Raw: raw}, true
	case "select":
		if intent.Index == nil {
			return Input{Kind: KindUnknown, Raw: raw}, true
		}
		return Input{Kind: KindSelect, Index: *intent.Index, Raw: raw}, true
	case "save":
		return Input{Kind: KindSave, Slot: intent.Slot, Raw: raw}, true
	case "load":
		return Input{Kind: KindLoad, Slot: intent.Slot, Raw: raw}, true
	case "quit":
		return Input{Kind: KindQuit, Raw: raw}, true
	}
	return Input{Kind: KindUnknown, Raw: raw}, true
}

// Frame emits the state as one JSON line, skipping consecutive duplicates.
func (h *JSONHandler) Frame(f session.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hasFrame && reflect.DeepEqual(f, h.lastFrame) {
		return nil
	}
	h.lastFrame = f
	h.hasFrame = true
	if err := h.encoder.Encode(jsonEnvelope{Type: "frame", Frame: &f}); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// Notify emits a meta message as one JSON line.
func (h *JSONHandler) Notify(msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.encoder.Encode(jsonEnvelope{Type: "notice", Message: msg}); err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	return nil
}
