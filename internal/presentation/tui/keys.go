package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/aretw0/tendril/pkg/runner"
)

// KeyHandler plays over a real terminal: frames render through the embedded
// text handler while inputs arrive as single raw-mode keystrokes instead of
// typed lines. Enter advances or confirms, arrows move the option highlight,
// tab reveals the rest of the line, digits pick options directly, F5/F9 save
// and load, q or ctrl-c quits.
type KeyHandler struct {
	*runner.TextHandler

	input     *os.File
	inputs    chan runner.Input
	startOnce sync.Once

	mu      sync.Mutex
	restore func()
}

// NewKeyHandler builds a raw-mode handler over the terminal. Returns an
// error when in is not a terminal; callers fall back to line input.
func NewKeyHandler(in *os.File, out io.Writer, opts ...runner.TextOption) (*KeyHandler, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("%s is not a terminal", in.Name())
	}
	return &KeyHandler{
		// Raw mode disables output post-processing, so every newline the
		// renderer emits needs an explicit carriage return.
		TextHandler: runner.NewTextHandler(nil, &crlfWriter{w: out}, opts...),
		input:       in,
	}, nil
}

// Inputs switches the terminal into raw mode on first use and returns the
// keystroke channel. The channel closes on read failure or quit.
func (h *KeyHandler) Inputs() <-chan runner.Input {
	h.startOnce.Do(func() {
		h.inputs = make(chan runner.Input)
		go h.pump()
	})
	return h.inputs
}

// Close restores the terminal mode. Idempotent; safe after a failed start.
func (h *KeyHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.restore != nil {
		h.restore()
		h.restore = nil
	}
}

func (h *KeyHandler) pump() {
	defer close(h.inputs)

	fd := int(h.input.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.restore = func() { _ = term.Restore(fd, old) }
	h.mu.Unlock()
	defer h.Close()

	buf := make([]byte, 8)
	for {
		n, err := h.input.Read(buf)
		if err != nil {
			return
		}
		in, ok := decodeKey(buf[:n])
		if !ok {
			continue
		}
		h.inputs <- in
		if in.Kind == runner.KindQuit {
			return
		}
	}
}

// decodeKey maps one raw keystroke onto a player intent.
func decodeKey(b []byte) (runner.Input, bool) {
	if len(b) == 0 {
		return runner.Input{}, false
	}

	// Escape sequences: arrows and function keys.
	if b[0] == 0x1b {
		switch string(b) {
		case "\x1b[A", "\x1b[D": // up, left
			return runner.Input{Kind: runner.KindPrev}, true
		case "\x1b[B", "\x1b[C": // down, right
			return runner.Input{Kind: runner.KindNext}, true
		case "\x1b[15~": // F5
			return runner.Input{Kind: runner.KindSave}, true
		case "\x1b[20~": // F9
			return runner.Input{Kind: runner.KindLoad}, true
		}
		return runner.Input{}, false
	}

	switch b[0] {
	case '\r', '\n', ' ':
		return runner.Input{Kind: runner.KindAdvance}, true
	case '\t':
		return runner.Input{Kind: runner.KindComplete}, true
	case 'q', 'Q', 0x03, 0x04: // q, ctrl-c, ctrl-d
		return runner.Input{Kind: runner.KindQuit}, true
	case 'n', 'j':
		return runner.Input{Kind: runner.KindNext}, true
	case 'p', 'k':
		return runner.Input{Kind: runner.KindPrev}, true
	}
	if b[0] >= '1' && b[0] <= '9' {
		return runner.Input{Kind: runner.KindSelect, Index: int(b[0] - '1'), Raw: string(b[0])}, true
	}
	return runner.Input{}, false
}

// crlfWriter rewrites bare newlines as CRLF for raw-mode terminals.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != '\n' {
			continue
		}
		if i > start {
			if _, err := c.w.Write(p[start:i]); err != nil {
				return start, err
			}
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return i, err
		}
		start = i + 1
	}
	if start < len(p) {
		if _, err := c.w.Write(p[start:]); err != nil {
			return start, err
		}
	}
	return len(p), nil
}
