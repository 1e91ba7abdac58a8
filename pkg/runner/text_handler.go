package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/session"
)

// TextHandler plays over plain text streams: the typewriter reveal prints
// incrementally, options print as a numbered list, and one input line is
// one intent ("", "2", "n", "save camp", "q", ...).
type TextHandler struct {
	Writer io.Writer

	// Renderer, when set, replaces the incremental reveal: each line
	// prints once, fully rendered, on completion.
	Renderer ContentRenderer

	// Cursor marks the highlighted option. Non-selected rows are padded
	// to the cursor's rune width so the labels align.
	Cursor string

	source    io.Reader
	reader    *bufio.Reader
	inputs    chan Input
	startOnce sync.Once

	// print state for incremental output
	lastClip    string
	open        bool
	optionsKey  string
	renderedKey string
	endShown    bool
}

// TextOption configures a TextHandler.
type TextOption func(*TextHandler)

// WithRenderer sets the completed-line renderer (e.g. markdown to ANSI).
func WithRenderer(renderer ContentRenderer) TextOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithCursor sets the option highlight glyph.
func WithCursor(cursor string) TextOption {
	return func(h *TextHandler) {
		h.Cursor = cursor
	}
}

// NewTextHandler creates a handler over the given streams; nil defaults to
// stdin/stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		Cursor: "> ",
		source: r,
		reader: bufio.NewReader(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Inputs starts the read pump on first use and returns its channel.
func (h *TextHandler) Inputs() <-chan Input {
	h.startOnce.Do(func() {
		h.inputs = make(chan Input)
		go h.pump()
	})
	return h.inputs
}

// pump turns input lines into intents. Sanitization failures surface as
// unknown intents so the loop can report them; the pump itself never
// writes to the terminal.
func (h *TextHandler) pump() {
	for {
		text, err := h.reader.ReadString('\n')
		if text != "" || err == nil {
			clean, serr := SanitizeInput(strings.TrimRight(text, "\r\n"))
			if serr != nil {
				h.inputs <- Input{Kind: KindUnknown, Raw: serr.Error()}
			} else {
				h.inputs <- parseCommand(clean)
			}
		}
		if err != nil {
			close(h.inputs)
			return
		}
	}
}

func (h *TextHandler) Frame(f session.Frame) error {
	switch f.LineType {
	case dialogue.LineTypeText:
		h.optionsKey = ""
		if h.Renderer != nil {
			h.renderCompleted(f)
			break
		}
		if !strings.HasPrefix(f.ClippedText, h.lastClip) {
			// The line was replaced; close the old one.
			h.breakLine()
			h.lastClip = ""
		}
		if delta := strings.TrimPrefix(f.ClippedText, h.lastClip); delta != "" {
			fmt.Fprint(h.Writer, delta)
			h.lastClip = f.ClippedText
			h.open = true
		}

	case dialogue.LineTypeOptions:
		h.printOptions(f)
	}

	if !f.Running && !h.endShown {
		h.breakLine()
		h.endShown = true
	}
	return nil
}

// renderCompleted prints each line once, rendered, when it finishes.
func (h *TextHandler) renderCompleted(f session.Frame) {
	if !f.Completed {
		if f.ClippedText == "" {
			// A fresh line started; let an identical one print again.
			h.renderedKey = ""
		}
		return
	}
	key := f.NodeTitle + "\x00" + f.LineText
	if key == h.renderedKey {
		return
	}
	h.renderedKey = key
	out := f.LineText
	if rendered, err := h.Renderer(f.LineText); err == nil {
		out = rendered
	}
	fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
}

func (h *TextHandler) printOptions(f session.Frame) {
	key := strings.Join(f.Options, "\x00") + fmt.Sprintf("#%d", f.Selected)
	if key == h.optionsKey {
		return
	}
	h.optionsKey = key
	h.lastClip = ""
	h.renderedKey = ""
	h.breakLine()

	pad := strings.Repeat(" ", utf8.RuneCountInString(h.Cursor))
	for i, opt := range f.Options {
		marker := pad
		if i == f.Selected {
			marker = h.Cursor
		}
		fmt.Fprintf(h.Writer, "%s%d. %s\n", marker, i+1, opt)
	}
}

func (h *TextHandler) Notify(msg string) error {
	h.breakLine()
	_, err := fmt.Fprintf(h.Writer, "[system] %s\n", msg)
	return err
}

// breakLine terminates a partially printed line, if one is open.
func (h *TextHandler) breakLine() {
	if h.open {
		fmt.Fprintln(h.Writer)
		h.open = false
	}
}
