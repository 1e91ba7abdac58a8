package runner

import (
	"strconv"
	"strings"

	"github.com/aretw0/tendril/pkg/session"
)

// Kind classifies a player input.
type Kind int

const (
	// KindAdvance is the enter key: confirm when options are up, complete
	// a still-scrolling line, advance otherwise.
	KindAdvance Kind = iota
	// KindComplete reveals the rest of the current line.
	KindComplete
	// KindNext moves the option highlight down.
	KindNext
	// KindPrev moves the option highlight up.
	KindPrev
	// KindSelect highlights an option by absolute index.
	KindSelect
	// KindSave snapshots the session into a slot.
	KindSave
	// KindLoad restores a slot into the session.
	KindLoad
	// KindQuit ends the play.
	KindQuit
	// KindUnknown is anything the parser did not recognize.
	KindUnknown
)

// Input is one player intent.
type Input struct {
	Kind  Kind
	Index int    // KindSelect
	Slot  string // KindSave/KindLoad, empty for the runner's default slot
	Raw   string // original text, for diagnostics
}

// Handler is the runner's IO strategy.
type Handler interface {
	// Frame presents the current session state. The runner calls it after
	// every mutation; handlers are expected to render increments, not
	// whole screens.
	Frame(f session.Frame) error

	// Inputs returns the channel of player intents. The handler owns the
	// reading goroutine and closes the channel on end of input.
	Inputs() <-chan Input

	// Notify presents a meta message (autosave results, reloads) outside
	// the dialogue content.
	Notify(msg string) error
}

// ContentRenderer transforms line text before output, e.g. markdown to
// ANSI. A render error falls back to the raw text.
type ContentRenderer func(string) (string, error)

// parseCommand maps one line of player text onto an intent. Option
// indexes are typed one-based; Input carries them zero-based.
func parseCommand(text string) Input {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)

	switch {
	case text == "":
		return Input{Kind: KindAdvance}
	case text == "c" || text == "complete":
		return Input{Kind: KindComplete}
	case text == "n" || text == "next":
		return Input{Kind: KindNext}
	case text == "p" || text == "prev" || text == "previous":
		return Input{Kind: KindPrev}
	case text == "q" || text == "quit" || text == "exit":
		return Input{Kind: KindQuit}
	case fields[0] == "save":
		in := Input{Kind: KindSave, Raw: text}
		if len(fields) > 1 {
			in.Slot = fields[1]
		}
		return in
	case fields[0] == "load":
		in := Input{Kind: KindLoad, Raw: text}
		if len(fields) > 1 {
			in.Slot = fields[1]
		}
		return in
	}

	if n, err := strconv.Atoi(text); err == nil && n > 0 {
		return Input{Kind: KindSelect, Index: n - 1, Raw: text}
	}
	return Input{Kind: KindUnknown, Raw: text}
}
