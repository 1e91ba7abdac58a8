package ports

import "github.com/aretw0/tendril/pkg/dialogue"

// ScriptRuntime is the boundary to the external branching-dialogue
// interpreter. The session core never parses script text itself; it pulls
// tagged steps from cursors the interpreter produces.
type ScriptRuntime interface {
	// HasNode reports whether the loaded script defines the given node title.
	// Pure lookup, no state mutation.
	HasNode(title string) bool

	// NodeTitles returns every node title the loaded script defines.
	NodeTitles() []string

	// Run begins a new sequence at the given node title. Each call builds a
	// fresh forward-only cursor; sequences cannot rewind, only restart.
	// Returns dialogue.ErrUnknownNode for titles HasNode rejects.
	Run(title string) (Cursor, error)

	// Variables exposes the interpreter's live variable table.
	Variables() VariableStore

	// VisitCounts snapshots the interpreter's visit table (title -> times run).
	VisitCounts() map[string]int

	// ReplaceVisitCounts swaps the visit table wholesale. Used by state loading.
	ReplaceVisitCounts(visits map[string]int)
}

// Cursor is a pull iterator over a running dialogue sequence. Next blocks
// until the interpreter produces the next step and returns ok == false once
// the sequence is exhausted. Cursors are single-goroutine objects.
type Cursor interface {
	Next() (dialogue.Step, bool)
}

// VariableStore is the key-value contract for cross-system state exchange.
type VariableStore interface {
	// Get returns the bound value and whether the key exists.
	Get(name string) (any, bool)

	// Set binds a value to a key, replacing any existing binding.
	Set(name string, value any)

	// All snapshots every binding. Mutating the returned map must not affect
	// the store.
	All() map[string]any

	// Replace swaps the whole table for the given bindings (no merge).
	Replace(values map[string]any)
}
