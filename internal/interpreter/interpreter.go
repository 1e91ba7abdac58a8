// Package interpreter is the reference implementation of the
// ports.ScriptRuntime boundary. It executes compiled dialogue scripts: a JSON
// array of {title, tags, body} nodes whose bodies carry text lines, <<command>>
// directives and [[label|target]] branches.
//
// Hosts with their own interpreter plug it in through ports.ScriptRuntime;
// nothing in the session core depends on this package.
package interpreter

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
)

// Runtime executes a compiled script. The zero value is unloaded; Load installs
// a script, New is the usual constructor. Runtimes are single-owner objects:
// callers driving one from multiple goroutines must serialize access.
type Runtime struct {
	nodes  map[string]*node
	order  []string
	vars   *MapVariables
	visits map[string]int
}

var _ ports.ScriptRuntime = (*Runtime)(nil)

// New builds a runtime and loads the given compiled script data.
func New(data []byte) (*Runtime, error) {
	rt := &Runtime{
		vars:   NewMapVariables(nil),
		visits: map[string]int{},
	}
	if err := rt.Load(data); err != nil {
		return nil, err
	}
	return rt, nil
}

// Load parses compiled script data and replaces the node set. On malformed
// data it returns dialogue.ErrScriptParse and keeps the previous script, so a
// bad hot-reload never leaves the runtime unloaded. Variables and visit counts
// survive a reload.
func (r *Runtime) Load(data []byte) error {
	var raw []struct {
		Title string `json:"title"`
		Tags  string `json:"tags"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", dialogue.ErrScriptParse, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: script defines no nodes", dialogue.ErrScriptParse)
	}

	nodes := make(map[string]*node, len(raw))
	order := make([]string, 0, len(raw))
	for _, n := range raw {
		if n.Title == "" {
			return fmt.Errorf("%w: node missing title", dialogue.ErrScriptParse)
		}
		if _, dup := nodes[n.Title]; dup {
			return fmt.Errorf("%w: duplicate node %q", dialogue.ErrScriptParse, n.Title)
		}
		nodes[n.Title] = compileNode(n.Title, n.Tags, n.Body)
		order = append(order, n.Title)
	}

	r.nodes = nodes
	r.order = order
	if r.vars == nil {
		r.vars = NewMapVariables(nil)
	}
	if r.visits == nil {
		r.visits = map[string]int{}
	}
	return nil
}

// HasNode reports whether the loaded script defines the given title.
func (r *Runtime) HasNode(title string) bool {
	_, ok := r.nodes[title]
	return ok
}

// NodeTitles returns node titles in script order.
func (r *Runtime) NodeTitles() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Run begins a fresh sequence at the given title. Entering a node counts a
// visit, including nodes reached later through jumps and selected options.
func (r *Runtime) Run(title string) (ports.Cursor, error) {
	if r.nodes == nil {
		return nil, dialogue.ErrNoScript
	}
	c := &cursor{rt: r}
	if err := c.enter(title); err != nil {
		return nil, err
	}
	return c, nil
}

// Variables exposes the live variable table.
func (r *Runtime) Variables() ports.VariableStore {
	return r.vars
}

// VisitCounts snapshots the visit table.
func (r *Runtime) VisitCounts() map[string]int {
	out := make(map[string]int, len(r.visits))
	for k, v := range r.visits {
		out[k] = v
	}
	return out
}

// ReplaceVisitCounts swaps the visit table wholesale.
func (r *Runtime) ReplaceVisitCounts(visits map[string]int) {
	next := make(map[string]int, len(visits))
	for k, v := range visits {
		next[k] = v
	}
	r.visits = next
}

// MapVariables is a map-backed ports.VariableStore. Like the runtime it is a
// single-owner object.
type MapVariables struct {
	values map[string]any
}

// NewMapVariables builds a store seeded with the given bindings (may be nil).
func NewMapVariables(seed map[string]any) *MapVariables {
	m := &MapVariables{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		m.values[k] = v
	}
	return m
}

func (m *MapVariables) Get(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *MapVariables) Set(name string, value any) {
	m.values[name] = value
}

func (m *MapVariables) All() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *MapVariables) Replace(values map[string]any) {
	next := make(map[string]any, len(values))
	for k, v := range values {
		next[k] = v
	}
	m.values = next
}
