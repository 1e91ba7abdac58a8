package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Source implements ports.ScriptSource using an in-memory map. It backs
// embedded scripts and tests; nothing is watched or reloaded.
type Source struct {
	scripts map[string][]byte
}

// NewSource creates a Source from pre-compiled script data, keyed by script ID.
func NewSource(scripts map[string][]byte) *Source {
	data := make(map[string][]byte, len(scripts))
	for id, raw := range scripts {
		data[id] = append([]byte(nil), raw...)
	}
	return &Source{scripts: data}
}

// NewFromNodes creates a single-script Source from node values. This handles
// serialization automatically, improving DX for tests.
func NewFromNodes(id string, nodes ...dialogue.NodeInfo) (*Source, error) {
	type compiled struct {
		Title string `json:"title"`
		Tags  string `json:"tags,omitempty"`
		Body  string `json:"body"`
	}

	out := make([]compiled, 0, len(nodes))
	for _, n := range nodes {
		if n.Title == "" {
			return nil, fmt.Errorf("node missing title")
		}
		out = append(out, compiled{
			Title: n.Title,
			Tags:  strings.Join(n.Tags, " "),
			Body:  n.Body,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script %s: %w", id, err)
	}
	return &Source{scripts: map[string][]byte{id: data}}, nil
}

// GetScript retrieves the raw compiled data of a script by ID.
func (s *Source) GetScript(_ context.Context, id string) ([]byte, error) {
	raw, ok := s.scripts[id]
	if !ok {
		return nil, fmt.Errorf("script not found: %s", id)
	}
	return append([]byte(nil), raw...), nil
}

// ListScripts returns all available script IDs in deterministic order.
func (s *Source) ListScripts(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.scripts))
	for id := range s.scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
