package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/dialogue"
)

// Builder accumulates nodes for one script.
type Builder struct {
	id    string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a builder for a script with the given ID.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Node creates a node with the given title, or returns the existing builder
// so a node can be extended in several places.
func (b *Builder) Node(title string) *NodeBuilder {
	if nb, ok := b.nodes[title]; ok {
		return nb
	}
	nb := &NodeBuilder{
		title:   title,
		builder: b,
	}
	b.nodes[title] = nb
	b.order = append(b.order, title)
	return nb
}

// Nodes returns the accumulated nodes in definition order.
func (b *Builder) Nodes() []dialogue.NodeInfo {
	nodes := make([]dialogue.NodeInfo, 0, len(b.order))
	for _, title := range b.order {
		nodes = append(nodes, b.nodes[title].Info())
	}
	return nodes
}

// Bytes compiles the script to its serialized form, suitable for
// tendril.NewFromBytes or writing to disk.
func (b *Builder) Bytes() ([]byte, error) {
	data, err := json.Marshal(b.Nodes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script %s: %w", b.id, err)
	}
	return data, nil
}

// Build compiles the script into an in-memory Source.
func (b *Builder) Build() (*memory.Source, error) {
	source, err := memory.NewFromNodes(b.id, b.Nodes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory source: %w", err)
	}
	return source, nil
}
