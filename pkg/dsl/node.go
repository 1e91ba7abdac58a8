package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// NodeBuilder provides a fluent API for composing one node's body.
type NodeBuilder struct {
	title   string
	tags    []string
	lines   []string
	builder *Builder
}

// Tag appends tags to the node.
func (n *NodeBuilder) Tag(tags ...string) *NodeBuilder {
	n.tags = append(n.tags, tags...)
	return n
}

// Line appends a line of dialogue text.
func (n *NodeBuilder) Line(text string) *NodeBuilder {
	n.lines = append(n.lines, text)
	return n
}

// Command appends a script command directive. The command fires when the
// line before it finishes scrolling.
func (n *NodeBuilder) Command(name string, args ...string) *NodeBuilder {
	parts := append([]string{name}, args...)
	n.lines = append(n.lines, fmt.Sprintf("<<%s>>", strings.Join(parts, " ")))
	return n
}

// Wait appends a wait command that pauses scrolling for the given seconds.
func (n *NodeBuilder) Wait(seconds string) *NodeBuilder {
	return n.Command("wait", seconds)
}

// Set appends an assignment of a script variable. The variable name is
// written with the $ sigil the script syntax expects.
func (n *NodeBuilder) Set(variable, value string) *NodeBuilder {
	if !strings.HasPrefix(variable, "$") {
		variable = "$" + variable
	}
	return n.Command("set", variable, value)
}

// Option appends a player choice branching to the target node.
func (n *NodeBuilder) Option(label, target string) *NodeBuilder {
	n.lines = append(n.lines, fmt.Sprintf("[[%s|%s]]", label, target))
	return n
}

// Jump appends an automatic transition to the target node. A node with no
// options and no jump ends the session.
func (n *NodeBuilder) Jump(target string) *NodeBuilder {
	n.lines = append(n.lines, fmt.Sprintf("[[%s]]", target))
	return n
}

// Info returns the node as compiled script data. This is primarily used by
// the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Info() dialogue.NodeInfo {
	return dialogue.NodeInfo{
		Title: n.title,
		Tags:  n.tags,
		Body:  strings.Join(n.lines, "\n"),
	}
}
