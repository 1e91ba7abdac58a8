package interpreter

import (
	"fmt"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// cursor walks a node program forward, following jumps and selected options
// into other nodes. A cursor never rewinds; restarting means a new Run call.
type cursor struct {
	rt      *Runtime
	node    *node
	pc      int
	pending optionsInstr // set while a branch point awaits Select
	done    bool
}

// Next pulls the next step. It returns ok == false once the sequence is
// exhausted, and keeps doing so on every later call. Pulling past an
// unresolved branch point also exhausts the sequence: a host that skips
// Select has abandoned the branch.
func (c *cursor) Next() (dialogue.Step, bool) {
	if c.done {
		return nil, false
	}
	if c.pending != nil {
		c.pending = nil
		c.done = true
		return nil, false
	}

	for {
		if c.pc >= len(c.node.program) {
			c.done = true
			return nil, false
		}
		in := c.node.program[c.pc]
		c.pc++

		switch in := in.(type) {
		case textInstr:
			return dialogue.Text{
				Text:  string(in),
				Title: c.node.Title,
				Tags:  c.node.Tags,
				Body:  c.node.Body,
			}, true
		case cmdInstr:
			return dialogue.Command{Text: string(in)}, true
		case setInstr:
			c.rt.vars.Set(in.name, c.rt.parseScalar(in.raw))
		case jumpInstr:
			if err := c.enter(string(in)); err != nil {
				c.done = true
				return nil, false
			}
		case optionsInstr:
			c.pending = in
			labels := make([]string, len(in))
			for i, o := range in {
				labels[i] = o.Label
			}
			return dialogue.Options{Candidates: labels, Select: c.selectOption}, true
		}
	}
}

func (c *cursor) selectOption(index int) error {
	if c.pending == nil {
		return fmt.Errorf("no branch point awaiting selection")
	}
	if index < 0 || index >= len(c.pending) {
		return fmt.Errorf("option index %d out of range [0,%d)", index, len(c.pending))
	}
	target := c.pending[index].Target
	c.pending = nil
	return c.enter(target)
}

func (c *cursor) enter(title string) error {
	n, ok := c.rt.nodes[title]
	if !ok {
		return fmt.Errorf("%w: %q", dialogue.ErrUnknownNode, title)
	}
	c.node = n
	c.pc = 0
	c.rt.visits[title]++
	return nil
}
