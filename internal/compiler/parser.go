// Package compiler turns script text in the node-header format into the
// compiled node array the interpreter loads:
//
//	title: Start
//	tags: intro scene(cafe)
//	---
//	Hi <<wait 500>> there
//	[[Yes|YesBranch]]
//	===
//
// Header lines run until the --- marker, the body until === or end of input.
// Unknown header keys (editor positions and the like) are ignored.
package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Node is one compiled script node, in the shape the interpreter loads.
type Node struct {
	Title string `json:"title"`
	Tags  string `json:"tags,omitempty"`
	Body  string `json:"body"`
}

// Compile parses script text and returns the compiled node array as JSON.
func Compile(text string) ([]byte, error) {
	nodes, err := ParseNodes(text)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodes)
}

// ParseNodes parses script text into its node list.
func ParseNodes(text string) ([]Node, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		nodes    []Node
		current  Node
		body     []string
		inHeader = true
		started  = false
	)

	flush := func(line int) error {
		if current.Title == "" {
			return fmt.Errorf("%w: line %d: node missing title header", dialogue.ErrScriptParse, line)
		}
		current.Body = strings.Join(body, "\n")
		nodes = append(nodes, current)
		current = Node{}
		body = nil
		inHeader = true
		started = false
		return nil
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1

		if inHeader {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" && !started {
				continue
			}
			if trimmed == "---" {
				inHeader = false
				continue
			}
			key, value, ok := strings.Cut(trimmed, ":")
			if !ok {
				return nil, fmt.Errorf("%w: line %d: expected `key: value` header, got %q", dialogue.ErrScriptParse, lineNo, trimmed)
			}
			started = true
			value = strings.TrimSpace(value)
			switch strings.TrimSpace(key) {
			case "title":
				current.Title = value
			case "tags":
				current.Tags = value
			}
			continue
		}

		if strings.TrimSpace(line) == "===" {
			if err := flush(lineNo); err != nil {
				return nil, err
			}
			continue
		}
		body = append(body, line)
	}

	// A final node may omit the closing marker.
	if started || !inHeader {
		if err := flush(len(strings.Split(text, "\n"))); err != nil {
			return nil, err
		}
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: script defines no nodes", dialogue.ErrScriptParse)
	}
	return nodes, nil
}
