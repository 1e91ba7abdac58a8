// Package graph renders a compiled dialogue script as a Mermaid flowchart,
// for documentation and for eyeballing branch structure during authoring.
package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Overlay marks dynamic traversal state on the static tree.
type Overlay struct {
	// Visited nodes render shaded; typically a save slot's visit table.
	Visited []string
	// Current renders highlighted.
	Current string
}

type edge struct {
	target string
	label  string
}

// GenerateMermaid produces Mermaid flowchart syntax (graph TD) from compiled
// script data. The entry node renders as a circle, branch points as
// parallelograms, plain nodes as rectangles; labeled edges are player
// choices, unlabeled ones automatic jumps.
func GenerateMermaid(data []byte, entry string, overlay *Overlay) (string, error) {
	var nodes []struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal(data, &nodes); err != nil {
		return "", fmt.Errorf("%w: %v", dialogue.ErrScriptParse, err)
	}
	if entry == "" {
		entry = "Start"
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeID(node.Title)
		edges := branchEdges(node.Body)

		opener, closer := "[", "]"
		switch {
		case node.Title == entry:
			opener, closer = "((", "))"
		case hasChoice(edges):
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Title), closer)

		for _, e := range edges {
			arrow := "-->"
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.label))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeID(e.target))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, title := range overlay.Visited {
			safeID := sanitizeID(title)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(overlay.Current))
		}
	}

	return sb.String(), nil
}

// branchEdges extracts the [[...]] references of a node body in order of
// appearance: labeled choices and unlabeled jumps.
func branchEdges(body string) []edge {
	var edges []edge
	rest := body
	for {
		open := strings.Index(rest, "[[")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], "]]")
		if close < 0 {
			break
		}
		ref := rest[open+2 : open+close]
		rest = rest[open+close+2:]

		if label, target, ok := strings.Cut(ref, "|"); ok {
			edges = append(edges, edge{target: strings.TrimSpace(target), label: strings.TrimSpace(label)})
		} else {
			edges = append(edges, edge{target: strings.TrimSpace(ref)})
		}
	}
	return edges
}

func hasChoice(edges []edge) bool {
	for _, e := range edges {
		if e.label != "" {
			return true
		}
	}
	return false
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '\\', ' ':
			return '_'
		}
		return r
	}, id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
