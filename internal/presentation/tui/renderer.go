package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/tendril/pkg/runner"
)

// NewRenderer returns a ContentRenderer that renders node text as markdown
// using glamour, so scripts can carry emphasis and lists into the terminal.
func NewRenderer() runner.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Glamour only fails on invalid options; fall back to plain text.
		return func(text string) (string, error) { return text, nil }
	}

	return func(text string) (string, error) {
		out, err := r.Render(text)
		if err != nil {
			return text, err
		}
		// Glamour pads a full paragraph block; dialogue lines read better tight.
		return strings.TrimSpace(out), nil
	}
}
