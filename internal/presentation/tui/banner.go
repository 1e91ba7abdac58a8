package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner. Colors degrade with the terminal's
// profile; a dumb pipe gets plain text.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []string{
		` _                 _      _ _`,
		`| |_ ___ _ __   __| |_ __(_) |`,
		`| __/ _ \ '_ \ / _' | '__| | |`,
		`| ||  __/ | | | (_| | |  | | |`,
		` \__\___|_| |_|\__,_|_|  |_|_|`,
	}
	// A green-to-teal fade, one shade per row.
	shades := []string{"#4ade80", "#34d399", "#2dd4bf", "#22d3ee", "#38bdf8"}

	fmt.Fprintln(w)
	for i, line := range lines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(shades[i])))
	}
	fmt.Fprintln(w, termenv.String("  dialogue runtime "+version).Foreground(p.Color("#64748b")).Italic())
	fmt.Fprintln(w)
}
