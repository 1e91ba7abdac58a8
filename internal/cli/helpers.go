// Package cli glues the cobra commands to the engine: configuration,
// store selection, player wiring and the watch loop live here so the
// command files stay declarative.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/tendril/internal/logging"
)

// NewLogger builds the command logger. Debug logs go to stderr so they
// never interleave with dialogue on stdout; otherwise logs are dropped.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystem writes a standardized system message outside the dialogue flow.
func printSystem(w io.Writer, format string, args ...any) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
