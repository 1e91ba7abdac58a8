package cli

import (
	"log/slog"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/ports"
)

// NewEngine builds an engine over a script repository with the command's
// logger and store wired in.
func NewEngine(repoPath string, opts RunOptions, store ports.StateStore, logger *slog.Logger) (*tendril.Engine, error) {
	engineOpts := []tendril.Option{
		tendril.WithLogger(logger),
	}
	if store != nil {
		engineOpts = append(engineOpts, tendril.WithStore(store))
	}
	if opts.Script != "" {
		engineOpts = append(engineOpts, tendril.WithScript(opts.Script))
	}
	if opts.Entry != "" {
		engineOpts = append(engineOpts, tendril.WithEntry(opts.Entry))
	}
	return tendril.New(repoPath, engineOpts...)
}
