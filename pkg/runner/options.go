package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/tendril/pkg/registry"
	"github.com/aretw0/tendril/pkg/session"
)

// Option configures a Runner.
type Option func(*Runner)

// WithHandler replaces the default TextHandler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.Handler = h
	}
}

// WithRegistry wires the command registry dispatched each tick.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Runner) {
		r.Registry = reg
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithManager wires the slot manager and the slot used for restore on
// start and autosave on confirms and exit.
func WithManager(m *session.Manager, slot string) Option {
	return func(r *Runner) {
		r.Manager = m
		r.Slot = slot
	}
}

// WithStart overrides the engine's entry node.
func WithStart(title string) Option {
	return func(r *Runner) {
		r.Start = title
	}
}

// WithTickInterval sets the typewriter cadence.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.TickInterval = d
	}
}

// WithAutoPilot plays the script unattended, confirming the highlighted
// option at every branch point.
func WithAutoPilot() Option {
	return func(r *Runner) {
		r.AutoPilot = true
	}
}

// WithIO backs the default TextHandler with the given reader and writer.
// Ignored when WithHandler is set.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.Input = in
		}
		if out != nil {
			r.Output = out
		}
	}
}
