package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/registry"
	"github.com/aretw0/tendril/pkg/session"
)

// DefaultTickInterval is the typewriter cadence when none is configured.
const DefaultTickInterval = 40 * time.Millisecond

// Runner plays one session per Run call. The session never leaves the loop
// goroutine: ticks, inputs, command dispatch and wait resumes all execute
// there.
type Runner struct {
	// Handler is the IO strategy. If nil, a TextHandler over Input/Output
	// is built on first use.
	Handler Handler

	// Registry receives the script's command calls, once per tick. May be
	// nil; waits still pause either way.
	Registry *registry.Registry

	// Logger is used for internal debug logging. If nil, logs are dropped.
	Logger *slog.Logger

	// Manager and Slot enable saves: restore on start, autosave on
	// confirms, quits and completion. Empty Slot disables autosave but
	// leaves the player's explicit save/load commands working.
	Manager *session.Manager
	Slot    string

	// Start overrides the engine's entry node.
	Start string

	// TickInterval is the typewriter cadence.
	TickInterval time.Duration

	// AutoPilot plays without input: lines complete by ticking, branch
	// points confirm the highlighted option. Wait pauses still hold.
	AutoPilot bool

	// Input and Output back the default TextHandler.
	Input  io.Reader
	Output io.Writer
}

// New creates a Runner with default stdin/stdout IO.
func New(opts ...Option) *Runner {
	r := &Runner{
		Input:        os.Stdin,
		Output:       os.Stdout,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		TickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays a new session over the engine until the tree is exhausted, the
// player quits, input ends, or ctx is cancelled. It restores the
// configured slot first when one exists.
func (r *Runner) Run(ctx context.Context, engine *tendril.Engine) error {
	handler := r.resolveHandler()

	pump := NewPump()
	defer pump.Close()

	sess, err := engine.NewSession(session.WithScheduler(pump))
	if err != nil {
		return err
	}

	start := r.Start
	if start == "" {
		start = engine.Entry()
	}
	if !sess.HasNode(start) {
		return fmt.Errorf("unknown node %q", start)
	}

	if r.Manager != nil && r.Slot != "" {
		switch err := r.Manager.RestoreSession(ctx, r.Slot, sess); {
		case err == nil:
			r.notify(handler, fmt.Sprintf("restored slot %q", r.Slot))
		case errors.Is(err, dialogue.ErrSlotNotFound):
			// First play on this slot.
		default:
			return fmt.Errorf("restore slot %q: %w", r.Slot, err)
		}
	}

	sess.StartFrom(start)

	ticker := time.NewTicker(r.tickInterval())
	defer ticker.Stop()

	inputs := handler.Inputs()
	if r.AutoPilot {
		inputs = nil
	}

	if err := handler.Frame(sess.Frame()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			sess.Stop()
			r.autosave(context.Background(), sess, handler)
			return ctx.Err()

		case fn := <-pump.C():
			fn()
			if err := handler.Frame(sess.Frame()); err != nil {
				return err
			}

		case <-ticker.C:
			if !sess.Paused() {
				sess.Tick()
			}
			// Scanning arms any wait the clip cursor has reached; the
			// empty name can never claim a real command.
			sess.IsCommandCalled("")
			if r.Registry != nil {
				if _, err := r.Registry.Dispatch(ctx, sess); err != nil {
					return fmt.Errorf("command dispatch: %w", err)
				}
			}
			if r.AutoPilot {
				r.autoStep(sess)
			}
			if err := handler.Frame(sess.Frame()); err != nil {
				return err
			}
			if !sess.IsRunning() {
				r.autosave(ctx, sess, handler)
				return nil
			}

		case in, ok := <-inputs:
			if !ok {
				sess.Stop()
				return nil
			}
			quit, err := r.apply(ctx, sess, handler, in)
			if err != nil {
				return err
			}
			if err := handler.Frame(sess.Frame()); err != nil {
				return err
			}
			if quit || !sess.IsRunning() {
				sess.Stop()
				r.autosave(ctx, sess, handler)
				return nil
			}
		}
	}
}

// apply executes one player intent. Returns true when the player quit.
func (r *Runner) apply(ctx context.Context, sess *session.Session, handler Handler, in Input) (bool, error) {
	switch in.Kind {
	case KindQuit:
		return true, nil

	case KindAdvance:
		switch {
		case sess.IsLineType(dialogue.LineTypeOptions):
			sess.Confirm()
			r.autosave(ctx, sess, handler)
		case !sess.HasCompleted():
			// Enter mid-scroll skips the typewriter first.
			sess.CompleteLine()
		default:
			sess.Advance()
		}

	case KindComplete:
		sess.CompleteLine()

	case KindNext:
		sess.SelectNext()

	case KindPrev:
		sess.SelectPrevious()

	case KindSelect:
		sess.Select(in.Index)

	case KindSave:
		r.saveSlot(ctx, sess, handler, in.Slot)

	case KindLoad:
		r.loadSlot(ctx, sess, handler, in.Slot)

	case KindUnknown:
		r.notify(handler, fmt.Sprintf("unknown input %q", in.Raw))
	}
	return false, nil
}

// autoStep plays one unattended move: advance completed lines, confirm
// branch points. Scrolling and pauses are left to the ticker.
func (r *Runner) autoStep(sess *session.Session) {
	if sess.Paused() || !sess.HasCompleted() {
		return
	}
	if sess.IsLineType(dialogue.LineTypeOptions) {
		sess.Confirm()
		return
	}
	sess.Advance()
}

func (r *Runner) saveSlot(ctx context.Context, sess *session.Session, handler Handler, slot string) {
	if slot == "" {
		slot = r.Slot
	}
	if r.Manager == nil || slot == "" {
		r.notify(handler, "no save slot configured")
		return
	}
	if err := r.Manager.SaveSession(ctx, slot, sess); err != nil {
		r.Logger.Warn("save failed", "slot", slot, "err", err)
		r.notify(handler, fmt.Sprintf("save %q failed: %v", slot, err))
		return
	}
	r.notify(handler, fmt.Sprintf("saved slot %q", slot))
}

func (r *Runner) loadSlot(ctx context.Context, sess *session.Session, handler Handler, slot string) {
	if slot == "" {
		slot = r.Slot
	}
	if r.Manager == nil || slot == "" {
		r.notify(handler, "no save slot configured")
		return
	}
	if err := r.Manager.RestoreSession(ctx, slot, sess); err != nil {
		r.Logger.Warn("load failed", "slot", slot, "err", err)
		r.notify(handler, fmt.Sprintf("load %q failed: %v", slot, err))
		return
	}
	r.notify(handler, fmt.Sprintf("restored slot %q", slot))
}

// autosave persists quietly; a missing store or slot is not an error.
func (r *Runner) autosave(ctx context.Context, sess *session.Session, handler Handler) {
	if r.Manager == nil || r.Slot == "" {
		return
	}
	if err := r.Manager.SaveSession(ctx, r.Slot, sess); err != nil {
		r.Logger.Warn("autosave failed", "slot", r.Slot, "err", err)
		return
	}
	r.Logger.Debug("autosaved", "slot", r.Slot)
}

func (r *Runner) resolveHandler() Handler {
	if r.Handler == nil {
		// Memoized so repeated Runs reuse one input pump.
		r.Handler = NewTextHandler(r.Input, r.Output)
	}
	return r.Handler
}

func (r *Runner) notify(handler Handler, msg string) {
	if err := handler.Notify(msg); err != nil {
		r.Logger.Debug("notify failed", "err", err)
	}
}

func (r *Runner) tickInterval() time.Duration {
	if r.TickInterval > 0 {
		return r.TickInterval
	}
	return DefaultTickInterval
}
