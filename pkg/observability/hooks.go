package observability

import (
	"log/slog"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// Chain merges several hook sets into one. Each callback fires in argument
// order; hook sets that leave a callback nil are skipped for that event. A
// callback nobody defines stays nil, so chained hooks cost nothing for
// events no one observes.
func Chain(hooks ...dialogue.Hooks) dialogue.Hooks {
	return dialogue.Hooks{
		OnNodeEnter:  chain(hooks, func(h dialogue.Hooks) func(*dialogue.NodeEvent) { return h.OnNodeEnter }),
		OnLineStart:  chain(hooks, func(h dialogue.Hooks) func(*dialogue.LineEvent) { return h.OnLineStart }),
		OnCommand:    chain(hooks, func(h dialogue.Hooks) func(*dialogue.CommandEvent) { return h.OnCommand }),
		OnOptions:    chain(hooks, func(h dialogue.Hooks) func(*dialogue.OptionsEvent) { return h.OnOptions }),
		OnConfirm:    chain(hooks, func(h dialogue.Hooks) func(*dialogue.OptionsEvent) { return h.OnConfirm }),
		OnSessionEnd: chain(hooks, func(h dialogue.Hooks) func(*dialogue.SessionEvent) { return h.OnSessionEnd }),
	}
}

func chain[E any](hooks []dialogue.Hooks, pick func(dialogue.Hooks) func(*E)) func(*E) {
	var fns []func(*E)
	for _, h := range hooks {
		if fn := pick(h); fn != nil {
			fns = append(fns, fn)
		}
	}
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(e *E) {
		for _, fn := range fns {
			fn(e)
		}
	}
}

// LogHooks returns a hook set that writes one structured record per
// lifecycle event. Line starts log at debug; they fire once per presented
// line and drown out everything else at info.
func LogHooks(logger *slog.Logger) dialogue.Hooks {
	return dialogue.Hooks{
		OnNodeEnter: func(e *dialogue.NodeEvent) {
			logger.Info("node_enter", "title", e.Title, "tags", e.Tags)
		},
		OnLineStart: func(e *dialogue.LineEvent) {
			logger.Debug("line_start", "title", e.Title, "text", e.Text)
		},
		OnCommand: func(e *dialogue.CommandEvent) {
			if e.Wait {
				logger.Info("wait_pause", "params", e.Params)
				return
			}
			logger.Info("command", "name", e.Name, "params", e.Params)
		},
		OnOptions: func(e *dialogue.OptionsEvent) {
			logger.Info("options", "candidates", e.Candidates)
		},
		OnConfirm: func(e *dialogue.OptionsEvent) {
			logger.Info("confirm", "selected", e.Selected, "candidates", e.Candidates)
		},
		OnSessionEnd: func(e *dialogue.SessionEvent) {
			logger.Info("session_end", "title", e.Title, "stopped", e.Stopped)
		},
	}
}
