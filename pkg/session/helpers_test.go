package session_test

import (
	"testing"
	"time"

	"github.com/aretw0/tendril/internal/interpreter"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/require"
)

const linearScript = `[
	{"title": "Start", "tags": "intro scene(cafe)", "body": "Hello there.\n[[Middle]]"},
	{"title": "Middle", "body": "Still walking."}
]`

const branchingScript = `[
	{"title": "Start", "tags": "mood(happy,loud)", "body": "Hi <<wait 500>> there\n[[Yes|YesBranch]]\n[[No|NoBranch]]"},
	{"title": "YesBranch", "body": "Glad to hear it."},
	{"title": "NoBranch", "body": "Maybe next time."}
]`

// manualScheduler captures wait timers so tests control when they elapse.
type manualScheduler struct {
	delay     time.Duration
	fire      func()
	armed     int
	cancelled int
}

func (m *manualScheduler) After(d time.Duration, fn func()) ports.CancelFunc {
	m.armed++
	m.delay = d
	m.fire = fn
	return func() { m.cancelled++ }
}

// Fire runs the pending timer callback, simulating the wait elapsing. It
// deliberately ignores cancellation, modelling a callback that was already
// in flight when the cancel arrived.
func (m *manualScheduler) Fire() {
	if m.fire == nil {
		return
	}
	fn := m.fire
	m.fire = nil
	fn()
}

// hookRecorder collects lifecycle events for assertions.
type hookRecorder struct {
	nodes    []string
	lines    []string
	commands []string
	waits    int
	options  [][]string
	confirms []int
	ends     []bool
}

func (r *hookRecorder) hooks() dialogue.Hooks {
	return dialogue.Hooks{
		OnNodeEnter: func(e *dialogue.NodeEvent) { r.nodes = append(r.nodes, e.Title) },
		OnLineStart: func(e *dialogue.LineEvent) { r.lines = append(r.lines, e.Text) },
		OnCommand: func(e *dialogue.CommandEvent) {
			if e.Wait {
				r.waits++
				return
			}
			r.commands = append(r.commands, e.Name)
		},
		OnOptions:    func(e *dialogue.OptionsEvent) { r.options = append(r.options, e.Candidates) },
		OnConfirm:    func(e *dialogue.OptionsEvent) { r.confirms = append(r.confirms, e.Selected) },
		OnSessionEnd: func(e *dialogue.SessionEvent) { r.ends = append(r.ends, e.Stopped) },
	}
}

func newRuntime(t *testing.T, script string) *interpreter.Runtime {
	t.Helper()
	rt, err := interpreter.New([]byte(script))
	require.NoError(t, err)
	return rt
}

func startSession(t *testing.T, script, node string, opts ...session.Option) (*session.Session, *interpreter.Runtime) {
	t.Helper()
	rt := newRuntime(t, script)
	s := session.New(rt, opts...)
	s.StartFrom(node)
	require.True(t, s.IsRunning(), "session should run after StartFrom(%q)", node)
	return s, rt
}

// scrollToEnd ticks the presenter until the current line is fully revealed.
func scrollToEnd(t *testing.T, s *session.Session) {
	t.Helper()
	for i := 0; i < 10000 && !s.HasCompleted(); i++ {
		s.Tick()
	}
	require.True(t, s.HasCompleted(), "line never finished scrolling")
}
