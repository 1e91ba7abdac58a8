package session

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/ports"
)

// tagPattern matches parameterized tags of the form name(a,b,c).
var tagPattern = regexp.MustCompile(`([^(]+)\(([^)]+)\)`)

// Session drives one traversal of a dialogue script. It is not safe for
// concurrent use; drive it from a single goroutine.
type Session struct {
	script ports.ScriptRuntime
	logger *slog.Logger
	hooks  dialogue.Hooks
	sched  ports.Scheduler

	running  bool
	cursor   ports.Cursor
	step     dialogue.Step // pulled ahead of the presented line; nil when exhausted
	lineType string

	// Line presenter.
	line    []rune
	clipEnd int

	// Metadata of the node the current line came from.
	node      dialogue.NodeInfo
	tagParams []string

	// Command queue. Entries are pointers so the wait timer can remove
	// exactly the instance it was armed for.
	queue      []*dialogue.CommandCall
	lastParams []string
	paused     bool
	cancelWait ports.CancelFunc
	waitGen    uint64

	// Option selector.
	options     []string
	selectFn    func(int) error
	optionCount int
	selected    int
	selDirty    bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for internal warnings and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks installs lifecycle hooks. Hooks fire synchronously on the
// calling goroutine and must not re-enter the session.
func WithHooks(hooks dialogue.Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithScheduler replaces the timer scheduler used by wait commands.
// Tests use this to fire waits deterministically.
func WithScheduler(sched ports.Scheduler) Option {
	return func(s *Session) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// New creates a Session over the given script runtime. The session starts
// idle; call StartFrom to begin a traversal.
func New(script ports.ScriptRuntime, opts ...Option) *Session {
	s := &Session{
		script:   script,
		logger:   logging.NewNop(),
		sched:    ports.TimerScheduler{},
		selected: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartFrom begins a traversal at the named node. An unknown title is
// logged and ignored so a mistyped trigger cannot crash a game loop.
// Any pending wait from a previous run is cancelled before the new
// traversal starts.
func (s *Session) StartFrom(title string) {
	if s.script == nil || !s.script.HasNode(title) {
		s.logger.Warn("dialogue node not found", "title", title)
		return
	}
	cur, err := s.script.Run(title)
	if err != nil {
		s.logger.Error("cannot start dialogue", "title", title, "err", err)
		return
	}
	s.cancelPendingWait()
	s.resetPresentation()
	s.cursor = cur
	s.pull()
	s.running = true
	s.Advance()
}

// Stop ends the traversal and clears the presented line. It is idempotent
// and cancels any pending wait so a stale timer cannot resume a session
// started later.
func (s *Session) Stop() {
	s.stopTraversal(true)
}

// IsRunning reports whether a traversal is active. The terminal check is
// lazy: a session whose cursor is exhausted ends here, on read, once its
// final text line has fully scrolled, or right away when the sequence
// never produced anything displayable (a commands-only node). Hosts
// polling IsRunning each frame therefore observe the natural end of a
// tree without any callback.
func (s *Session) IsRunning() bool {
	if !s.running {
		return false
	}
	if s.step == nil {
		switch {
		case s.lineType == dialogue.LineTypeText && s.clipEnd >= len(s.line):
			s.stopTraversal(false)
		case s.lineType == dialogue.LineTypeUnknown && len(s.line) == 0:
			s.stopTraversal(false)
		}
	}
	return s.running
}

// HasNode reports whether the loaded script contains the named node.
func (s *Session) HasNode(title string) bool {
	return s.script != nil && s.script.HasNode(title)
}

// LineType returns the type of the current line: one of
// dialogue.LineTypeText, LineTypeOptions, LineTypeCommand or
// LineTypeUnknown.
func (s *Session) LineType() string {
	if s.lineType == "" {
		return dialogue.LineTypeUnknown
	}
	return s.lineType
}

// IsLineType reports whether the current line is of the given type.
func (s *Session) IsLineType(t string) bool {
	return s.LineType() == t
}

// Paused reports whether a wait command is holding the presenter.
func (s *Session) Paused() bool {
	return s.paused
}

// NodeTitle returns the title of the node the current line came from,
// or "" when no traversal is active.
func (s *Session) NodeTitle() string {
	if !s.running {
		return ""
	}
	return s.node.Title
}

// NodeBody returns the raw body of the current node, or "" when no
// traversal is active.
func (s *Session) NodeBody() string {
	if !s.running {
		return ""
	}
	return s.node.Body
}

// NodeTags returns the tags of the current node. The returned slice is
// shared; callers must not mutate it.
func (s *Session) NodeTags() []string {
	if !s.running {
		return nil
	}
	return s.node.Tags
}

// NodeTag returns the tag at index i. Negative indexes yield "";
// indexes past the end clamp to the last tag.
func (s *Session) NodeTag(i int) string {
	if !s.running || len(s.node.Tags) == 0 || i < 0 {
		return ""
	}
	if i >= len(s.node.Tags) {
		i = len(s.node.Tags) - 1
	}
	return s.node.Tags[i]
}

// ContainsTag reports whether the current node carries the given tag.
// Plain tags compare exactly; parameterized tags such as mood(happy,loud)
// compare their name case-insensitively and record their parameters for
// TagParameter. Parameters are re-recorded on every call, by the last
// parameterized tag scanned.
func (s *Session) ContainsTag(query string) bool {
	s.tagParams = nil
	if !s.running || len(s.node.Tags) == 0 {
		return false
	}
	for _, tag := range s.node.Tags {
		if m := tagPattern.FindStringSubmatch(tag); m != nil {
			s.tagParams = strings.Split(m[2], ",")
			if strings.EqualFold(m[1], query) {
				return true
			}
			continue
		}
		if tag == query {
			return true
		}
	}
	return false
}

// TagParameter returns the i-th parameter recorded by the most recent
// ContainsTag call, or "" when out of range.
func (s *Session) TagParameter(i int) string {
	if i < 0 || i >= len(s.tagParams) {
		return ""
	}
	return s.tagParams[i]
}

// VisitedTitles returns the titles of all nodes entered at least once
// during this script's lifetime, sorted for stable output.
func (s *Session) VisitedTitles() []string {
	if s.script == nil {
		return nil
	}
	counts := s.script.VisitCounts()
	titles := make([]string, 0, len(counts))
	for title, n := range counts {
		if n > 0 {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// HasVisited reports whether the named node has been entered. An empty
// title queries the node of the current line.
func (s *Session) HasVisited(title string) bool {
	if s.script == nil {
		return false
	}
	if title == "" {
		title = s.node.Title
	}
	return s.script.VisitCounts()[title] > 0
}

// pull advances the pulled-ahead step. A drained cursor leaves step nil,
// which IsRunning later converts into a natural session end.
func (s *Session) pull() {
	if s.cursor == nil {
		s.step = nil
		return
	}
	step, ok := s.cursor.Next()
	if !ok {
		s.step = nil
		return
	}
	s.step = step
}

// resetPresentation clears all per-traversal presentation state.
func (s *Session) resetPresentation() {
	s.step = nil
	s.lineType = ""
	s.line = nil
	s.clipEnd = 0
	s.node = dialogue.NodeInfo{}
	s.tagParams = nil
	s.queue = nil
	s.lastParams = nil
	s.paused = false
	s.options = nil
	s.selectFn = nil
	s.optionCount = 0
	s.selected = -1
	s.selDirty = false
}

func (s *Session) stopTraversal(explicit bool) {
	s.cancelPendingWait()
	if !s.running {
		return
	}
	s.running = false
	s.line = nil
	s.clipEnd = 0
	s.emitSessionEnd(explicit)
}

// cancelPendingWait disarms any scheduled wait resume. Bumping the
// generation first makes an already-fired callback a no-op even if the
// scheduler could not stop it in time.
func (s *Session) cancelPendingWait() {
	s.waitGen++
	if s.cancelWait != nil {
		s.cancelWait()
		s.cancelWait = nil
	}
	s.paused = false
}

func (s *Session) emitNodeEnter(title string, tags []string) {
	if s.hooks.OnNodeEnter == nil {
		return
	}
	s.hooks.OnNodeEnter(&dialogue.NodeEvent{
		EventBase: eventBase(dialogue.EventNodeEnter),
		Title:     title,
		Tags:      tags,
	})
}

func (s *Session) emitLineStart(text string) {
	if s.hooks.OnLineStart == nil {
		return
	}
	s.hooks.OnLineStart(&dialogue.LineEvent{
		EventBase: eventBase(dialogue.EventLineStart),
		Title:     s.node.Title,
		Text:      text,
	})
}

func (s *Session) emitCommand(call *dialogue.CommandCall, wait bool) {
	if s.hooks.OnCommand == nil {
		return
	}
	s.hooks.OnCommand(&dialogue.CommandEvent{
		EventBase: eventBase(dialogue.EventCommand),
		Name:      call.Name,
		Params:    call.Args(),
		Wait:      wait,
	})
}

func (s *Session) emitOptions() {
	if s.hooks.OnOptions == nil {
		return
	}
	s.hooks.OnOptions(&dialogue.OptionsEvent{
		EventBase:  eventBase(dialogue.EventOptions),
		Candidates: s.options,
		Selected:   s.selected,
	})
}

func (s *Session) emitConfirm(index int) {
	if s.hooks.OnConfirm == nil {
		return
	}
	s.hooks.OnConfirm(&dialogue.OptionsEvent{
		EventBase:  eventBase(dialogue.EventConfirm),
		Candidates: s.options,
		Selected:   index,
	})
}

func (s *Session) emitSessionEnd(stopped bool) {
	if s.hooks.OnSessionEnd == nil {
		return
	}
	s.hooks.OnSessionEnd(&dialogue.SessionEvent{
		EventBase: eventBase(dialogue.EventSessionEnd),
		Title:     s.node.Title,
		Stopped:   stopped,
	})
}

func eventBase(t dialogue.EventType) dialogue.EventBase {
	return dialogue.EventBase{Timestamp: time.Now(), Type: t}
}
