package session_test

import (
	"testing"
	"time"

	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCommandCalled_FiresExactlyOnce(t *testing.T) {
	s, _ := startSession(t, `[{"title": "N", "body": "abc<<flash red 2>>def"}]`, "N")

	assert.Equal(t, "abc", s.LineText())
	s.Advance() // queues flash at offset 3 and appends the tail fragment

	assert.True(t, s.IsCommandCalled("flash"))
	assert.Equal(t, 2, s.CommandParameterCount())
	assert.Equal(t, "red", s.CommandParameter(0))
	assert.Equal(t, "2", s.CommandParameter(1))
	assert.Equal(t, "", s.CommandParameter(5))

	assert.False(t, s.IsCommandCalled("flash"), "a consumed command never fires twice")
}

func TestIsCommandCalled_EmptyDirectiveNeverMatches(t *testing.T) {
	s, _ := startSession(t, `[{"title": "N", "body": "ab<<>>cd<<ping>>"}]`, "N")

	s.LineText()
	s.Advance()

	assert.False(t, s.IsCommandCalled(""), "a bare <<>> directive is not claimable")
	assert.True(t, s.IsCommandCalled("ping"), "real commands still match past the empty entry")
}

func TestIsCommandCalled_WaitsForClipCursor(t *testing.T) {
	s, _ := startSession(t, `[{"title": "N", "body": "ab<<ping>>cd"}]`, "N")
	s.Advance() // queue the command while the line is still hidden

	assert.False(t, s.IsCommandCalled("ping"), "not visible before the clip cursor reaches it")
	s.Tick()
	assert.False(t, s.IsCommandCalled("ping"))
	s.Tick()
	assert.True(t, s.IsCommandCalled("ping"))
	assert.Equal(t, 0, s.CommandParameterCount())
}

func TestWait_PausesScrolling(t *testing.T) {
	sched := &manualScheduler{}
	rec := &hookRecorder{}
	s, _ := startSession(t, branchingScript, "Start",
		session.WithScheduler(sched), session.WithHooks(rec.hooks()))

	assert.Equal(t, "Hi ", s.LineText())
	s.Advance() // the line grows past the wait offset

	assert.False(t, s.IsCommandCalled("wait"), "wait itself never reports a match")
	require.True(t, s.Paused())
	assert.Equal(t, 1, sched.armed)
	assert.Equal(t, 500*time.Millisecond, sched.delay)
	assert.Equal(t, 1, rec.waits)

	// A paused presenter holds still.
	before := s.ClippedText()
	s.Tick()
	s.CompleteLine()
	assert.Equal(t, before, s.ClippedText())
	assert.False(t, s.IsCommandCalled("anything"), "nothing fires while paused")

	sched.Fire()
	assert.False(t, s.Paused())
	s.Tick()
	assert.NotEqual(t, before, s.ClippedText())
	assert.False(t, s.IsCommandCalled("wait"), "an elapsed wait leaves the queue")
}

func TestWait_AtLineEndStaysInert(t *testing.T) {
	sched := &manualScheduler{}
	s, _ := startSession(t, `[{"title": "N", "body": "Hello <<wait 100>>"}]`, "N",
		session.WithScheduler(sched))

	assert.Equal(t, "Hello ", s.LineText())
	s.Advance() // nothing follows the wait

	assert.False(t, s.IsCommandCalled("wait"))
	assert.False(t, s.Paused(), "a wait reached at the natural end of its line must not pause")
	assert.Equal(t, 0, sched.armed)
}

func TestWait_MalformedDurationResumesImmediately(t *testing.T) {
	sched := &manualScheduler{}
	s, _ := startSession(t, `[{"title": "N", "body": "ab<<wait soon>>cd"}]`, "N",
		session.WithScheduler(sched))

	s.Advance()
	s.Tick()
	s.Tick()

	assert.False(t, s.IsCommandCalled("noop"))
	require.True(t, s.Paused())
	assert.Equal(t, time.Duration(0), sched.delay, "unparseable durations fall back to zero")

	sched.Fire()
	assert.False(t, s.Paused())
}

func TestWait_ConsecutiveWaitsGetDistinctOffsets(t *testing.T) {
	sched := &manualScheduler{}
	s, _ := startSession(t, `[{"title": "N", "body": "A<<wait 10>><<wait 20>> B"}]`, "N",
		session.WithScheduler(sched))

	assert.Equal(t, "A", s.LineText())
	s.Advance()

	// First wait pauses at offset 1.
	assert.False(t, s.IsCommandCalled("noop"))
	require.True(t, s.Paused())
	assert.Equal(t, 10*time.Millisecond, sched.delay)
	sched.Fire()

	// The second wait sits one rune later, so it can only pause after
	// another tick.
	assert.False(t, s.IsCommandCalled("noop"))
	assert.False(t, s.Paused())
	s.Tick()
	assert.False(t, s.IsCommandCalled("noop"))
	require.True(t, s.Paused())
	assert.Equal(t, 20*time.Millisecond, sched.delay)
	sched.Fire()

	s.Tick()
	assert.True(t, s.HasCompleted())
}

func TestStop_CancelsPendingWait(t *testing.T) {
	sched := &manualScheduler{}
	s, _ := startSession(t, branchingScript, "Start", session.WithScheduler(sched))

	s.LineText()
	s.Advance()
	s.IsCommandCalled("noop") // trips the wait pause
	require.True(t, s.Paused())

	s.Stop()
	assert.False(t, s.Paused())
	assert.Equal(t, 1, sched.cancelled)

	// A timer fire that lost the cancellation race must not leak into a
	// newer traversal.
	s.StartFrom("Start")
	sched.Fire()
	assert.True(t, s.IsRunning())
	assert.False(t, s.Paused())
	assert.Equal(t, "", s.ClippedText())
}
