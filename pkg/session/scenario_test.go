package session_test

import (
	"testing"
	"time"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSession_FullPlaythrough drives a whole conversation the way a game
// loop would: scroll, hit a wait, resume, branch, and run to the end.
func TestSession_FullPlaythrough(t *testing.T) {
	sched := &manualScheduler{}
	rec := &hookRecorder{}
	s, _ := startSession(t, branchingScript, "Start",
		session.WithScheduler(sched), session.WithHooks(rec.hooks()))

	require.True(t, s.IsLineType(dialogue.LineTypeText))

	// Scroll the opening fragment.
	s.Tick()
	s.Tick()
	s.Tick()
	require.True(t, s.HasCompleted())
	require.Equal(t, "Hi ", s.ClippedText())

	// Advancing pulls in the wait command and the rest of the line; the
	// clip cursor now sits on the wait's fire offset.
	s.Advance()
	assert.False(t, s.IsCommandCalled("wait"))
	require.True(t, s.Paused())
	assert.Equal(t, 500*time.Millisecond, sched.delay)

	// The wait elapses and scrolling resumes.
	sched.Fire()
	require.False(t, s.Paused())
	for i := 0; i < 6; i++ {
		s.Tick()
	}
	require.True(t, s.HasCompleted())
	assert.Equal(t, "Hi  there", s.ClippedText())

	// The branch point.
	s.Advance()
	require.True(t, s.IsLineType(dialogue.LineTypeOptions))
	assert.Equal(t, 2, s.OptionCount())

	s.SelectNext()
	require.True(t, s.SelectionChanged())
	s.Confirm()

	assert.Equal(t, "YesBranch", s.NodeTitle())
	assert.True(t, s.IsRunning())
	assert.Equal(t, "Glad to hear it.", s.LineText())
	assert.False(t, s.IsRunning(), "a fully revealed final line ends the session")

	// Hook trail of the playthrough.
	assert.Equal(t, []string{"Start", "YesBranch"}, rec.nodes)
	assert.Equal(t, []string{"Hi ", "Glad to hear it."}, rec.lines)
	assert.Equal(t, 1, rec.waits)
	assert.Equal(t, [][]string{{"Yes", "No"}}, rec.options)
	assert.Equal(t, []int{0}, rec.confirms)
	assert.Equal(t, []bool{false}, rec.ends)
}
