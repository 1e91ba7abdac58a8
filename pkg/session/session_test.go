package session_test

import (
	"testing"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartFrom(t *testing.T) {
	s, _ := startSession(t, linearScript, "Start")

	assert.True(t, s.IsLineType(dialogue.LineTypeText))
	assert.Equal(t, dialogue.LineTypeText, s.LineType())
	assert.Equal(t, "Start", s.NodeTitle())
	assert.Equal(t, []string{"intro", "scene(cafe)"}, s.NodeTags())
	assert.Equal(t, "", s.ClippedText(), "nothing is revealed before the first tick")
}

func TestSession_StartFromUnknownNode(t *testing.T) {
	rt := newRuntime(t, linearScript)
	s := session.New(rt)

	s.StartFrom("DoesNotExist")

	assert.False(t, s.IsRunning())
	assert.Equal(t, "", s.NodeTitle())
	assert.Equal(t, "", s.ClippedText())
}

func TestSession_StartFromResetsPreviousRun(t *testing.T) {
	s, _ := startSession(t, linearScript, "Start")
	s.Tick()
	s.Tick()
	require.NotEmpty(t, s.ClippedText())

	s.StartFrom("Middle")

	assert.True(t, s.IsRunning())
	assert.Equal(t, "Middle", s.NodeTitle())
	assert.Equal(t, "", s.ClippedText(), "a fresh traversal starts with the clip cursor at zero")
}

func TestSession_StopMidLine(t *testing.T) {
	rec := &hookRecorder{}
	s, _ := startSession(t, linearScript, "Start", session.WithHooks(rec.hooks()))
	s.Tick()
	s.Tick()
	require.NotEmpty(t, s.ClippedText())

	s.Stop()

	assert.False(t, s.IsRunning())
	assert.Equal(t, "", s.ClippedText())

	s.Stop() // idempotent
	assert.Equal(t, []bool{true}, rec.ends)
}

func TestSession_NaturalEndOnLastLine(t *testing.T) {
	rec := &hookRecorder{}
	s, _ := startSession(t, `[{"title": "Solo", "body": "One line only."}]`, "Solo",
		session.WithHooks(rec.hooks()))

	scrollToEnd(t, s)

	// The sequence is exhausted and the line fully revealed, so the next
	// running check flips the session off.
	assert.False(t, s.IsRunning())
	assert.Equal(t, []bool{false}, rec.ends)
}

func TestSession_CommandOnlyScriptEndsImmediately(t *testing.T) {
	rt := newRuntime(t, `[{"title": "Rig", "body": "<<spark>>"}]`)
	s := session.New(rt)

	s.StartFrom("Rig")

	assert.False(t, s.IsRunning(), "a node with nothing displayable has nothing to run")
}

func TestSession_HasNode(t *testing.T) {
	rt := newRuntime(t, linearScript)
	s := session.New(rt)

	assert.True(t, s.HasNode("Middle"))
	assert.False(t, s.HasNode("Nope"))
}

func TestSession_NodeTag(t *testing.T) {
	s, _ := startSession(t, linearScript, "Start")

	assert.Equal(t, "intro", s.NodeTag(0))
	assert.Equal(t, "scene(cafe)", s.NodeTag(1))
	assert.Equal(t, "scene(cafe)", s.NodeTag(99), "high indexes clamp to the last tag")
	assert.Equal(t, "", s.NodeTag(-1))
}

func TestSession_ContainsTag(t *testing.T) {
	s, _ := startSession(t, linearScript, "Start")

	assert.True(t, s.ContainsTag("intro"))
	assert.True(t, s.ContainsTag("scene"), "parameterized tags match on their identifier")
	assert.True(t, s.ContainsTag("SCENE"), "identifier comparison is case-insensitive")
	assert.False(t, s.ContainsTag("intro(x)"), "plain tags match only by full equality")
	assert.False(t, s.ContainsTag("outro"))
}

func TestSession_TagParameters(t *testing.T) {
	s, _ := startSession(t, `[{"title": "Moody", "tags": "mood(happy,loud)", "body": "Hmph."}]`, "Moody")

	require.True(t, s.ContainsTag("mood"))
	assert.Equal(t, "happy", s.TagParameter(0))
	assert.Equal(t, "loud", s.TagParameter(1))
	assert.Equal(t, "", s.TagParameter(2))
	assert.Equal(t, "", s.TagParameter(-1))

	// Every containment query recomputes the parameter list.
	require.False(t, s.ContainsTag("nothing"))
	assert.Equal(t, "happy", s.TagParameter(0), "the last parameterized tag scanned wins")
}

func TestSession_Visited(t *testing.T) {
	s, _ := startSession(t, linearScript, "Start")

	assert.True(t, s.HasVisited("Start"))
	assert.True(t, s.HasVisited(""), "empty title queries the current node")
	assert.False(t, s.HasVisited("Nowhere"))

	// The jump into Middle is pulled ahead of presentation, so its visit
	// is recorded while Start's line is still on screen.
	assert.Equal(t, []string{"Middle", "Start"}, s.VisitedTitles())
}

func TestSession_LeadingCommandsAutoResolve(t *testing.T) {
	s, _ := startSession(t, `[{"title": "Cue", "body": "<<music tavern>>Welcome in."}]`, "Cue")

	require.True(t, s.IsLineType(dialogue.LineTypeText))
	assert.True(t, s.IsCommandCalled("music"))
	assert.Equal(t, 1, s.CommandParameterCount())
	assert.Equal(t, "tavern", s.CommandParameter(0))
	assert.Equal(t, "Welcome in.", s.LineText())
}

func TestSession_ReadsAreInertWhenStopped(t *testing.T) {
	rt := newRuntime(t, linearScript)
	s := session.New(rt)

	assert.Equal(t, "", s.NodeTitle())
	assert.Nil(t, s.NodeTags())
	assert.Equal(t, "", s.NodeTag(0))
	assert.Equal(t, "", s.NodeBody())
	assert.False(t, s.ContainsTag("intro"))
	assert.Equal(t, "", s.ClippedText())
	assert.Equal(t, "", s.LineText())
	assert.False(t, s.HasCompleted())
	assert.False(t, s.IsCommandCalled("anything"))
	s.Tick()
	s.Advance()
	s.CompleteLine()
	assert.False(t, s.IsRunning())
}
