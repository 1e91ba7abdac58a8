package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		line string
		want Input
	}{
		{`{"action":"advance"}`, Input{Kind: KindAdvance}},
		{`{}`, Input{Kind: KindAdvance}},
		{`{"action":"complete"}`, Input{Kind: KindComplete}},
		{`{"action":"next"}`, Input{Kind: KindNext}},
		{`{"action":"previous"}`, Input{Kind: KindPrev}},
		{`{"action":"select","index":2}`, Input{Kind: KindSelect, Index: 2}},
		{`{"action":"select"}`, Input{Kind: KindUnknown}},
		{`{"action":"save","slot":"camp"}`, Input{Kind: KindSave, Slot: "camp"}},
		{`{"action":"load"}`, Input{Kind: KindLoad}},
		{`{"action":"quit"}`, Input{Kind: KindQuit}},
		{`{"action":"dance"}`, Input{Kind: KindUnknown}},
		{`not json`, Input{Kind: KindUnknown}},
	}
	for _, tc := range cases {
		in, ok := parseIntent(tc.line + "\n")
		require.True(t, ok, tc.line)
		assert.Equal(t, tc.want.Kind, in.Kind, tc.line)
		assert.Equal(t, tc.want.Index, in.Index, tc.line)
		assert.Equal(t, tc.want.Slot, in.Slot, tc.line)
	}

	_, ok := parseIntent("   \n")
	assert.False(t, ok, "blank lines are ignored")
}

func TestJSONHandler_FrameDedupes(t *testing.T) {
	var out bytes.Buffer
	h := NewJSONHandler(strings.NewReader(""), &out)

	f := session.Frame{Running: true, LineType: "text", ClippedText: "Hi"}
	require.NoError(t, h.Frame(f))
	require.NoError(t, h.Frame(f))
	f.ClippedText = "Hi t"
	require.NoError(t, h.Frame(f))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "duplicate frame must not re-emit")
	assert.Contains(t, lines[0], `"type":"frame"`)
	assert.Contains(t, lines[1], `"Hi t"`)
}

func TestJSONHandler_Notify(t *testing.T) {
	var out bytes.Buffer
	h := NewJSONHandler(strings.NewReader(""), &out)
	require.NoError(t, h.Notify("saved"))
	assert.Contains(t, out.String(), `"type":"notice"`)
	assert.Contains(t, out.String(), `"message":"saved"`)
}

func TestJSONHandler_InputsCloseOnEOF(t *testing.T) {
	h := NewJSONHandler(strings.NewReader("{\"action\":\"quit\"}\n"), &bytes.Buffer{})
	inputs := h.Inputs()

	in, ok := <-inputs
	require.True(t, ok)
	assert.Equal(t, KindQuit, in.Kind)

	_, ok = <-inputs
	assert.False(t, ok, "channel closes at end of input")
}
