package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/observability"
)

func TestChain_FansOutInOrder(t *testing.T) {
	var calls []string
	first := dialogue.Hooks{
		OnLineStart: func(*dialogue.LineEvent) { calls = append(calls, "first") },
	}
	second := dialogue.Hooks{
		OnLineStart: func(*dialogue.LineEvent) { calls = append(calls, "second") },
		OnConfirm:   func(*dialogue.OptionsEvent) { calls = append(calls, "confirm") },
	}

	chained := observability.Chain(first, second)
	chained.OnLineStart(&dialogue.LineEvent{Text: "Hi"})
	chained.OnConfirm(&dialogue.OptionsEvent{Selected: 0})

	assert.Equal(t, []string{"first", "second", "confirm"}, calls)
}

func TestChain_LeavesUnobservedEventsNil(t *testing.T) {
	chained := observability.Chain(dialogue.Hooks{
		OnLineStart: func(*dialogue.LineEvent) {},
	})

	assert.NotNil(t, chained.OnLineStart)
	assert.Nil(t, chained.OnNodeEnter)
	assert.Nil(t, chained.OnCommand)
	assert.Nil(t, chained.OnSessionEnd)
}

func TestLogHooks_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	hooks.OnNodeEnter(&dialogue.NodeEvent{Title: "Start", Tags: []string{"scene(cafe)"}})
	hooks.OnCommand(&dialogue.CommandEvent{Name: "wait", Params: []string{"500"}, Wait: true})
	hooks.OnCommand(&dialogue.CommandEvent{Name: "flash", Params: []string{"red"}})
	hooks.OnSessionEnd(&dialogue.SessionEvent{Title: "End", Stopped: true})

	out := buf.String()
	assert.Contains(t, out, "msg=node_enter")
	assert.Contains(t, out, "title=Start")
	assert.Contains(t, out, "msg=wait_pause")
	assert.Contains(t, out, "msg=command")
	assert.Contains(t, out, "name=flash")
	assert.Contains(t, out, "msg=session_end")
	assert.Contains(t, out, "stopped=true")
}
