package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tendril/pkg/dialogue"
	"github.com/aretw0/tendril/pkg/observability"
)

func TestMetrics_HooksFeedCollectors(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()

	hooks.OnNodeEnter(&dialogue.NodeEvent{Title: "Start"})
	hooks.OnNodeEnter(&dialogue.NodeEvent{Title: "Start"})
	hooks.OnNodeEnter(&dialogue.NodeEvent{Title: "Cellar"})
	hooks.OnLineStart(&dialogue.LineEvent{Title: "Start", Text: "Hi there."})
	hooks.OnCommand(&dialogue.CommandEvent{Name: "flash", Params: []string{"red"}})
	hooks.OnCommand(&dialogue.CommandEvent{Name: "wait", Params: []string{"500"}, Wait: true})
	hooks.OnOptions(&dialogue.OptionsEvent{Candidates: []string{"Yes", "No"}})
	hooks.OnConfirm(&dialogue.OptionsEvent{Candidates: []string{"Yes", "No"}, Selected: 1})
	hooks.OnSessionEnd(&dialogue.SessionEvent{Title: "Cellar"})
	hooks.OnSessionEnd(&dialogue.SessionEvent{Title: "Start", Stopped: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodesEntered.WithLabelValues("Start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesEntered.WithLabelValues("Cellar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("flash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WaitPauses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OptionsShown))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded.WithLabelValues("stopped")))
}

func TestMetrics_WaitDoesNotCountAsCommand(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	m.Hooks().OnCommand(&dialogue.CommandEvent{Name: "wait", Params: []string{"250"}, Wait: true})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.Commands.WithLabelValues("wait")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WaitPauses))
}

func TestMetrics_RegistersWithProvidedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.Hooks().OnLineStart(&dialogue.LineEvent{Text: "Hi"})

	families, err := reg.Gather()
	assert.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "tendril_lines_total")
	assert.Contains(t, names, "tendril_wait_duration_seconds")
}
