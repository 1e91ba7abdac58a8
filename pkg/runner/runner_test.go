package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/registry"
	"github.com/aretw0/tendril/pkg/runner"
	"github.com/aretw0/tendril/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playScript = `[
	{"title": "Start", "body": "Hello.<<chime soft>>\n[[Middle]]"},
	{"title": "Middle", "body": "Goodbye."}
]`

func newEngine(t *testing.T, script string) *tendril.Engine {
	t.Helper()
	eng, err := tendril.NewFromBytes([]byte(script))
	require.NoError(t, err)
	return eng
}

func TestRunner_AutoPilotPlaysToEnd(t *testing.T) {
	eng := newEngine(t, playScript)

	var out bytes.Buffer
	reg := registry.New()
	var chimes []string
	reg.Register("chime", func(ctx context.Context, call registry.Call) error {
		chimes = append(chimes, strings.Join(call.Params, " "))
		return nil
	})

	r := runner.New(
		runner.WithIO(strings.NewReader(""), &out),
		runner.WithRegistry(reg),
		runner.WithAutoPilot(),
		runner.WithTickInterval(time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, eng))

	assert.Contains(t, out.String(), "Hello.")
	assert.Contains(t, out.String(), "Goodbye.")
	assert.Equal(t, []string{"soft"}, chimes)
}

func TestRunner_AutosavesSlotOnCompletion(t *testing.T) {
	eng := newEngine(t, playScript)
	mgr := session.NewManager(memory.NewStore())

	r := runner.New(
		runner.WithIO(strings.NewReader(""), &bytes.Buffer{}),
		runner.WithManager(mgr, "autosave"),
		runner.WithAutoPilot(),
		runner.WithTickInterval(time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, eng))

	slots, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"autosave"}, slots)

	state, err := mgr.Load(ctx, "autosave")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Visited["Start"])
	assert.Equal(t, 1, state.Visited["Middle"])
}

func TestRunner_QuitInputStopsPlay(t *testing.T) {
	eng := newEngine(t, playScript)

	var out bytes.Buffer
	r := runner.New(
		runner.WithIO(strings.NewReader("q\n"), &out),
		runner.WithTickInterval(time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, eng))
}
