package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/dialogue"
)

func TestSource_GetScript(t *testing.T) {
	source := memory.NewSource(map[string][]byte{
		"intro": []byte(`[{"title": "Start", "body": "Hello."}]`),
		"quest": []byte(`[{"title": "Start", "body": "Onward."}]`),
	})
	ctx := context.Background()

	data, err := source.GetScript(ctx, "intro")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title": "Start", "body": "Hello."}]`, string(data))

	_, err = source.GetScript(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script not found")
}

func TestSource_GetScript_CopiesPayload(t *testing.T) {
	source := memory.NewSource(map[string][]byte{
		"intro": []byte(`[{"title": "Start", "body": "Hello."}]`),
	})

	data, err := source.GetScript(context.Background(), "intro")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := source.GetScript(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, byte('['), again[0], "caller mutation must not leak into the source")
}

func TestSource_ListScripts_IsSorted(t *testing.T) {
	source := memory.NewSource(map[string][]byte{
		"zeta":  []byte(`[]`),
		"alpha": []byte(`[]`),
		"mid":   []byte(`[]`),
	})

	ids, err := source.ListScripts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestNewFromNodes(t *testing.T) {
	source, err := memory.NewFromNodes("intro",
		dialogue.NodeInfo{Title: "Start", Tags: []string{"intro", "scene(cafe)"}, Body: "Hello.\n[[End]]"},
		dialogue.NodeInfo{Title: "End", Body: "Farewell."},
	)
	require.NoError(t, err)

	data, err := source.GetScript(context.Background(), "intro")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"title": "Start", "tags": "intro scene(cafe)", "body": "Hello.\n[[End]]"},
		{"title": "End", "body": "Farewell."}
	]`, string(data))

	_, err = memory.NewFromNodes("bad", dialogue.NodeInfo{Body: "untitled"})
	require.Error(t, err)
}
