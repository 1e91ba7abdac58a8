package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/dialogue"
)

// RunStateStoreContract verifies that a StateStore implementation honors the
// interface semantics. Every adapter test suite should call it.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		payload := []byte(`{"variables":{"gold":12},"visited":{"Start":1}}`)
		require.NoError(t, store.Save(ctx, "slot-1", payload))

		loaded, err := store.Load(ctx, "slot-1")
		require.NoError(t, err)
		assert.Equal(t, payload, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "slot-2", []byte(`{"a":1}`)))
		require.NoError(t, store.Save(ctx, "slot-2", []byte(`{"a":2}`)))

		loaded, err := store.Load(ctx, "slot-2")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":2}`), loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-slot")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dialogue.ErrSlotNotFound), "expected ErrSlotNotFound, got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "slot-del", []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, "slot-del"))

		_, err := store.Load(ctx, "slot-del")
		assert.True(t, errors.Is(err, dialogue.ErrSlotNotFound))

		// Deleting a missing slot is not an error.
		assert.NoError(t, store.Delete(ctx, "slot-del"))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "list-a", []byte(`{}`)))
		require.NoError(t, store.Save(ctx, "list-b", []byte(`{}`)))

		slots, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, slots, "list-a")
		assert.Contains(t, slots, "list-b")
	})
}

// RunScriptRuntimeContract verifies interpreter boundary semantics against a
// runtime pre-loaded with a script that defines entry (a reachable node) and
// does not define "no-such-node".
func RunScriptRuntimeContract(t *testing.T, rt ScriptRuntime, entry string) {
	t.Run("Node Lookup", func(t *testing.T) {
		assert.True(t, rt.HasNode(entry))
		assert.False(t, rt.HasNode("no-such-node"))
		assert.Contains(t, rt.NodeTitles(), entry)
	})

	t.Run("Unknown Node", func(t *testing.T) {
		_, err := rt.Run("no-such-node")
		require.Error(t, err)
		assert.True(t, errors.Is(err, dialogue.ErrUnknownNode))
	})

	t.Run("Sequence Exhaustion", func(t *testing.T) {
		cur, err := rt.Run(entry)
		require.NoError(t, err)

		steps := 0
		for {
			_, ok := cur.Next()
			if !ok {
				break
			}
			steps++
			require.Less(t, steps, 10000, "cursor never exhausted")
		}
		assert.Greater(t, steps, 0, "entry node yielded no steps")

		// Pulling past the end keeps reporting done.
		_, ok := cur.Next()
		assert.False(t, ok)
	})

	t.Run("Visit Counting", func(t *testing.T) {
		before := rt.VisitCounts()[entry]
		cur, err := rt.Run(entry)
		require.NoError(t, err)
		for {
			if _, ok := cur.Next(); !ok {
				break
			}
		}
		assert.Greater(t, rt.VisitCounts()[entry], before)
	})

	t.Run("Variable Store", func(t *testing.T) {
		vars := rt.Variables()
		vars.Set("contract_key", "v1")

		got, ok := vars.Get("contract_key")
		require.True(t, ok)
		assert.Equal(t, "v1", got)

		all := vars.All()
		assert.Equal(t, "v1", all["contract_key"])

		// Snapshot mutation must not leak back.
		all["contract_key"] = "mutated"
		got, _ = vars.Get("contract_key")
		assert.Equal(t, "v1", got)

		vars.Replace(map[string]any{"only": true})
		_, ok = vars.Get("contract_key")
		assert.False(t, ok)
	})
}
