package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tendril/pkg/schema"
)

// fakeClaimer queues command calls the way a session does: claiming one
// consumes it, and the claimed call's params stay readable until the next
// claim.
type fakeClaimer struct {
	calls   []fakeCall
	claimed *fakeCall
}

type fakeCall struct {
	name   string
	params []string
}

func (f *fakeClaimer) IsCommandCalled(name string) bool {
	for i, c := range f.calls {
		if c.name == name {
			f.claimed = &c
			f.calls = append(f.calls[:i], f.calls[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeClaimer) CommandParameterCount() int {
	if f.claimed == nil {
		return 0
	}
	return len(f.claimed.params)
}

func (f *fakeClaimer) CommandParameter(i int) string {
	if f.claimed == nil || i < 0 || i >= len(f.claimed.params) {
		return ""
	}
	return f.claimed.params[i]
}

func TestExecute(t *testing.T) {
	r := New()
	var got Call
	r.Register("beep", func(ctx context.Context, call Call) error {
		got = call
		return nil
	})

	require.NoError(t, r.Execute(context.Background(), "beep", []string{"2", "loud"}))
	assert.Equal(t, "beep", got.Name)
	assert.Equal(t, []string{"2", "loud"}, got.Params)
	assert.Nil(t, got.Args)
}

func TestExecute_NotFound(t *testing.T) {
	r := New()
	err := r.Execute(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")
}

func TestRegisterSpec_BindsArgs(t *testing.T) {
	r := New()
	var got Call
	r.RegisterSpec(schema.Spec{
		Command: "give",
		Params: []schema.Param{
			{Name: "item", Type: schema.String()},
			{Name: "count", Type: schema.Int()},
		},
	}, func(ctx context.Context, call Call) error {
		got = call
		return nil
	})

	require.NoError(t, r.Execute(context.Background(), "give", []string{"sword", "2"}))
	assert.Equal(t, "sword", got.Args.String(0))
	assert.Equal(t, 2, got.Args.Int(1))

	err := r.Execute(context.Background(), "give", []string{"sword", "many"})
	require.Error(t, err)
	assert.NotEmpty(t, schema.ValidationErrors(err))
}

func TestDispatch_ClaimsAllPending(t *testing.T) {
	r := New()
	var order []string
	handler := func(ctx context.Context, call Call) error {
		order = append(order, call.Name+":"+call.Params[0])
		return nil
	}
	r.Register("beep", handler)
	r.Register("flash", handler)

	c := &fakeClaimer{calls: []fakeCall{
		{name: "flash", params: []string{"red"}},
		{name: "beep", params: []string{"1"}},
		{name: "beep", params: []string{"2"}},
		{name: "hum", params: []string{"low"}},
	}}

	handled, err := r.Dispatch(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 3, handled)
	// Names scan in sorted order; queued calls of one name in queue order.
	assert.Equal(t, []string{"beep:1", "beep:2", "flash:red"}, order)
	// Unregistered commands stay queued for the host to claim directly.
	assert.True(t, c.IsCommandCalled("hum"))
}

func TestDispatch_StopsOnHandlerError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	r.Register("beep", func(ctx context.Context, call Call) error {
		return boom
	})

	c := &fakeClaimer{calls: []fakeCall{
		{name: "beep", params: nil},
		{name: "beep", params: nil},
	}}

	handled, err := r.Dispatch(context.Background(), c)
	assert.Equal(t, 0, handled)
	require.ErrorIs(t, err, boom)
	// The failed call was already claimed; the second remains.
	assert.Len(t, c.calls, 1)
}

func TestNames_Sorted(t *testing.T) {
	r := New()
	nop := func(ctx context.Context, call Call) error { return nil }
	r.Register("zoom", nop)
	r.Register("beep", nop)
	r.Register("flash", nop)

	assert.Equal(t, []string{"beep", "flash", "zoom"}, r.Names())
}
