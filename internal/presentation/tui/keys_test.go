package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/tendril/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKey(t *testing.T) {
	cases := []struct {
		raw  string
		kind runner.Kind
	}{
		{"\r", runner.KindAdvance},
		{" ", runner.KindAdvance},
		{"\t", runner.KindComplete},
		{"\x1b[A", runner.KindPrev},
		{"\x1b[B", runner.KindNext},
		{"\x1b[C", runner.KindNext},
		{"\x1b[D", runner.KindPrev},
		{"j", runner.KindNext},
		{"k", runner.KindPrev},
		{"q", runner.KindQuit},
		{"\x03", runner.KindQuit},
		{"\x1b[15~", runner.KindSave},
		{"\x1b[20~", runner.KindLoad},
	}
	for _, tc := range cases {
		in, ok := decodeKey([]byte(tc.raw))
		require.True(t, ok, "%q", tc.raw)
		assert.Equal(t, tc.kind, in.Kind, "%q", tc.raw)
	}

	in, ok := decodeKey([]byte("3"))
	require.True(t, ok)
	assert.Equal(t, runner.KindSelect, in.Kind)
	assert.Equal(t, 2, in.Index, "digits are one-based on the keyboard")

	_, ok = decodeKey([]byte("x"))
	assert.False(t, ok, "unmapped keys are ignored")
	_, ok = decodeKey([]byte("\x1b[Z"))
	assert.False(t, ok, "unmapped escape sequences are ignored")
}

func TestCrlfWriter(t *testing.T) {
	var out bytes.Buffer
	w := &crlfWriter{w: &out}

	n, err := w.Write([]byte("ab\ncd\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "ab\r\ncd\r\n", out.String())

	out.Reset()
	_, err = w.Write([]byte("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", out.String())
}
