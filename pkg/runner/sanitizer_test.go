package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	ok, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize))
	require.NoError(t, err)
	assert.Len(t, ok, DefaultMaxInputSize)

	_, err = SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("ok\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeInput_StripsControlChars(t *testing.T) {
	got, err := SanitizeInput("save\x1b[31m camp\x00")
	require.NoError(t, err)
	assert.Equal(t, "save[31m camp", got)

	// Tabs and newlines survive.
	got, err = SanitizeInput("a\tb\n")
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", got)
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")
	_, err := SanitizeInput("123456789")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
